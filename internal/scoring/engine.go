package scoring

import (
	"sort"
	"strings"
	"time"

	"github.com/srijanshukla18/kubectl-smart/internal/model"
)

// logSynonyms implements Open Question 3 (spec §9): the correlation
// modifier is opt-in behind a bounded synonym list rather than only exact
// reason-string matching, so a log line like "OOM" or "killed" still
// correlates with an OOMKilled issue.
var logSynonyms = map[string][]string{
	"CrashLoopBackOff": {"crashloopbackoff", "panic", "fatal"},
	"OOMKilled":        {"oomkilled", "out of memory", "oom"},
	"ImagePullBackOff": {"imagepullbackoff", "pull access denied", "manifest unknown"},
	"ErrImagePull":     {"errimagepull", "pull access denied"},
	"Unhealthy":        {"unhealthy", "readiness probe failed", "liveness probe failed"},
	"FailedMount":      {"failedmount", "mount failed"},
}

// Engine implements spec §4.5's ScoringEngine.
type Engine struct {
	Weights               map[string]int
	LogCorrelationEnabled bool
	Now                   func() time.Time
}

// NewEngine returns an Engine using weights (DefaultWeights when nil) and
// the real clock.
func NewEngine(weights map[string]int, logCorrelation bool) *Engine {
	if weights == nil {
		weights = DefaultWeights()
	}
	return &Engine{Weights: weights, LogCorrelationEnabled: logCorrelation, Now: time.Now}
}

// Input bundles everything the engine needs for one subject's run: the
// subject record, its children (for controllers), and raw log text keyed by
// "podName/container" (spec §4.5's "same reason appears in logs").
type Input struct {
	Subject  *model.ResourceRecord
	Children []*model.ResourceRecord
	LogText  map[string]string
}

// Report is the engine's output for one diag run.
type Report struct {
	AllIssues          []model.Issue
	RootCause          *model.Issue
	ContributingFactors []model.Issue
}

// Run produces a deterministic Report from in (spec §8 invariant 1).
func (e *Engine) Run(in Input) Report {
	now := e.Now
	if now == nil {
		now = time.Now
	}

	subjects := append([]*model.ResourceRecord{in.Subject}, in.Children...)
	unhealthyRatio, isControllerSubject := e.unhealthyRatio(in)

	var all []model.Issue
	for _, r := range subjects {
		if r == nil {
			continue
		}
		all = append(all, e.issuesForRecord(r, in.LogText, now(), isControllerSubject && r == in.Subject, unhealthyRatio)...)
	}

	all = dedupe(all)
	sort.SliceStable(all, func(i, j int) bool { return issueLess(all[i], all[j]) })

	report := Report{AllIssues: all}
	root, rest := selectRootCause(all)
	report.RootCause = root
	report.ContributingFactors = rest
	return report
}

func (e *Engine) unhealthyRatio(in Input) (float64, bool) {
	if !model.IsController(in.Subject.Kind) || len(in.Children) == 0 {
		return 0, false
	}
	unhealthy := 0
	for _, c := range in.Children {
		if !c.Status.Ready {
			unhealthy++
		}
	}
	return float64(unhealthy) / float64(len(in.Children)), true
}

// issuesForRecord produces every Issue signaled by one record: container
// waiting/terminated reasons, coalesced events, and (only when no known
// reason matched, whatever the kind) the conditions-based fallback.
func (e *Engine) issuesForRecord(r *model.ResourceRecord, logText map[string]string, now time.Time, applyScope bool, unhealthyRatio float64) []model.Issue {
	var issues []model.Issue
	matchedKnownReason := false

	for _, cs := range r.ContainerStatuses() {
		reason := cs.WaitingReason
		if reason == "" {
			reason = cs.TerminatedReason
		}
		if reason == "" {
			continue
		}
		base, ok := e.Weights[reason]
		if !ok {
			continue
		}
		matchedKnownReason = true
		score := base
		if applyScope {
			score += scopeModifier(unhealthyRatio)
		}
		if e.LogCorrelationEnabled {
			if log, ok := logText[r.Name+"/"+cs.Name]; ok && correlatesWithLog(reason, log) {
				score += 5
			}
		}
		issue := model.Issue{
			Title:    reason,
			Reason:   reason,
			Score:    score,
			Source:   model.SourceStatus,
			Resource: r,
			Evidence: []string{cs.WaitingMessage + cs.TerminatedReason},
			SuggestedActions: SuggestedActions(reason, r.Namespace, r.Name, cs.Name),
		}
		issue.Clamp()
		issues = append(issues, issue)
	}

	for _, ev := range r.Events {
		reason := ev.Reason
		base, ok := e.Weights[reason]
		if !ok {
			continue
		}
		matchedKnownReason = true
		score := base
		score += recencyModifier(ev.Age(now))
		score += recurrenceModifier(ev.Count)
		if applyScope {
			score += scopeModifier(unhealthyRatio)
		}
		if e.LogCorrelationEnabled {
			for _, cname := range containerNames(r) {
				if log, ok := logText[r.Name+"/"+cname]; ok && correlatesWithLog(reason, log) {
					score += 5
					break
				}
			}
		}
		issue := model.Issue{
			Title:      reason,
			Reason:     reason,
			Score:      score,
			Source:     model.SourceEvent,
			Resource:   r,
			Evidence:   []string{ev.Message},
			SuggestedActions: SuggestedActions(reason, r.Namespace, r.Name, ""),
			Recurrence: ev.Count,
		}
		issue.Clamp()
		issues = append(issues, issue)
	}

	if !matchedKnownReason {
		if issue, ok := genericFallback(r, now); ok {
			issues = append(issues, issue)
		}
	}

	return issues
}

func containerNames(r *model.ResourceRecord) []string {
	statuses := r.ContainerStatuses()
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.Name)
	}
	return names
}

// genericFallback implements spec §4.5's "Generic CRD fallback" — but it
// also applies to any record whose status.conditions signal trouble and no
// known reason otherwise fired, matching "generic status.conditions with
// Ready=False" in the base-scores list.
func genericFallback(r *model.ResourceRecord, now time.Time) (model.Issue, bool) {
	for _, c := range r.Status.Conditions {
		switch {
		case c.Type == "Ready" && c.Status == "False":
			return clampedIssue("Not Ready: "+orDefault(c.Reason, "Unknown"), c.Reason, 95, c.Message, r), true
		case c.Type == "Healthy" && c.Status == "False":
			return clampedIssue("Not Ready: "+orDefault(c.Reason, "Unknown"), c.Reason, 90, c.Message, r), true
		case c.Type == "Progressing" && c.Status == "True":
			return clampedIssue("Not Ready: "+orDefault(c.Reason, "Progressing"), c.Reason, 60, c.Message, r), true
		}
	}
	return model.Issue{}, false
}

func clampedIssue(title, reason string, score int, message string, r *model.ResourceRecord) model.Issue {
	issue := model.Issue{
		Title:    title,
		Reason:   orDefault(reason, title),
		Score:    score,
		Source:   model.SourceStatus,
		Resource: r,
		Evidence: []string{message},
	}
	issue.Clamp()
	return issue
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func recencyModifier(age time.Duration) int {
	switch {
	case age <= 5*time.Minute:
		return 10
	case age <= 30*time.Minute:
		return 5
	default:
		return 0
	}
}

func recurrenceModifier(count int32) int {
	n := int(count) - 1
	if n < 0 {
		n = 0
	}
	if n > 15 {
		n = 15
	}
	return n
}

func scopeModifier(unhealthyRatio float64) int {
	switch {
	case unhealthyRatio >= 1.0:
		return 10
	case unhealthyRatio >= 0.5:
		return 5
	default:
		return 0
	}
}

func correlatesWithLog(reason, logText string) bool {
	needle := strings.ToLower(reason)
	haystack := strings.ToLower(logText)
	if strings.Contains(haystack, needle) {
		return true
	}
	for _, syn := range logSynonyms[reason] {
		if strings.Contains(haystack, syn) {
			return true
		}
	}
	return false
}

// dedupe implements spec §4.5's "deduplication by (reason, resource)",
// keeping the highest-scoring issue per key.
func dedupe(issues []model.Issue) []model.Issue {
	best := map[string]model.Issue{}
	order := []string{}
	for _, i := range issues {
		key := i.DedupeKey()
		existing, ok := best[key]
		if !ok || i.Score > existing.Score {
			if !ok {
				order = append(order, key)
			}
			best[key] = i
		}
	}
	out := make([]model.Issue, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}

// issueLess implements spec §4.5's tie-break order: higher score first;
// waiting-reason origin beats a derived BackOff; higher recurrence; then
// lexicographic reason.
func issueLess(a, b model.Issue) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	aWaiting, bWaiting := a.Source == model.SourceStatus, b.Source == model.SourceStatus
	if aWaiting != bWaiting {
		return aWaiting
	}
	if a.Recurrence != b.Recurrence {
		return a.Recurrence > b.Recurrence
	}
	return a.Reason < b.Reason
}

// selectRootCause implements spec §4.5/§8: the single highest-scoring issue
// with score >= 50 is the root cause; contributing factors are the next up
// to three after dedup (already applied by the caller).
func selectRootCause(sorted []model.Issue) (*model.Issue, []model.Issue) {
	if len(sorted) == 0 || sorted[0].Score < 50 {
		return nil, nil
	}
	root := sorted[0]
	root.IsRootCause = true

	var contributing []model.Issue
	for _, i := range sorted[1:] {
		if i.Score < 50 {
			break
		}
		contributing = append(contributing, i)
		if len(contributing) == 3 {
			break
		}
	}
	return &root, contributing
}
