package render

import (
	"fmt"
	"io"
	"time"

	"github.com/srijanshukla18/kubectl-smart/internal/model"
)

// DiagResult is the diag command's result payload (spec §6).
type DiagResult struct {
	RootCause           *model.Issue   `json:"root_cause,omitempty"`
	ContributingFactors []model.Issue  `json:"contributing_factors"`
	AllIssues           []model.Issue  `json:"all_issues"`
	SuggestedActions    []string       `json:"suggested_actions"`
	Summary             IssueSummary   `json:"summary"`
}

// IssueSummary tallies issues by severity bucket (spec §6).
type IssueSummary struct {
	TotalIssues int `json:"total_issues"`
	Critical    int `json:"critical"`
	Warning     int `json:"warning"`
	Info        int `json:"info"`
}

// Summarize computes an IssueSummary over a flat issue list.
func Summarize(issues []model.Issue) IssueSummary {
	s := IssueSummary{TotalIssues: len(issues)}
	for _, i := range issues {
		switch i.Severity {
		case model.SeverityCritical:
			s.Critical++
		case model.SeverityWarning:
			s.Warning++
		default:
			s.Info++
		}
	}
	return s
}

// DiagText renders spec §4.7's human diag output: identity header, root
// cause block, up to three contributing factors, suggested actions, elapsed
// time.
func DiagText(w io.Writer, subject string, result DiagResult, elapsed time.Duration, notes []string, caps Capabilities) {
	fmt.Fprintf(w, "Subject: %s\n\n", subject)

	if result.RootCause == nil {
		fmt.Fprintln(w, "Root cause: none (no issue scored >= 50)")
	} else {
		rc := result.RootCause
		fmt.Fprintf(w, "Root cause: %s %s (score %d, %s)\n", SeverityGlyph(rc.Severity, caps), rc.Title, rc.Score, rc.Resource.FullName())
		for _, line := range WrapText(firstEvidence(rc.Evidence), caps.Width) {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	fmt.Fprintln(w)

	if len(result.ContributingFactors) > 0 {
		fmt.Fprintln(w, "Contributing factors:")
		for _, f := range result.ContributingFactors {
			fmt.Fprintf(w, "  - %s %s (score %d, %s)\n", SeverityGlyph(f.Severity, caps), f.Title, f.Score, f.Resource.FullName())
		}
		fmt.Fprintln(w)
	}

	if len(result.SuggestedActions) > 0 {
		fmt.Fprintln(w, "Suggested actions:")
		for _, a := range result.SuggestedActions {
			fmt.Fprintf(w, "  * %s\n", a)
		}
		fmt.Fprintln(w)
	}

	for _, n := range notes {
		fmt.Fprintf(w, "note: %s\n", n)
	}

	fmt.Fprintf(w, "\nIssues: %d critical, %d warning, %d info (elapsed %s)\n",
		result.Summary.Critical, result.Summary.Warning, result.Summary.Info, elapsed.Round(time.Millisecond))
}

func firstEvidence(evidence []string) string {
	if len(evidence) == 0 {
		return ""
	}
	return evidence[0]
}

// BuildDiagResult assembles DiagResult from an engine report, deduplicating
// suggested actions across root cause + contributing factors.
func BuildDiagResult(root *model.Issue, contributing, all []model.Issue) DiagResult {
	actions := []string{}
	seen := map[string]bool{}
	if root != nil {
		for _, a := range root.SuggestedActions {
			if !seen[a] {
				seen[a] = true
				actions = append(actions, a)
			}
		}
	}
	for _, f := range contributing {
		for _, a := range f.SuggestedActions {
			if !seen[a] {
				seen[a] = true
				actions = append(actions, a)
			}
		}
	}
	return DiagResult{
		RootCause:           root,
		ContributingFactors: contributing,
		AllIssues:           all,
		SuggestedActions:    actions,
		Summary:             Summarize(all),
	}
}
