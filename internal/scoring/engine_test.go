package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srijanshukla18/kubectl-smart/internal/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func podWithContainer(reason string, restarts int32) *model.ResourceRecord {
	r := model.NewResourceRecord(model.KindPod, "prod", "checkout-abc")
	r.Properties["containerStatuses"] = []model.ContainerStatus{
		{Name: "app", WaitingReason: reason, RestartCount: restarts},
	}
	return r
}

// TestRun_RootCauseSelection covers seed scenario A-shaped input: a single
// high-score waiting reason becomes the root cause.
func TestRun_RootCauseSelection(t *testing.T) {
	e := NewEngine(DefaultWeights(), false)
	e.Now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	pod := podWithContainer("CrashLoopBackOff", 5)
	report := e.Run(Input{Subject: pod})

	require.NotNil(t, report.RootCause)
	assert.Equal(t, "CrashLoopBackOff", report.RootCause.Reason)
	assert.Equal(t, model.SeverityCritical, report.RootCause.Severity)
	assert.True(t, report.RootCause.IsRootCause)
}

// TestRun_NoRootCauseBelowThreshold covers invariant 3 (§8): below score 50,
// no root cause is reported even though issues exist.
func TestRun_NoRootCauseBelowThreshold(t *testing.T) {
	e := NewEngine(map[string]int{"Unhealthy": 30}, false)
	pod := podWithContainer("Unhealthy", 1)

	report := e.Run(Input{Subject: pod})
	assert.Nil(t, report.RootCause)
	assert.NotEmpty(t, report.AllIssues)
}

func TestRun_UnknownReasonIsIgnored(t *testing.T) {
	e := NewEngine(DefaultWeights(), false)
	pod := podWithContainer("SomeMadeUpReason", 1)

	report := e.Run(Input{Subject: pod})
	assert.Empty(t, report.AllIssues)
	assert.Nil(t, report.RootCause)
}

// TestRun_ScopeModifierOnControllerSubject covers spec §4.5's scope
// modifier: a controller whose children are 100% unhealthy gets +10 on its
// own issue score relative to the same issue on a controller with healthy
// children.
func TestRun_ScopeModifierOnControllerSubject(t *testing.T) {
	e := NewEngine(map[string]int{"FailedScheduling": 80}, false)
	dep := model.NewResourceRecord(model.KindDeployment, "prod", "checkout")
	dep.Properties["containerStatuses"] = []model.ContainerStatus{{Name: "app", WaitingReason: "FailedScheduling"}}

	unhealthyChild := model.NewResourceRecord(model.KindPod, "prod", "checkout-1")
	unhealthyChild.Status.Ready = false

	reportAllUnhealthy := e.Run(Input{Subject: dep, Children: []*model.ResourceRecord{unhealthyChild}})
	require.NotEmpty(t, reportAllUnhealthy.AllIssues)
	assert.Equal(t, 90, reportAllUnhealthy.AllIssues[0].Score) // 80 base + 10 scope
}

func TestRun_DedupeKeepsHighestScore(t *testing.T) {
	e := NewEngine(DefaultWeights(), false)
	pod := model.NewResourceRecord(model.KindPod, "prod", "checkout-abc")
	pod.Properties["containerStatuses"] = []model.ContainerStatus{
		{Name: "app", WaitingReason: "CrashLoopBackOff"},
	}
	pod.Events = []model.EventRecord{
		{Reason: "CrashLoopBackOff", Count: 20, LastTimestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	e.Now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	report := e.Run(Input{Subject: pod})

	var matches int
	for _, i := range report.AllIssues {
		if i.Reason == "CrashLoopBackOff" {
			matches++
		}
	}
	assert.Equal(t, 1, matches, "status+event signals for the same reason/resource dedupe to one issue")
}

func TestRun_LogCorrelationModifier(t *testing.T) {
	e := NewEngine(map[string]int{"OOMKilled": 80}, true)
	pod := podWithContainer("OOMKilled", 1)

	withoutLog := e.Run(Input{Subject: pod})
	withLog := e.Run(Input{Subject: pod, LogText: map[string]string{"checkout-abc/app": "process was OOM killed"}})

	require.NotEmpty(t, withoutLog.AllIssues)
	require.NotEmpty(t, withLog.AllIssues)
	assert.Equal(t, withoutLog.AllIssues[0].Score+5, withLog.AllIssues[0].Score)
}

// TestIssueLess_HigherRecurrenceBreaksScoreTie covers spec §4.5's tie-break
// order: same score, same Event origin, so the issue with more occurrences
// sorts first, ahead of the lexicographic fallback.
func TestIssueLess_HigherRecurrenceBreaksScoreTie(t *testing.T) {
	frequent := model.Issue{Reason: "BackOff", Score: 60, Source: model.SourceEvent, Recurrence: 10}
	rare := model.Issue{Reason: "Aborted", Score: 60, Source: model.SourceEvent, Recurrence: 2}

	assert.True(t, issueLess(frequent, rare), "higher recurrence must sort first even though its reason is lexicographically later")
	assert.False(t, issueLess(rare, frequent))
}

// TestIssueLess_EqualRecurrenceFallsBackToReason covers the final
// lexicographic tie-break once score, origin, and recurrence all match.
func TestIssueLess_EqualRecurrenceFallsBackToReason(t *testing.T) {
	a := model.Issue{Reason: "Aborted", Score: 60, Source: model.SourceEvent, Recurrence: 3}
	b := model.Issue{Reason: "BackOff", Score: 60, Source: model.SourceEvent, Recurrence: 3}

	assert.True(t, issueLess(a, b))
	assert.False(t, issueLess(b, a))
}

func TestRecurrenceModifier_ClampedAt15(t *testing.T) {
	assert.Equal(t, 15, recurrenceModifier(100))
	assert.Equal(t, 0, recurrenceModifier(0))
	assert.Equal(t, 4, recurrenceModifier(5))
}

func TestRecencyModifier_Buckets(t *testing.T) {
	assert.Equal(t, 10, recencyModifier(1*time.Minute))
	assert.Equal(t, 5, recencyModifier(20*time.Minute))
	assert.Equal(t, 0, recencyModifier(2*time.Hour))
}
