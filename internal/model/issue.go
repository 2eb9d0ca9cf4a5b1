package model

// Severity is the score bucket named in spec §3/§8: Info (<50),
// Warning ([50,90)), Critical (>=90).
type Severity string

const (
	SeverityInfo     Severity = "Info"
	SeverityWarning  Severity = "Warning"
	SeverityCritical Severity = "Critical"
	SeverityHealthy  Severity = "Healthy" // used only for health-glyph rendering of issue-free resources
)

// SeverityForScore implements the monotone mapping invariant (spec §8.2):
// severity(i) = Critical iff score(i) >= 90; Warning iff 50 <= score < 90;
// Info iff score < 50.
func SeverityForScore(score int) Severity {
	switch {
	case score >= 90:
		return SeverityCritical
	case score >= 50:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Source is where an Issue's signal originated (spec §3).
type Source string

const (
	SourceEvent    Source = "event"
	SourceStatus   Source = "status"
	SourceLog      Source = "log"
	SourceForecast Source = "forecast"
	SourceNode     Source = "node"
)

// Issue is a single diagnostic finding produced by the ScoringEngine
// (spec §3, §4.5).
type Issue struct {
	Title             string
	Reason            string
	Severity          Severity
	Score             int // [0,100]
	Source            Source
	Resource          *ResourceRecord
	Evidence          []string
	SuggestedActions  []string
	IsRootCause       bool
	Recurrence        int32 // underlying event Count, used only for issueLess's tie-break (spec §4.5)
}

// Clamp keeps Score within [0,100] and keeps Severity consistent with it.
// Every modifier application in internal/scoring routes through this so the
// monotonicity invariant can never be violated by an intermediate step.
func (i *Issue) Clamp() {
	if i.Score < 0 {
		i.Score = 0
	}
	if i.Score > 100 {
		i.Score = 100
	}
	i.Severity = SeverityForScore(i.Score)
}

// DedupeKey implements spec §4.5's "deduplication by (reason, resource)".
func (i *Issue) DedupeKey() string {
	if i.Resource == nil {
		return i.Reason
	}
	return i.Reason + "|" + i.Resource.FullName()
}
