package orchestrator

import "github.com/srijanshukla18/kubectl-smart/internal/model"

// WatchDiff is the set of issues that appeared or disappeared between two
// consecutive diag runs under `--watch` (spec §6: "re-invokes the pipeline
// and diffs issues").
type WatchDiff struct {
	Added   []model.Issue
	Removed []model.Issue
}

// DiffIssues compares two issue sets by DedupeKey (reason+resource), the
// same identity the scoring engine's own deduplication uses.
func DiffIssues(previous, current []model.Issue) WatchDiff {
	prevKeys := make(map[string]model.Issue, len(previous))
	for _, i := range previous {
		prevKeys[i.DedupeKey()] = i
	}
	curKeys := make(map[string]model.Issue, len(current))
	for _, i := range current {
		curKeys[i.DedupeKey()] = i
	}

	var diff WatchDiff
	for k, i := range curKeys {
		if _, ok := prevKeys[k]; !ok {
			diff.Added = append(diff.Added, i)
		}
	}
	for k, i := range prevKeys {
		if _, ok := curKeys[k]; !ok {
			diff.Removed = append(diff.Removed, i)
		}
	}
	return diff
}
