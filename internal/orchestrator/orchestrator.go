// Package orchestrator implements spec §4.8: the per-command pipeline that
// validates input, resolves the subject, fans out collectors, runs parsers,
// and invokes the graph builder, scorer, or forecaster before handing a
// result to the renderer. It owns exit-code selection (spec §6) and the
// error taxonomy's abort/downgrade rules (spec §7).
package orchestrator

import (
	"context"
	"fmt"
	"time"

	apivalidation "k8s.io/apimachinery/pkg/util/validation"

	"github.com/srijanshukla18/kubectl-smart/internal/clustererr"
	"github.com/srijanshukla18/kubectl-smart/internal/clusterclient"
	"github.com/srijanshukla18/kubectl-smart/internal/collector"
	"github.com/srijanshukla18/kubectl-smart/internal/config"
	"github.com/srijanshukla18/kubectl-smart/internal/forecast"
	"github.com/srijanshukla18/kubectl-smart/internal/model"
	"github.com/srijanshukla18/kubectl-smart/internal/scoring"
)

// ExitCode values named in spec §6.
const (
	ExitSuccess  = 0
	ExitWarning  = 1
	ExitCritical = 2
)

// Orchestrator wires one cluster connection to the scoring/forecasting
// components and runs the diag/graph/top pipelines over it.
type Orchestrator struct {
	CC         clusterclient.ClusterClient
	Config     *config.Config
	Engine     *scoring.Engine
	Forecaster *forecast.Analyzer
	Deadlines  collector.Deadlines
	Now        func() time.Time
}

// New builds an Orchestrator from a resolved ClusterClient and config.
// weights is nil to use scoring.DefaultWeights().
func New(cc clusterclient.ClusterClient, cfg *config.Config, weights map[string]int) *Orchestrator {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Orchestrator{
		CC:     cc,
		Config: cfg,
		Engine: scoring.NewEngine(weights, cfg.Scoring.LogCorrelationEnabled),
		Forecaster: forecast.NewAnalyzer(
			cfg.Forecast.CacheDir,
			cc.CurrentContext(),
			cfg.Forecast.PrometheusURL,
		),
		Deadlines: collector.Deadlines{
			PerCall:     durationFromSeconds(cfg.Performance.CollectorTimeoutSeconds),
			PerRun:      durationFromSeconds(cfg.Performance.RunTimeoutSeconds),
			Concurrency: cfg.Performance.MaxConcurrentCollectors,
		},
		Now: time.Now,
	}
}

func durationFromSeconds(s float64) time.Duration {
	if s <= 0 {
		return time.Second
	}
	return time.Duration(s * float64(time.Second))
}

// Result is the command-agnostic outcome every pipeline entry point
// returns: a rendering-ready payload, free-text notes (spec §7's notes[]
// channel), and the chosen exit code.
type Result struct {
	Subject  string
	Payload  any
	Notes    []string
	ExitCode int
}

// validateName implements spec §4.8.1: RFC 1123 subdomain/label checks,
// reusing k8s.io/apimachinery/pkg/util/validation rather than hand-rolled
// regexes (the same validator client-go's own object creation paths use).
func validateName(field, value string, isLabel bool) error {
	if value == "" {
		return clustererr.New(clustererr.KindInput, "validate", fmt.Errorf("%s must not be empty", field))
	}
	var errs []string
	if isLabel {
		errs = apivalidation.IsDNS1123Label(value)
	} else {
		errs = apivalidation.IsDNS1123Subdomain(value)
	}
	if len(errs) > 0 {
		return clustererr.New(clustererr.KindInput, "validate", fmt.Errorf("invalid %s %q: %s", field, value, errs[0]))
	}
	return nil
}

// validateKind rejects empty/unrecognized-looking kind strings before any
// cluster call (spec §4.8.1). Generic/CRD kinds are still accepted — only
// the normalized name must look like an identifier, not an RFC1123 name.
func validateKind(kind string) error {
	if kind == "" {
		return clustererr.New(clustererr.KindInput, "validate", fmt.Errorf("resource kind must not be empty"))
	}
	for _, r := range kind {
		if !(r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return clustererr.New(clustererr.KindInput, "validate", fmt.Errorf("invalid resource kind %q: forbidden character %q", kind, r))
		}
	}
	return nil
}

// validateHorizon implements spec §8's boundary rule: 1 and 168 are both
// accepted, 0 or 169+ is an InputError rather than a silent clamp.
func validateHorizon(hours int) error {
	if hours < 1 || hours > 168 {
		return clustererr.New(clustererr.KindInput, "validate", fmt.Errorf("horizon %d out of range: must be between 1 and 168 hours", hours))
	}
	return nil
}

func toSubjects(records []*model.ResourceRecord) map[string]*model.ResourceRecord {
	out := make(map[string]*model.ResourceRecord, len(records))
	for _, r := range records {
		out[r.FullName()] = r
	}
	return out
}

// checkCancelled maps a context error into spec §5's "cancelled" taxonomy
// (exit code 2 always, per spec §5 "Cancellation").
func checkCancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return clustererr.New(clustererr.KindFatal, "orchestrator", fmt.Errorf("cancelled: %w", err))
	}
	return nil
}
