package orchestrator

import (
	"context"

	"github.com/srijanshukla18/kubectl-smart/internal/collector"
	"github.com/srijanshukla18/kubectl-smart/internal/graph"
	"github.com/srijanshukla18/kubectl-smart/internal/model"
	"github.com/srijanshukla18/kubectl-smart/internal/parser"
	"github.com/srijanshukla18/kubectl-smart/internal/render"
	"github.com/srijanshukla18/kubectl-smart/internal/scoring"
)

// GraphRequest identifies the subject and traversal direction for a graph
// run (spec §4.4, §6). Upstream/Downstream mirror the CLI's boolean flags;
// when neither is set, both directions are traversed.
type GraphRequest struct {
	Kind       string
	Namespace  string
	Name       string
	Upstream   bool
	Downstream bool
}

// GraphPayload bundles everything the renderer needs to produce both the
// ASCII tree and the structured output for one graph run.
type GraphPayload struct {
	Graph      *model.Graph
	Subject    model.UID
	Direction  graph.Direction
	DirLabel   string
	Severities map[model.UID]model.Severity
	Stats      graph.Stats
	Result     render.GraphResult
}

// Graph implements spec §4.8's graph pipeline: validate, resolve subject,
// collect neighbor candidates, build the graph, traverse.
func (o *Orchestrator) Graph(ctx context.Context, req GraphRequest) Result {
	if err := validateKind(req.Kind); err != nil {
		return fatalResult(req.Name, err)
	}
	if err := validateName("namespace", req.Namespace, true); err != nil {
		return fatalResult(req.Name, err)
	}
	if err := validateName("name", req.Name, false); err != nil {
		return fatalResult(req.Name, err)
	}

	subj := collector.Subject{Kind: req.Kind, Namespace: req.Namespace, Name: req.Name}
	cres := collector.GraphCollect(ctx, o.CC, subj, o.Deadlines)

	if len(cres.Artifacts["subject"]) == 0 {
		return fatalResult(req.Name, subjectError(cres, req.Kind, req.Namespace, req.Name))
	}
	if err := checkCancelled(ctx); err != nil {
		return fatalResult(req.Name, err)
	}

	var records []*model.ResourceRecord
	records = append(records, parser.ParseArtifact(cres.Artifacts["subject"][0]))
	for _, a := range cres.Artifacts["neighbors"] {
		records = append(records, parser.ParseArtifact(a))
	}

	g := graph.Build(records)
	subjectUID := records[0].UID

	dir, dirLabel := resolveDirection(req.Upstream, req.Downstream)

	var edges []model.Edge
	var stats graph.Stats
	if dirLabel == "both" {
		down := graph.Traverse(g, subjectUID, graph.Downstream)
		up := graph.Traverse(g, subjectUID, graph.Upstream)
		edges = append(append([]model.Edge{}, down...), up...)
		stats = graph.Summarize(g, subjectUID)
	} else {
		edges = graph.Traverse(g, subjectUID, dir)
		stats = graph.Summarize(g, subjectUID)
	}

	severities := severitiesFor(o.Engine, records)

	payload := GraphPayload{
		Graph:      g,
		Subject:    subjectUID,
		Direction:  dir,
		DirLabel:   dirLabel,
		Severities: severities,
		Stats:      stats,
		Result:     render.BuildGraphResult(g, subjectUID, dirLabel, edges, stats),
	}

	return Result{
		Subject:  records[0].FullName(),
		Payload:  payload,
		Notes:    partialNotes(cres.Partial),
		ExitCode: ExitSuccess,
	}
}

// resolveDirection maps the CLI's two booleans onto a single traversal mode:
// exactly one flag set means that direction only; neither or both set means
// traverse (and report) both.
func resolveDirection(upstream, downstream bool) (graph.Direction, string) {
	switch {
	case upstream && !downstream:
		return graph.Upstream, "upstream"
	case downstream && !upstream:
		return graph.Downstream, "downstream"
	default:
		return graph.Downstream, "both"
	}
}

// severitiesFor runs the scoring engine, record by record, purely to derive
// a health glyph per node for the tree renderer (spec §4.4's "health
// glyph"). Each record is scored independently of the traversal.
func severitiesFor(engine *scoring.Engine, records []*model.ResourceRecord) map[model.UID]model.Severity {
	out := make(map[model.UID]model.Severity, len(records))
	for _, r := range records {
		report := engine.Run(scoring.Input{Subject: r})
		if report.RootCause == nil {
			out[r.UID] = model.SeverityHealthy
			continue
		}
		out[r.UID] = report.RootCause.Severity
	}
	return out
}
