package orchestrator

import (
	"context"
	"strings"

	"github.com/srijanshukla18/kubectl-smart/internal/clustererr"
	"github.com/srijanshukla18/kubectl-smart/internal/collector"
	"github.com/srijanshukla18/kubectl-smart/internal/model"
	"github.com/srijanshukla18/kubectl-smart/internal/parser"
	"github.com/srijanshukla18/kubectl-smart/internal/render"
	"github.com/srijanshukla18/kubectl-smart/internal/scoring"
)

// DiagRequest identifies the subject for a diag run (spec §4.8).
type DiagRequest struct {
	Kind      string
	Namespace string
	Name      string
}

// Diag implements spec §4.8's diag pipeline: validate, resolve subject,
// collect, parse, score, choose exit code.
func (o *Orchestrator) Diag(ctx context.Context, req DiagRequest) Result {
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
	cres := collector.DiagCollect(ctx, o.CC, subj, o.Deadlines)

	if len(cres.Artifacts["subject"]) == 0 {
		err := subjectError(cres, req.Kind, req.Namespace, req.Name)
		return fatalResult(req.Name, err)
	}
	if err := checkCancelled(ctx); err != nil {
		return fatalResult(req.Name, err)
	}

	subjectRecord := parser.ParseArtifact(cres.Artifacts["subject"][0])
	events := parser.ParseEvents(cres.Artifacts["events"])
	records := []*model.ResourceRecord{subjectRecord}

	var children []*model.ResourceRecord
	if model.IsController(subjectRecord.Kind) {
		children = controllerChildren(subjectRecord, cres)
		records = append(records, children...)
		events = append(events, parser.ParseEvents(cres.Artifacts["pod-events"])...)
	}
	parser.AttachEvents(records, events)

	logText := buildLogText(cres)

	report := o.Engine.Run(scoring.Input{Subject: subjectRecord, Children: children, LogText: logText})

	diagResult := render.BuildDiagResult(report.RootCause, report.ContributingFactors, report.AllIssues)

	notes := partialNotes(cres.Partial)
	return Result{
		Subject:  subjectRecord.FullName(),
		Payload:  diagResult,
		Notes:    notes,
		ExitCode: diagExitCode(report.RootCause),
	}
}

// controllerChildren parses every collected Pod artifact in this subject's
// namespace as a child; owner references and label selectors are not
// consulted, so unrelated Pods in the same namespace are included.
func controllerChildren(subject *model.ResourceRecord, cres *collector.Result) []*model.ResourceRecord {
	var out []*model.ResourceRecord
	for _, a := range cres.Artifacts["children"] {
		if a.Namespace != subject.Namespace {
			continue
		}
		out = append(out, parser.ParseArtifact(a))
	}
	return out
}

// buildLogText keys collected log text by "podName/container" (the same key
// scoring.Engine.issuesForRecord looks up). Describe output (spec §4.2:
// "used for events and verbose status") is folded into every container's
// entry for the resource it describes, so log-correlation also matches
// reasons that only surface in `kubectl describe`'s status/events section.
func buildLogText(cres *collector.Result) map[string]string {
	out := map[string]string{}
	for _, a := range cres.Artifacts["logs"] {
		if text, ok := a.Object.(string); ok {
			out[a.Name] = text
		}
	}
	for _, a := range cres.Artifacts["describe"] {
		text, ok := a.Object.(string)
		if !ok || text == "" {
			continue
		}
		prefix := a.Name + "/"
		matched := false
		for key := range out {
			if strings.HasPrefix(key, prefix) {
				out[key] += "\n" + text
				matched = true
			}
		}
		if !matched {
			out[a.Name] = text
		}
	}
	return out
}

// diagExitCode implements spec §6/§8.8: exit 2 iff a Critical root cause
// exists, 1 iff only Warnings exist, 0 otherwise.
func diagExitCode(root *model.Issue) int {
	if root == nil {
		return ExitSuccess
	}
	switch root.Severity {
	case model.SeverityCritical:
		return ExitCritical
	case model.SeverityWarning:
		return ExitWarning
	default:
		return ExitSuccess
	}
}

func subjectError(cres *collector.Result, kind, namespace, name string) error {
	for _, p := range cres.Partial {
		if p.Source == "subject" {
			return clustererr.Wrap("subject", p.Err)
		}
	}
	return clustererr.New(clustererr.KindNotFound, "subject", notFoundErr(kind, namespace, name))
}

func notFoundErr(kind, namespace, name string) error {
	return &notFound{kind: kind, namespace: namespace, name: name}
}

type notFound struct{ kind, namespace, name string }

func (e *notFound) Error() string {
	return e.kind + "/" + e.namespace + "/" + e.name + " not found"
}

// partialNotes renders each collector.PartialError into a notes[] line
// (spec §7), appending a remediation hint for Forbidden/Timeout/Unavailable
// kinds (spec §7's "human-friendly remediation hint... e.g., run `kubectl
// auth can-i ...` for Forbidden").
func partialNotes(partial []collector.PartialError) []string {
	var out []string
	for _, p := range partial {
		line := p.String()
		if hint := clustererr.RemediationHint(p.Kind, "get", p.Source, ""); hint != "" {
			line += " (" + hint + ")"
		}
		out = append(out, line)
	}
	return out
}

func fatalResult(subject string, err error) Result {
	return Result{
		Subject:  subject,
		Notes:    []string{err.Error()},
		ExitCode: ExitCritical,
	}
}
