package orchestrator

import (
	"context"
	"time"

	"github.com/srijanshukla18/kubectl-smart/internal/clusterclient"
	"github.com/srijanshukla18/kubectl-smart/internal/collector"
	"github.com/srijanshukla18/kubectl-smart/internal/config"
	"github.com/srijanshukla18/kubectl-smart/internal/forecast"
	"github.com/srijanshukla18/kubectl-smart/internal/model"
	"github.com/srijanshukla18/kubectl-smart/internal/parser"
	"github.com/srijanshukla18/kubectl-smart/internal/render"
)

// TopRequest identifies the namespace and horizon for a top run
// (spec §4.6, §6).
type TopRequest struct {
	Namespace    string
	HorizonHours int
}

// Top implements spec §4.8's top pipeline: validate, collect, analyze
// capacity and certificates, never fatal on degraded signal (spec §4.6
// "Degradation").
func (o *Orchestrator) Top(ctx context.Context, req TopRequest) Result {
	if err := validateName("namespace", req.Namespace, true); err != nil {
		return fatalResult(req.Namespace, err)
	}
	if err := validateHorizon(req.HorizonHours); err != nil {
		return fatalResult(req.Namespace, err)
	}
	horizon := config.ClampHorizon(req.HorizonHours)

	cres := collector.TopCollect(ctx, o.CC, req.Namespace, o.Deadlines)
	if err := checkCancelled(ctx); err != nil {
		return fatalResult(req.Namespace, err)
	}

	pvcs := parseAll(cres.Artifacts["PersistentVolumeClaim"])
	nodes := parseAll(cres.Artifacts["Node"])
	secrets := parseAll(cres.Artifacts["Secret"])
	ingresses := parseAll(cres.Artifacts["Ingress"])

	horizonDur := time.Duration(horizon) * time.Hour
	capacity, capNotes := o.Forecaster.AnalyzeCapacity(ctx, o.CC, req.Namespace, pvcs, nodes, horizonDur)
	certs := o.Forecaster.AnalyzeCertificates(secrets, ingresses)

	notes := append(partialNotes(cres.Partial), capNotes...)

	result := forecast.Result{
		HorizonHours: horizon,
		Capacity:     capacity,
		Certificates: certs,
		Notes:        notes,
	}

	return Result{
		Subject:  req.Namespace,
		Payload:  render.BuildTopResult(result, notes),
		Notes:    notes,
		ExitCode: ExitSuccess,
	}
}

func parseAll(arts []clusterclient.Artifact) []*model.ResourceRecord {
	out := make([]*model.ResourceRecord, 0, len(arts))
	for _, a := range arts {
		out = append(out, parser.ParseArtifact(a))
	}
	return out
}
