package parser

import (
	corev1 "k8s.io/api/core/v1"

	"github.com/srijanshukla18/kubectl-smart/internal/clusterclient"
	"github.com/srijanshukla18/kubectl-smart/internal/model"
)

// ParseEvent converts a raw Event artifact into a model.EventRecord.
// Returns false if the artifact isn't a *corev1.Event (defensive; the
// ClusterClient only ever tags Event-kind artifacts this way).
func ParseEvent(art clusterclient.Artifact) (model.EventRecord, bool) {
	ev, ok := art.Object.(*corev1.Event)
	if !ok || ev == nil {
		return model.EventRecord{}, false
	}
	last := ev.LastTimestamp.Time
	if last.IsZero() {
		last = ev.EventTime.Time
	}
	first := ev.FirstTimestamp.Time
	if first.IsZero() {
		first = last
	}
	count := ev.Count
	if count == 0 {
		count = 1
	}
	return model.EventRecord{
		Type:           model.EventType(ev.Type),
		Reason:         ev.Reason,
		Message:        ev.Message,
		Count:          count,
		FirstTimestamp: first,
		LastTimestamp:  last,
		InvolvedObject: model.InvolvedObject{
			Kind:      ev.InvolvedObject.Kind,
			Namespace: ev.InvolvedObject.Namespace,
			Name:      ev.InvolvedObject.Name,
			UID:       string(ev.InvolvedObject.UID),
		},
	}, true
}

// ParseEvents converts and coalesces a batch of Event artifacts per
// spec §4.3.
func ParseEvents(arts []clusterclient.Artifact) []model.EventRecord {
	events := make([]model.EventRecord, 0, len(arts))
	for _, a := range arts {
		if e, ok := ParseEvent(a); ok {
			events = append(events, e)
		}
	}
	return model.CoalesceEvents(events)
}

// AttachEvents groups coalesced events onto their involved ResourceRecord by
// (kind, namespace, name), capped at 200 per subject (spec §5).
func AttachEvents(records []*model.ResourceRecord, events []model.EventRecord) {
	const maxEvents = 200
	byKey := map[string]*model.ResourceRecord{}
	for _, r := range records {
		byKey[string(r.Kind)+"|"+r.Namespace+"|"+r.Name] = r
	}
	counts := map[*model.ResourceRecord]int{}
	for _, e := range events {
		r, ok := byKey[e.InvolvedObject.Kind+"|"+e.InvolvedObject.Namespace+"|"+e.InvolvedObject.Name]
		if !ok {
			continue
		}
		if counts[r] >= maxEvents {
			continue
		}
		r.Events = append(r.Events, e)
		counts[r]++
	}
}
