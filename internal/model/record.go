package model

import (
	"fmt"

	"github.com/google/uuid"
)

// UID identifies a ResourceRecord within a single run. Spec §3: "uid is
// unique per process; a second run may assign different uids." A fresh
// google/uuid value is generated per record at parse time — grounded on the
// same library the teacher and the rest of the pack use for per-run
// identifiers (kcli, kubilitics-ai, kubilitics-backend all depend on
// github.com/google/uuid for exactly this kind of ephemeral identity).
type UID string

// NewUID mints a fresh per-process identity.
func NewUID() UID { return UID(uuid.NewString()) }

// Condition is a generic status.conditions entry (spec §3, §4.5 fallback).
type Condition struct {
	Type    string
	Status  string // "True" | "False" | "Unknown"
	Reason  string
	Message string
}

// ContainerStatus captures the fields the ScoringEngine and Parsers need
// from pod.status.containerStatuses (spec §4.3).
type ContainerStatus struct {
	Name                 string
	Ready                bool
	RestartCount         int32
	WaitingReason        string
	WaitingMessage       string
	TerminatedReason     string
	TerminatedExitCode   int32
	LastTerminatedReason string
	Image                string
}

// StatusSummary is the normalized status view every ResourceRecord carries.
type StatusSummary struct {
	Phase      string
	Ready      bool
	Conditions []Condition
}

// ResourceRecord is the typed, parsed form of a raw cluster artifact
// (spec §3). Identity is (Kind, Namespace, Name, UID); FullName is the
// "Kind/namespace/name" display form used throughout Issues and the graph.
type ResourceRecord struct {
	UID       UID
	Kind      Kind
	Namespace string
	Name      string
	Status    StatusSummary
	Labels    map[string]string
	Annotations map[string]string

	// Properties is the free-form bag for kind-specific extracted fields:
	// container statuses, owner references, selectors, volumes, resource
	// requests/limits, a metrics snapshot, and (for Generic kinds) the
	// original "kind" string. Keys are documented per-parser in
	// internal/parser.
	Properties map[string]any

	Events []EventRecord
}

// FullName implements spec §3's "Kind/namespace/name" identity string.
func (r *ResourceRecord) FullName() string {
	if r == nil {
		return ""
	}
	ns := r.Namespace
	if ns == "" {
		ns = "-"
	}
	return fmt.Sprintf("%s/%s/%s", r.Kind, ns, r.Name)
}

// ContainerStatuses is a typed accessor over Properties["containerStatuses"].
func (r *ResourceRecord) ContainerStatuses() []ContainerStatus {
	v, ok := r.Properties["containerStatuses"].([]ContainerStatus)
	if !ok {
		return nil
	}
	return v
}

// NewResourceRecord allocates a record with a fresh per-process UID.
func NewResourceRecord(kind Kind, namespace, name string) *ResourceRecord {
	return &ResourceRecord{
		UID:        NewUID(),
		Kind:       kind,
		Namespace:  namespace,
		Name:       name,
		Properties: map[string]any{},
	}
}
