// Package clusterclient implements the ClusterClient boundary named in
// spec §4.1: the only place the core touches a Kubernetes cluster. Every
// method here is non-mutating (spec §8 invariant 5, read-only).
package clusterclient

import (
	"context"
	"time"
)

// Artifact is one raw object returned by a List/Get call, paired with the
// kind it was fetched as (so Parsers know how to decode it without
// re-inspecting TypeMeta, which dynamic/unstructured reads don't always
// populate).
type Artifact struct {
	Kind      string
	Namespace string
	Name      string
	Object    any // *corev1.Pod, *unstructured.Unstructured, etc.
}

// TopSample is one row of a TopPods/TopNodes snapshot (spec §4.1, §4.3).
type TopSample struct {
	Namespace     string
	Name          string
	CPUMillicores int64
	MemoryBytes   int64
}

// ClusterClient is the boundary to the cluster API consumed by the core
// (spec §4.1). Implementations must classify errors per spec §7's taxonomy
// (see internal/clustererr) and must never mutate cluster state.
type ClusterClient interface {
	ListNamespaced(ctx context.Context, kind, namespace string) ([]Artifact, error)
	Get(ctx context.Context, kind, namespace, name string) (Artifact, error)
	Describe(ctx context.Context, kind, namespace, name string) (string, error)
	Events(ctx context.Context, namespace string, involvedObjectFilter map[string]string) ([]Artifact, error)
	Logs(ctx context.Context, namespace, pod, container string, tail int, previous bool) (string, error)
	TopPods(ctx context.Context, namespace string) ([]TopSample, error)
	TopNodes(ctx context.Context) ([]TopSample, error)
	RawGet(ctx context.Context, path string) ([]byte, error)
	CurrentContext() string
	CanI(ctx context.Context, verb, resource, namespace string) (bool, error)
}

// Deadlines bundles the per-call and per-run deadlines from spec §5.
type Deadlines struct {
	PerCall time.Duration
	PerRun  time.Duration
}

// DefaultDeadlines matches spec §6's documented defaults.
func DefaultDeadlines() Deadlines {
	return Deadlines{PerCall: time.Second, PerRun: 3 * time.Second}
}
