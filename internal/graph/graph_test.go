package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srijanshukla18/kubectl-smart/internal/model"
)

func podWith(ns, name string, labels map[string]string) *model.ResourceRecord {
	p := model.NewResourceRecord(model.KindPod, ns, name)
	p.Labels = labels
	return p
}

func svcWith(ns, name string, selector map[string]string) *model.ResourceRecord {
	s := model.NewResourceRecord(model.KindService, ns, name)
	s.Properties["selector"] = selector
	return s
}

// TestEdgesForService_EmptySelectorSelectsNone covers seed scenario C: a
// Service whose selector doesn't match any pod in the namespace emits no
// `selects` edges, and a Service with an explicitly empty selector is
// likewise orphaned (spec §4.4).
func TestEdgesForService_EmptySelectorSelectsNone(t *testing.T) {
	pod := podWith("prod", "checkout-abc", map[string]string{"app": "checkout"})
	svcEmpty := svcWith("prod", "checkout-svc", map[string]string{})
	svcMismatch := svcWith("prod", "orphan-svc", map[string]string{"app": "nonexistent"})

	g := Build([]*model.ResourceRecord{pod, svcEmpty, svcMismatch})

	assert.Empty(t, g.Out(svcEmpty.UID))
	assert.Empty(t, g.Out(svcMismatch.UID))
}

func TestEdgesForService_MatchingSelectorSelects(t *testing.T) {
	pod := podWith("prod", "checkout-abc", map[string]string{"app": "checkout", "tier": "backend"})
	svc := svcWith("prod", "checkout-svc", map[string]string{"app": "checkout"})

	g := Build([]*model.ResourceRecord{pod, svc})

	edges := g.Out(svc.UID)
	require.Len(t, edges, 1)
	assert.Equal(t, pod.UID, edges[0].To)
	assert.Equal(t, model.EdgeSelects, edges[0].Label)
}

func TestEdgesForService_CrossNamespaceDoesNotMatch(t *testing.T) {
	pod := podWith("staging", "checkout-abc", map[string]string{"app": "checkout"})
	svc := svcWith("prod", "checkout-svc", map[string]string{"app": "checkout"})

	g := Build([]*model.ResourceRecord{pod, svc})

	assert.Empty(t, g.Out(svc.UID))
}

// TestTraverse_TerminatesOnCycle covers invariant 4 (§8): BFS must
// terminate even when edges outside `owns` form a cycle, visiting each
// node at most once per direction.
func TestTraverse_TerminatesOnCycle(t *testing.T) {
	a := model.NewResourceRecord(model.KindConfigMap, "ns", "a")
	b := model.NewResourceRecord(model.KindConfigMap, "ns", "b")
	c := model.NewResourceRecord(model.KindConfigMap, "ns", "c")

	g := model.NewGraph()
	g.AddVertex(a)
	g.AddVertex(b)
	g.AddVertex(c)
	g.AddEdge(a.UID, b.UID, model.EdgeReferences)
	g.AddEdge(b.UID, c.UID, model.EdgeReferences)
	g.AddEdge(c.UID, a.UID, model.EdgeReferences) // cycle back to a

	edges := Traverse(g, a.UID, Downstream)
	assert.Len(t, edges, 3, "each node visited once: a->b, b->c, c->a should not re-queue a")
}

func TestTraverse_Deterministic(t *testing.T) {
	pod := podWith("ns", "p", map[string]string{"app": "x"})
	svcA := svcWith("ns", "svc-a", map[string]string{"app": "x"})
	svcB := svcWith("ns", "svc-b", map[string]string{"app": "x"})

	g := Build([]*model.ResourceRecord{pod, svcA, svcB})

	first := Traverse(g, pod.UID, Upstream)
	second := Traverse(g, pod.UID, Upstream)
	assert.Equal(t, first, second)
}

func TestSummarize_CountsBothDirections(t *testing.T) {
	pod := podWith("ns", "p", map[string]string{"app": "x"})
	svc := svcWith("ns", "svc", map[string]string{"app": "x"})

	g := Build([]*model.ResourceRecord{pod, svc})
	stats := Summarize(g, pod.UID)

	assert.Equal(t, 2, stats.Resources)
	assert.Equal(t, 1, stats.Upstream)
	assert.Equal(t, 0, stats.Downstream)
	assert.Equal(t, 1, stats.Dependencies)
}

func TestLabelsMatch_SubsetContainment(t *testing.T) {
	labels := map[string]string{"app": "x", "tier": "backend"}
	assert.True(t, labelsMatch(map[string]string{"app": "x"}, labels))
	assert.False(t, labelsMatch(map[string]string{"app": "y"}, labels))
	assert.False(t, labelsMatch(map[string]string{}, labels))
}
