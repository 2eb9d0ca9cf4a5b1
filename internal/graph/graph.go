// Package graph implements spec §4.4's GraphBuilder: a fixed ruleset that
// scans parsed records and emits a directed labeled model.Graph, plus BFS
// traversal and ASCII tree rendering.
package graph

import (
	"sort"
	"strings"

	"github.com/srijanshukla18/kubectl-smart/internal/model"
)

// Build constructs the graph from a flat record set, applying every edge
// rule in spec §4.4. Records must already carry the Properties keys the
// parser layer attaches (ownerReferences, selector, nodeName, mounts*,
// scaleTargetRef*, volumeName, backendServices, podSelector).
func Build(records []*model.ResourceRecord) *model.Graph {
	g := model.NewGraph()
	for _, r := range records {
		g.AddVertex(r)
	}

	byFullName := map[string]*model.ResourceRecord{}
	byKindName := map[string][]*model.ResourceRecord{} // key: kind -> records, for selector matching within a namespace
	for _, r := range records {
		byFullName[r.FullName()] = r
		byKindName[string(r.Kind)] = append(byKindName[string(r.Kind)], r)
	}

	for _, r := range records {
		switch r.Kind {
		case model.KindPod:
			edgesForPod(g, r, byKindName)
		case model.KindReplicaSet, model.KindStatefulSet, model.KindDaemonSet, model.KindJob:
			edgesForOwnerViaRefsOrSelector(g, r, byKindName[string(model.KindPod)])
		case model.KindDeployment:
			edgesForOwnerViaRefsOrSelector(g, r, byKindName[string(model.KindReplicaSet)])
		case model.KindService:
			edgesForService(g, r, byKindName[string(model.KindPod)])
		case model.KindIngress:
			edgesForIngress(g, r, byKindName[string(model.KindService)])
		case model.KindPersistentVolumeClaim:
			edgesForPVC(g, r, byKindName[string(model.KindPersistentVolume)])
		case model.KindHorizontalPodAutoscaler:
			edgesForHPA(g, r, byFullName)
		case model.KindNetworkPolicy:
			edgesForNetworkPolicy(g, r, byKindName[string(model.KindPod)])
		}
	}

	sortEdges(g)
	return g
}

func edgesForPod(g *model.Graph, pod *model.ResourceRecord, byKind map[string][]*model.ResourceRecord) {
	if nodeName, _ := pod.Properties["nodeName"].(string); nodeName != "" {
		for _, n := range byKind[string(model.KindNode)] {
			if n.Name == nodeName {
				g.AddEdge(pod.UID, n.UID, model.EdgeScheduledOn)
			}
		}
	}
	mountsInto(g, pod, "mountsConfigMaps", byKind[string(model.KindConfigMap)], model.EdgeMounts)
	mountsInto(g, pod, "mountsSecrets", byKind[string(model.KindSecret)], model.EdgeMounts)
	mountsInto(g, pod, "mountsPVCs", byKind[string(model.KindPersistentVolumeClaim)], model.EdgeMounts)

	if sa, _ := pod.Properties["serviceAccount"].(string); sa != "" {
		for _, s := range byKind[string(model.KindServiceAccount)] {
			if s.Name == sa {
				g.AddEdge(pod.UID, s.UID, model.EdgeReferences)
			}
		}
	}
}

func mountsInto(g *model.Graph, pod *model.ResourceRecord, propKey string, candidates []*model.ResourceRecord, label model.EdgeLabel) {
	names, _ := pod.Properties[propKey].([]string)
	if len(names) == 0 {
		return
	}
	wanted := map[string]bool{}
	for _, n := range names {
		wanted[n] = true
	}
	for _, c := range candidates {
		if c.Namespace == pod.Namespace && wanted[c.Name] {
			g.AddEdge(pod.UID, c.UID, label)
		}
	}
}

// edgesForOwnerViaRefsOrSelector implements spec §4.4's owns rule for
// controller→child edges: ownerReferences first, falling back to
// label-selector match when absent.
func edgesForOwnerViaRefsOrSelector(g *model.Graph, parent *model.ResourceRecord, children []*model.ResourceRecord) {
	matchedByRef := false
	for _, child := range children {
		if child.Namespace != parent.Namespace {
			continue
		}
		refs, _ := child.Properties["ownerReferences"].([]string)
		for _, ref := range refs {
			if ref == string(parent.Kind)+"/"+parent.Name {
				g.AddEdge(parent.UID, child.UID, model.EdgeOwns)
				matchedByRef = true
			}
		}
	}
	if matchedByRef {
		return
	}
	sel, _ := parent.Properties["selector"].(map[string]string)
	if len(sel) == 0 {
		return
	}
	for _, child := range children {
		if child.Namespace == parent.Namespace && labelsMatch(sel, child.Labels) {
			g.AddEdge(parent.UID, child.UID, model.EdgeOwns)
		}
	}
}

// edgesForService implements Service→Pod `selects` via spec.selector vs pod
// labels, label-subset containment; an empty selector selects none
// (spec §4.4, seed scenario C).
func edgesForService(g *model.Graph, svc *model.ResourceRecord, pods []*model.ResourceRecord) {
	sel, _ := svc.Properties["selector"].(map[string]string)
	if len(sel) == 0 {
		return
	}
	for _, p := range pods {
		if p.Namespace == svc.Namespace && labelsMatch(sel, p.Labels) {
			g.AddEdge(svc.UID, p.UID, model.EdgeSelects)
		}
	}
}

func edgesForIngress(g *model.Graph, ing *model.ResourceRecord, services []*model.ResourceRecord) {
	backends, _ := ing.Properties["backendServices"].([]string)
	wanted := map[string]bool{}
	for _, b := range backends {
		wanted[b] = true
	}
	for _, s := range services {
		if s.Namespace == ing.Namespace && wanted[s.Name] {
			g.AddEdge(ing.UID, s.UID, model.EdgeReferences)
		}
	}
}

func edgesForPVC(g *model.Graph, pvc *model.ResourceRecord, pvs []*model.ResourceRecord) {
	volName, _ := pvc.Properties["volumeName"].(string)
	if volName == "" {
		return
	}
	for _, pv := range pvs {
		if pv.Name == volName {
			g.AddEdge(pvc.UID, pv.UID, model.EdgeBindsTo)
		}
	}
}

func edgesForHPA(g *model.Graph, hpa *model.ResourceRecord, byFullName map[string]*model.ResourceRecord) {
	kind, _ := hpa.Properties["scaleTargetRefKind"].(string)
	name, _ := hpa.Properties["scaleTargetRefName"].(string)
	if kind == "" || name == "" {
		return
	}
	ns := hpa.Namespace
	if ns == "" {
		ns = "-"
	}
	target, ok := byFullName[kind+"/"+ns+"/"+name]
	if ok {
		g.AddEdge(hpa.UID, target.UID, model.EdgeReferences)
	}
}

func edgesForNetworkPolicy(g *model.Graph, np *model.ResourceRecord, pods []*model.ResourceRecord) {
	sel, _ := np.Properties["podSelector"].(map[string]string)
	for _, p := range pods {
		if p.Namespace != np.Namespace {
			continue
		}
		if len(sel) == 0 || labelsMatch(sel, p.Labels) {
			g.AddEdge(np.UID, p.UID, model.EdgeSelects)
		}
	}
}

// labelsMatch implements label-subset containment: every key/value in sel
// must be present and equal in labels.
func labelsMatch(sel, labels map[string]string) bool {
	if len(sel) == 0 {
		return false
	}
	for k, v := range sel {
		if labels[k] != v {
			return false
		}
	}
	return true
}

// sortEdges implements spec §5's "Graph edge enumeration is sorted by
// (kind, name) for reproducibility" — sorted by the destination vertex's
// (kind, name), then by label for full determinism.
func sortEdges(g *model.Graph) {
	sort.SliceStable(g.Edges, func(i, j int) bool {
		a, b := g.Edges[i], g.Edges[j]
		ra, rb := g.Vertices[a.To], g.Vertices[b.To]
		ka, kb := "", ""
		na, nb := "", ""
		if ra != nil {
			ka, na = string(ra.Kind), ra.Name
		}
		if rb != nil {
			kb, nb = string(rb.Kind), rb.Name
		}
		if ka != kb {
			return ka < kb
		}
		if na != nb {
			return na < nb
		}
		return a.Label < b.Label
	})
}

// Direction selects which edges BFS follows.
type Direction int

const (
	Downstream Direction = iota // follow outgoing edges
	Upstream                    // follow incoming edges
)

// Traverse implements spec §4.4's BFS from the subject, terminating on
// every graph (invariant 4, §8): each node is visited at most once per
// direction via a visited set, so cycles outside `owns` edges are tolerated.
func Traverse(g *model.Graph, start model.UID, dir Direction) []model.Edge {
	visited := map[model.UID]bool{start: true}
	queue := []model.UID{start}
	var out []model.Edge

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		var edges []model.Edge
		if dir == Downstream {
			edges = g.Out(cur)
		} else {
			edges = g.In(cur)
		}
		for _, e := range edges {
			next := e.To
			if dir == Upstream {
				next = e.From
			}
			out = append(out, e)
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return out
}

// Stats summarizes a traversal for the structured output schema (§6).
type Stats struct {
	Resources    int
	Dependencies int
	Upstream     int
	Downstream   int
}

// Summarize computes Stats for a subject over both directions.
func Summarize(g *model.Graph, start model.UID) Stats {
	down := Traverse(g, start, Downstream)
	up := Traverse(g, start, Upstream)
	seen := map[model.UID]bool{start: true}
	for _, e := range down {
		seen[e.To] = true
	}
	for _, e := range up {
		seen[e.From] = true
	}
	return Stats{
		Resources:    len(seen),
		Dependencies: len(down) + len(up),
		Upstream:     len(up),
		Downstream:   len(down),
	}
}

// sortedCopy is a small helper render.go uses to walk a node's edges in a
// stable, display-capped order without re-sorting the whole graph.
func sortedCopy(edges []model.Edge, g *model.Graph) []model.Edge {
	out := append([]model.Edge(nil), edges...)
	sort.SliceStable(out, func(i, j int) bool {
		ra, rb := g.Vertices[out[i].To], g.Vertices[out[j].To]
		if ra == nil || rb == nil {
			return false
		}
		if ra.Kind != rb.Kind {
			return ra.Kind < rb.Kind
		}
		return strings.Compare(ra.Name, rb.Name) < 0
	})
	return out
}
