package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/srijanshukla18/kubectl-smart/internal/graph"
	"github.com/srijanshukla18/kubectl-smart/internal/model"
)

// GraphResult is the graph command's structured output payload (spec §6):
// `result = { nodes[], edges[], stats:{resources, dependencies, upstream,
// downstream} }`.
type GraphResult struct {
	Subject   string     `json:"subject"`
	Direction string     `json:"direction"`
	Nodes     []string   `json:"nodes"`
	Edges     []EdgeView `json:"edges"`
	Stats     GraphStats `json:"stats"`
}

// GraphStats is the nested stats object named in spec §6.
type GraphStats struct {
	Resources    int `json:"resources"`
	Dependencies int `json:"dependencies"`
	Upstream     int `json:"upstream"`
	Downstream   int `json:"downstream"`
}

// EdgeView is one edge in the structured output, with both endpoints'
// display names resolved (JSON should not require the reader to look up
// UIDs against a separate vertex table).
type EdgeView struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// BuildGraphResult assembles a GraphResult from a traversal (spec §4.4,
// §6). dirName is "upstream", "downstream", or "both".
func BuildGraphResult(g *model.Graph, start model.UID, dirName string, edges []model.Edge, stats graph.Stats) GraphResult {
	subject := g.Vertices[start]

	seen := map[model.UID]bool{start: true}
	views := make([]EdgeView, 0, len(edges))
	for _, e := range edges {
		from, to := g.Vertices[e.From], g.Vertices[e.To]
		if from == nil || to == nil {
			continue
		}
		seen[e.From] = true
		seen[e.To] = true
		views = append(views, EdgeView{From: from.FullName(), To: to.FullName(), Label: string(e.Label)})
	}

	nodes := make([]string, 0, len(seen))
	for uid := range seen {
		if r := g.Vertices[uid]; r != nil {
			nodes = append(nodes, r.FullName())
		}
	}
	sort.Strings(nodes)

	return GraphResult{
		Subject:   subject.FullName(),
		Direction: dirName,
		Nodes:     nodes,
		Edges:     views,
		Stats: GraphStats{
			Resources:    stats.Resources,
			Dependencies: stats.Dependencies,
			Upstream:     stats.Upstream,
			Downstream:   stats.Downstream,
		},
	}
}

// GraphText renders spec §4.4's ASCII tree plus legend and a one-line
// summary of the traversal's scale.
func GraphText(w io.Writer, g *model.Graph, start model.UID, dir graph.Direction, severities map[model.UID]model.Severity, stats graph.Stats, caps Capabilities) {
	lines := graph.TreeLines(g, start, dir, severities, caps.Unicode)
	fmt.Fprintln(w, strings.Join(lines, "\n"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, graph.Legend(caps.Unicode))
	fmt.Fprintf(w, "\n%d resources, %d dependencies (%d upstream, %d downstream)\n",
		stats.Resources, stats.Dependencies, stats.Upstream, stats.Downstream)
}
