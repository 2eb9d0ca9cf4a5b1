package graph

import (
	"fmt"

	"github.com/srijanshukla18/kubectl-smart/internal/model"
)

// DisplayCap is spec §4.4's default "edge count per node exceeds a display
// cap (default 50)" truncation threshold.
const DisplayCap = 50

// HealthGlyph renders the worst Issue.Severity for a resource in the
// current run as a short annotation (spec §4.4, GLOSSARY "Health glyph").
func HealthGlyph(sev model.Severity, unicode bool) string {
	if unicode {
		switch sev {
		case model.SeverityCritical:
			return "✖"
		case model.SeverityWarning:
			return "▲"
		case model.SeverityHealthy, model.SeverityInfo:
			return "✓"
		}
	}
	switch sev {
	case model.SeverityCritical:
		return "[C]"
	case model.SeverityWarning:
		return "[W]"
	default:
		return "[ok]"
	}
}

// TreeLines renders an ASCII tree of the traversal from start in the given
// direction, decorated with health glyphs, capped at DisplayCap edges per
// node with a "(+N more)" suffix (spec §4.4).
func TreeLines(g *model.Graph, start model.UID, dir Direction, severities map[model.UID]model.Severity, unicode bool) []string {
	root := g.Vertices[start]
	if root == nil {
		return nil
	}
	var lines []string
	lines = append(lines, fmt.Sprintf("%s %s", HealthGlyph(severities[start], unicode), root.FullName()))

	visited := map[model.UID]bool{start: true}
	renderChildren(g, start, dir, severities, unicode, "", visited, &lines)
	return lines
}

func renderChildren(g *model.Graph, uid model.UID, dir Direction, severities map[model.UID]model.Severity, unicode bool, prefix string, visited map[model.UID]bool, lines *[]string) {
	var edges []model.Edge
	if dir == Downstream {
		edges = g.Out(uid)
	} else {
		edges = g.In(uid)
	}
	edges = sortedCopy(edges, g)

	shown := edges
	truncated := 0
	if len(shown) > DisplayCap {
		truncated = len(shown) - DisplayCap
		shown = shown[:DisplayCap]
	}

	for i, e := range shown {
		next := e.To
		if dir == Upstream {
			next = e.From
		}
		last := i == len(shown)-1 && truncated == 0
		connector := "├── "
		nextPrefix := prefix + "│   "
		if last {
			connector = "└── "
			nextPrefix = prefix + "    "
		}
		child := g.Vertices[next]
		if child == nil {
			continue
		}
		marker := ""
		alreadyVisited := visited[next]
		if alreadyVisited {
			marker = " (seen)"
		}
		*lines = append(*lines, fmt.Sprintf("%s%s%s %s [%s]%s", prefix, connector, HealthGlyph(severities[next], unicode), child.FullName(), e.Label, marker))
		if !alreadyVisited {
			visited[next] = true
			renderChildren(g, next, dir, severities, unicode, nextPrefix, visited, lines)
		}
	}
	if truncated > 0 {
		*lines = append(*lines, fmt.Sprintf("%s└── (+%d more)", prefix, truncated))
	}
}

// Legend returns the fixed health-glyph legend line for the graph renderer.
func Legend(unicode bool) string {
	return fmt.Sprintf("legend: %s healthy  %s warning  %s critical",
		HealthGlyph(model.SeverityHealthy, unicode),
		HealthGlyph(model.SeverityWarning, unicode),
		HealthGlyph(model.SeverityCritical, unicode))
}
