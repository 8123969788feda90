package diagram

import (
	"sort"
	"strings"

	"github.com/hyperjump/annai/pkg/utils"
)

// DefaultMaxNodes caps file-level diagrams so large frontends stay readable.
const DefaultMaxNodes = 40

// MermaidFromModuleGraph renders a Python module graph as a `graph TD`
// flowchart. Edge targets are top-level import names; an edge is drawn only
// when some node equals the target or lives under it as a package.
func MermaidFromModuleGraph(graph *Graph) string {
	ids := make(map[string]string, len(graph.Nodes))
	for _, n := range graph.Nodes {
		ids[n] = utils.SanitizeMermaidID(n)
	}

	var b strings.Builder
	b.WriteString("```mermaid\ngraph TD\n")
	for _, n := range graph.Nodes {
		b.WriteString("  ")
		b.WriteString(ids[n])
		b.WriteString("[\"")
		b.WriteString(n)
		b.WriteString("\"]\n")
	}
	for _, e := range graph.Edges {
		target := ""
		for _, n := range graph.Nodes {
			if n == e.To || strings.HasPrefix(n, e.To+".") {
				target = n
				break
			}
		}
		if target == "" {
			continue
		}
		b.WriteString("  ")
		b.WriteString(ids[e.From])
		b.WriteString(" --> ")
		b.WriteString(ids[target])
		b.WriteString("\n")
	}
	b.WriteString("```")
	return b.String()
}

// tsPriority ranks file paths for inclusion when the node cap bites. Lower
// is kept first.
func tsPriority(p string) int {
	switch {
	case strings.HasPrefix(p, "app/"):
		return 0
	case strings.HasPrefix(p, "lib/"):
		return 1
	case strings.HasPrefix(p, "src/"):
		return 2
	case strings.HasPrefix(p, "components/"):
		return 3
	default:
		return 10
	}
}

// MermaidFromFileGraph renders a file-level graph as `graph TD`, keeping at
// most maxNodes nodes ranked by tsPriority and dropping edges whose endpoints
// were cut. Long display names are shortened from the left.
func MermaidFromFileGraph(graph *Graph, maxNodes int) string {
	ranked := make([]string, len(graph.Nodes))
	copy(ranked, graph.Nodes)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := tsPriority(ranked[i]), tsPriority(ranked[j])
		if pi != pj {
			return pi < pj
		}
		return ranked[i] < ranked[j]
	})
	if maxNodes > 0 && len(ranked) > maxNodes {
		ranked = ranked[:maxNodes]
	}
	sort.Strings(ranked)

	kept := make(map[string]string, len(ranked))
	for _, n := range ranked {
		kept[n] = utils.SanitizeMermaidID(n)
	}

	var b strings.Builder
	b.WriteString("```mermaid\ngraph TD\n")
	for _, n := range ranked {
		display := n
		if len(display) > 40 {
			display = "..." + display[len(display)-37:]
		}
		b.WriteString("  ")
		b.WriteString(kept[n])
		b.WriteString("[\"")
		b.WriteString(display)
		b.WriteString("\"]\n")
	}
	for _, e := range graph.Edges {
		from, okFrom := kept[e.From]
		to, okTo := kept[e.To]
		if !okFrom || !okTo {
			continue
		}
		b.WriteString("  ")
		b.WriteString(from)
		b.WriteString(" --> ")
		b.WriteString(to)
		b.WriteString("\n")
	}
	b.WriteString("```")
	return b.String()
}
