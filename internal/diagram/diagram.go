// Package diagram extracts import dependency graphs from a repo snapshot and
// renders them as Mermaid flowcharts.
package diagram

import (
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/snapshot"
)

// Graph is a deduplicated dependency graph. Nodes and Edges are sorted so the
// rendered output is stable for a given snapshot.
type Graph struct {
	Nodes []string
	Edges []models.DependencyEdge
}

// Generator builds dependency graphs from snapshots. Files that cannot be
// read are skipped and logged.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a generator. logger may be nil.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger}
}

// Generate picks the graph language from the snapshot and renders Mermaid
// text. TypeScript repos (tsconfig or next.config present) get a file-level
// graph; everything else gets a Python module-level graph.
func (g *Generator) Generate(snap *models.RepoSnapshot) string {
	if IsTypeScriptRepo(snap) {
		graph := g.TypeScript(snap)
		return MermaidFromFileGraph(graph, DefaultMaxNodes)
	}
	graph := g.Python(snap)
	return MermaidFromModuleGraph(graph)
}

// IsTypeScriptRepo reports whether the snapshot carries TypeScript or Next.js
// build configuration at its root.
func IsTypeScriptRepo(snap *models.RepoSnapshot) bool {
	for _, marker := range []string{
		"tsconfig.json", "next.config.ts", "next.config.js", "next.config.mjs",
	} {
		if snapshot.Contains(snap, marker) {
			return true
		}
	}
	return false
}

// readSource reads one snapshot file, logging and skipping on failure.
func (g *Generator) readSource(snap *models.RepoSnapshot, rel string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(snap.Root, filepath.FromSlash(rel)))
	if err != nil {
		g.logger.Warn("skipping unreadable file", zap.String("path", rel), zap.Error(err))
		return "", false
	}
	return string(data), true
}

type edgeSet map[models.DependencyEdge]struct{}

func (s edgeSet) add(from, to string) {
	s[models.DependencyEdge{From: from, To: to}] = struct{}{}
}

func buildGraph(nodes map[string]struct{}, edges edgeSet) *Graph {
	graph := &Graph{
		Nodes: make([]string, 0, len(nodes)),
		Edges: make([]models.DependencyEdge, 0, len(edges)),
	}
	for n := range nodes {
		graph.Nodes = append(graph.Nodes, n)
	}
	sort.Strings(graph.Nodes)
	for e := range edges {
		graph.Edges = append(graph.Edges, e)
	}
	sort.Slice(graph.Edges, func(i, j int) bool {
		a, b := graph.Edges[i], graph.Edges[j]
		if a.From != b.From {
			return a.From < b.From
		}
		return a.To < b.To
	})
	return graph
}
