package diagram

import (
	"regexp"
	"strings"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/snapshot"
)

// pyImportRe matches `import a.b` and `from a.b import c` at line start.
var pyImportRe = regexp.MustCompile(`(?m)^\s*(?:import\s+([\w\.]+)|from\s+([\w\.]+)\s+import\s+)`)

// moduleFromPath converts "pkg/sub/mod.py" to the dotted module "pkg.sub.mod".
func moduleFromPath(rel string) string {
	rel = strings.TrimSuffix(rel, ".py")
	return strings.ReplaceAll(rel, "/", ".")
}

// parsePythonImports returns the top-level modules imported by the source
// text. Only the first dotted segment is kept so the graph stays readable.
func parsePythonImports(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range pyImportRe.FindAllStringSubmatch(text, -1) {
		mod := m[1]
		if mod == "" {
			mod = m[2]
		}
		if mod == "" {
			continue
		}
		top := mod
		if i := strings.IndexByte(top, '.'); i >= 0 {
			top = top[:i]
		}
		if top == "" {
			// `from . import x` has no named module.
			continue
		}
		if _, ok := seen[top]; !ok {
			seen[top] = struct{}{}
			out = append(out, top)
		}
	}
	return out
}

// Python builds a module-level dependency graph over the snapshot's .py
// files. Nodes are dotted module paths; edge targets are top-level import
// names, which the Mermaid renderer matches back to nodes.
func (g *Generator) Python(snap *models.RepoSnapshot) *Graph {
	nodes := make(map[string]struct{})
	edges := make(edgeSet)

	for _, rel := range snapshot.FilesWithSuffix(snap, ".py") {
		text, ok := g.readSource(snap, rel)
		if !ok {
			continue
		}
		src := moduleFromPath(rel)
		nodes[src] = struct{}{}
		for _, imp := range parsePythonImports(text) {
			edges.add(src, imp)
		}
	}
	return buildGraph(nodes, edges)
}
