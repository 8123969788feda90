package diagram

import (
	"path"
	"regexp"
	"strings"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/snapshot"
)

// tsImportRe matches relative imports in TS/TSX sources, both static
// (`import X from "./x"`) and dynamic (`import("./x")`).
var tsImportRe = regexp.MustCompile(`(?m)(?:import\s+(?:[\w{},\s*]+\s+from\s+)?['"](\.[^'"]+)['"]|import\s*\(['"](\.[^'"]+)['"]\))`)

var tsExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// parseTSImports returns the relative import specifiers in the source text.
func parseTSImports(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range tsImportRe.FindAllStringSubmatch(text, -1) {
		p := m[1]
		if p == "" {
			p = m[2]
		}
		if !strings.HasPrefix(p, "./") && !strings.HasPrefix(p, "../") {
			continue
		}
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// resolveTSImport resolves a relative specifier against the importing file,
// trying source extensions and index files. Resolution only consults the
// snapshot, so the graph never points at files the filter excluded. The
// second return is false when no snapshot file matches.
func resolveTSImport(snap *models.RepoSnapshot, fromRel, spec string) (string, bool) {
	base := path.Join(path.Dir(fromRel), spec)
	if strings.HasPrefix(base, "..") {
		return "", false
	}
	for _, ext := range tsExtensions {
		if candidate := base + ext; snapshot.Contains(snap, candidate) {
			return candidate, true
		}
	}
	for _, ext := range tsExtensions {
		if candidate := base + "/index" + ext; snapshot.Contains(snap, candidate) {
			return candidate, true
		}
	}
	return "", false
}

// TypeScript builds a file-level dependency graph over the snapshot's .ts and
// .tsx files. Nodes are repo-relative paths; only imports that resolve to a
// file inside the snapshot become edges.
func (g *Generator) TypeScript(snap *models.RepoSnapshot) *Graph {
	nodes := make(map[string]struct{})
	edges := make(edgeSet)

	for _, rel := range snapshot.FilesWithSuffix(snap, ".ts", ".tsx") {
		text, ok := g.readSource(snap, rel)
		if !ok {
			continue
		}
		nodes[rel] = struct{}{}
		for _, spec := range parseTSImports(text) {
			target, ok := resolveTSImport(snap, rel, spec)
			if !ok {
				continue
			}
			edges.add(rel, target)
			nodes[target] = struct{}{}
		}
	}
	return buildGraph(nodes, edges)
}
