package diagram

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/snapshot"
)

func snapshotFixture(t *testing.T, files map[string]string) *models.RepoSnapshot {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	snap, err := snapshot.Build(root, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return snap
}

func TestParsePythonImports(t *testing.T) {
	text := `import os
import numpy.linalg
from src.utils import helper
from . import sibling
	import indented
x = "import fake"
`
	got := parsePythonImports(text)
	want := map[string]bool{"os": true, "numpy": true, "src": true, "indented": true}
	for _, mod := range got {
		if !want[mod] {
			t.Errorf("unexpected import %q", mod)
		}
		delete(want, mod)
	}
	for mod := range want {
		t.Errorf("missing import %q", mod)
	}
}

func TestPythonGraphEdges(t *testing.T) {
	snap := snapshotFixture(t, map[string]string{
		"main.py":      "from src.core import run\nimport os\n",
		"src/core.py":  "import json\n",
		"src/other.py": "",
	})
	g := NewGenerator(nil)
	graph := g.Python(snap)

	wantNodes := []string{"main", "src.core", "src.other"}
	if len(graph.Nodes) != len(wantNodes) {
		t.Fatalf("nodes = %v, want %v", graph.Nodes, wantNodes)
	}
	for i, n := range wantNodes {
		if graph.Nodes[i] != n {
			t.Errorf("node[%d] = %q, want %q", i, graph.Nodes[i], n)
		}
	}

	out := MermaidFromModuleGraph(graph)
	if !strings.Contains(out, "graph TD") {
		t.Error("missing graph TD header")
	}
	// main imports src.* which resolves to the src.core node.
	if !strings.Contains(out, "main --> src_core") {
		t.Errorf("missing main -> src.core edge in:\n%s", out)
	}
	// os and json are external and must not produce edges.
	if strings.Contains(out, "--> os") || strings.Contains(out, "--> json") {
		t.Errorf("external import leaked into diagram:\n%s", out)
	}
}

func TestTypeScriptGraph(t *testing.T) {
	snap := snapshotFixture(t, map[string]string{
		"tsconfig.json":        "{}",
		"app/page.tsx":         `import { Button } from "../components/button"` + "\n" + `import util from "./util"` + "\n",
		"app/util.ts":          "export default 1\n",
		"components/button.tsx": "export const Button = () => null\n",
		"components/icons/index.ts": "export {}\n",
		"app/layout.tsx":       `import icons from "../components/icons"` + "\n",
	})
	g := NewGenerator(nil)
	graph := g.TypeScript(snap)

	hasEdge := func(from, to string) bool {
		for _, e := range graph.Edges {
			if e.From == from && e.To == to {
				return true
			}
		}
		return false
	}
	if !hasEdge("app/page.tsx", "components/button.tsx") {
		t.Errorf("missing extension-resolved edge, edges = %v", graph.Edges)
	}
	if !hasEdge("app/page.tsx", "app/util.ts") {
		t.Errorf("missing sibling edge, edges = %v", graph.Edges)
	}
	if !hasEdge("app/layout.tsx", "components/icons/index.ts") {
		t.Errorf("missing index-resolved edge, edges = %v", graph.Edges)
	}
}

func TestMermaidFileGraphNodeCap(t *testing.T) {
	graph := &Graph{Nodes: []string{
		"zz/deep.ts", "app/page.tsx", "lib/db.ts", "src/x.ts", "components/b.tsx",
	}}
	out := MermaidFromFileGraph(graph, 4)

	if strings.Contains(out, "zz_deep_ts") {
		t.Errorf("low-priority node survived the cap:\n%s", out)
	}
	for _, keep := range []string{"app_page_tsx", "lib_db_ts", "src_x_ts", "components_b_tsx"} {
		if !strings.Contains(out, keep) {
			t.Errorf("expected node %s in:\n%s", keep, out)
		}
	}
}

func TestGeneratePicksLanguage(t *testing.T) {
	tsSnap := snapshotFixture(t, map[string]string{
		"tsconfig.json": "{}",
		"src/a.ts":      `import b from "./b"` + "\n",
		"src/b.ts":      "",
	})
	out := NewGenerator(nil).Generate(tsSnap)
	if !strings.Contains(out, "src_a_ts --> src_b_ts") {
		t.Errorf("expected file-level edge in:\n%s", out)
	}

	pySnap := snapshotFixture(t, map[string]string{
		"main.py": "import helper\n",
		"helper.py": "",
	})
	out = NewGenerator(nil).Generate(pySnap)
	if !strings.Contains(out, "main --> helper") {
		t.Errorf("expected module-level edge in:\n%s", out)
	}
}
