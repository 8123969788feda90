package docs

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/hyperjump/annai/internal/classify"
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

func TestDocumentNamesFixedPerLabel(t *testing.T) {
	tests := []struct {
		label models.Label
		want  []string
	}{
		{models.LabelNextJS, []string{DocOnboarding, DocArchitecture, DocFilesOverview}},
		{models.LabelNodeGeneric, []string{DocOnboarding, DocArchitecture, DocFilesOverview}},
		{models.LabelPythonGeneric, []string{DocOnboarding, DocArchitecture, DocFilesOverview}},
		{models.LabelMLNotebook, []string{DocMLPipeline, DocExperiments, DocResultsSummary}},
	}
	for _, tt := range tests {
		got := DocumentNames(tt.label)
		if len(got) != 3 {
			t.Fatalf("%s: got %d names, want 3", tt.label, len(got))
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: names = %v, want %v", tt.label, got, tt.want)
				break
			}
		}
	}
}

func TestGenerateNotebookTriple(t *testing.T) {
	snap := snapshotFixture(t, map[string]string{
		"notebooks/train.ipynb": "{}",
		"requirements.txt":      "numpy\npandas\nscikit-learn\n",
	})
	cls := classify.NewClassifier().Classify(snap)
	if cls.Label != models.LabelMLNotebook {
		t.Fatalf("label = %q, want ml-notebook", cls.Label)
	}

	set, err := NewGenerator(nil, nil).Generate(snap, cls)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	got := set.Names()
	want := []string{DocExperiments, DocMLPipeline, DocResultsSummary}
	sort.Strings(want)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("names = %v, want %v", got, want)
	}
	if !strings.Contains(set[DocMLPipeline], "notebooks/train.ipynb") {
		t.Error("ML_PIPELINE.md does not list the notebook")
	}
}

func TestGenerateNextJSTripleWithDiagram(t *testing.T) {
	snap := snapshotFixture(t, map[string]string{
		"package.json":          `{"scripts":{"dev":"next dev"}}`,
		"next.config.js":        "module.exports = {}\n",
		"app/page.tsx":          `import { Button } from "../components/button"` + "\n",
		"components/button.tsx": "export const Button = () => null\n",
	})
	cls := classify.NewClassifier().Classify(snap)
	if cls.Label != models.LabelNextJS {
		t.Fatalf("label = %q, want next-js", cls.Label)
	}

	set, err := NewGenerator(nil, nil).Generate(snap, cls)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	arch := set[DocArchitecture]
	if !strings.Contains(arch, "```mermaid") || !strings.Contains(arch, "graph TD") {
		t.Errorf("ARCHITECTURE.md missing mermaid block:\n%s", arch)
	}
	if !strings.Contains(arch, "-->") {
		t.Errorf("expected at least one edge in diagram:\n%s", arch)
	}
	if !strings.Contains(set[DocOnboarding], "Next.js App Router") {
		t.Error("ONBOARDING.md missing Next.js header")
	}
	if !strings.Contains(set[DocFilesOverview], "**app/**") {
		t.Errorf("FILES_OVERVIEW.md missing directory entry:\n%s", set[DocFilesOverview])
	}
}

func TestWriteOverwritesPreviousGeneration(t *testing.T) {
	out := t.TempDir()
	g := NewGenerator(nil, nil)

	first := models.DocumentSet{"ONBOARDING.md": "v1", "STALE.md": "old"}
	if _, err := g.Write(out, "widget", first); err != nil {
		t.Fatalf("Write: %v", err)
	}

	second := models.DocumentSet{"ONBOARDING.md": "v2"}
	dir, err := g.Write(out, "widget", second)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "ONBOARDING.md"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "v2" {
		t.Errorf("content = %q, want v2", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "STALE.md")); !os.IsNotExist(err) {
		t.Error("stale document survived rewrite")
	}
}
