package classify

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/snapshot"
)

func writeFixture(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func snapshotFixture(t *testing.T, files map[string]string) *models.RepoSnapshot {
	t.Helper()
	root := t.TempDir()
	writeFixture(t, root, files)
	snap, err := snapshot.Build(root, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return snap
}

func TestClassifyLabels(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  models.Label
	}{
		{
			name: "notebook file wins over python markers",
			files: map[string]string{
				"requirements.txt":    "flask\n",
				"analysis/train.ipynb": "{}",
			},
			want: models.LabelMLNotebook,
		},
		{
			name: "notebook folder",
			files: map[string]string{
				"notebooks/eda.py": "print('hi')\n",
				"package.json":     "{}",
			},
			want: models.LabelMLNotebook,
		},
		{
			name: "three ml libraries in requirements",
			files: map[string]string{
				"requirements.txt": "numpy\npandas\nscikit-learn\n",
				"train.py":         "",
			},
			want: models.LabelMLNotebook,
		},
		{
			name: "two ml libraries is still python",
			files: map[string]string{
				"requirements.txt": "numpy\npandas\n",
			},
			want: models.LabelPythonGeneric,
		},
		{
			name: "next config",
			files: map[string]string{
				"package.json":   `{"scripts":{"dev":"next dev"}}`,
				"next.config.js": "module.exports = {}\n",
			},
			want: models.LabelNextJS,
		},
		{
			name: "app router without next config",
			files: map[string]string{
				"package.json":   "{}",
				"app/layout.tsx": "export default function Layout() {}\n",
			},
			want: models.LabelNextJS,
		},
		{
			name: "app dir without package.json is not next",
			files: map[string]string{
				"app/main.py":      "",
				"requirements.txt": "flask\n",
			},
			want: models.LabelPythonGeneric,
		},
		{
			name: "pyproject",
			files: map[string]string{
				"pyproject.toml": "[project]\nname = \"x\"\n",
			},
			want: models.LabelPythonGeneric,
		},
		{
			name: "plain node",
			files: map[string]string{
				"package.json": `{"scripts":{"start":"node index.js"}}`,
				"index.js":     "",
			},
			want: models.LabelNodeGeneric,
		},
		{
			name: "no markers falls back to dominant extension",
			files: map[string]string{
				"a.ts": "", "b.ts": "", "c.py": "",
			},
			want: models.LabelNodeGeneric,
		},
		{
			name:  "empty repo defaults to python",
			files: map[string]string{"README.md": "# x\n"},
			want:  models.LabelPythonGeneric,
		},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := snapshotFixture(t, tt.files)
			got := c.Classify(snap)
			if got.Label != tt.want {
				t.Errorf("Classify() label = %q, want %q", got.Label, tt.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	snap := snapshotFixture(t, map[string]string{
		"package.json":   `{"scripts":{"dev":"next dev","build":"next build"}}`,
		"next.config.ts": "export default {}\n",
		"app/layout.tsx": "",
		"app/page.tsx":   "",
	})
	c := NewClassifier()
	first := c.Classify(snap)
	for i := 0; i < 5; i++ {
		again := c.Classify(snap)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("classification not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestClassifyRunCommandsAndEntries(t *testing.T) {
	snap := snapshotFixture(t, map[string]string{
		"package.json":   `{"scripts":{"start":"next start","dev":"next dev"}}`,
		"next.config.js": "",
		"app/layout.tsx": "",
		"app/page.tsx":   "",
	})
	got := NewClassifier().Classify(snap)

	wantCmds := []string{"npm run dev", "npm run start"}
	if !reflect.DeepEqual(got.RunCommands, wantCmds) {
		t.Errorf("RunCommands = %v, want %v", got.RunCommands, wantCmds)
	}
	wantEntries := []string{"app/layout.tsx", "app/page.tsx"}
	if !reflect.DeepEqual(got.EntryFiles, wantEntries) {
		t.Errorf("EntryFiles = %v, want %v", got.EntryFiles, wantEntries)
	}
}

func TestClassifyPythonEntryFiles(t *testing.T) {
	snap := snapshotFixture(t, map[string]string{
		"requirements.txt": "flask\n",
		"app.py":           "",
		"main.py":          "",
		"lib/server.py":    "",
	})
	got := NewClassifier().Classify(snap)

	want := []string{"main.py", "app.py"}
	if !reflect.DeepEqual(got.EntryFiles, want) {
		t.Errorf("EntryFiles = %v, want %v", got.EntryFiles, want)
	}
}

func TestMalformedPackageJSON(t *testing.T) {
	snap := snapshotFixture(t, map[string]string{
		"package.json": "{not json",
	})
	got := NewClassifier().Classify(snap)
	if got.Label != models.LabelNodeGeneric {
		t.Errorf("label = %q, want %q", got.Label, models.LabelNodeGeneric)
	}
	if len(got.RunCommands) != 0 {
		t.Errorf("RunCommands = %v, want none", got.RunCommands)
	}
}
