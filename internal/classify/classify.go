// Package classify detects the project type of a repo snapshot using an
// ordered list of marker rules.
package classify

import (
	"strings"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/snapshot"
)

// Classifier evaluates (predicate, label) rules in priority order against a
// snapshot. Classification never fails: when no rule matches, the dominant
// file extension decides, and python-generic is the final default.
type Classifier struct {
	rules []rule
}

type rule struct {
	name  string
	label models.Label
	match func(*repoView) bool
}

// NewClassifier returns a classifier with the standard rule order:
// notebook markers, Next.js markers, Python dependency files, package.json.
func NewClassifier() *Classifier {
	return &Classifier{rules: []rule{
		{name: "notebook markers", label: models.LabelMLNotebook, match: (*repoView).hasNotebookMarkers},
		{name: "next.js markers", label: models.LabelNextJS, match: (*repoView).hasNextMarkers},
		{name: "python dependency files", label: models.LabelPythonGeneric, match: (*repoView).hasPythonMarkers},
		{name: "package.json", label: models.LabelNodeGeneric, match: (*repoView).hasNodeMarkers},
	}}
}

// Classify returns the classification for snap. The result is deterministic
// for a given snapshot.
func (c *Classifier) Classify(snap *models.RepoSnapshot) *models.Classification {
	view := newRepoView(snap)

	label := models.Label("")
	for _, r := range c.rules {
		if r.match(view) {
			label = r.label
			break
		}
	}
	if label == "" {
		label = view.dominantLabel()
	}

	cls := &models.Classification{Label: label}
	switch label {
	case models.LabelNextJS:
		cls.EntryFiles = view.nextEntryFiles()
		cls.RunCommands = view.npmRunCommands()
		cls.Notes = view.nextNotes()
	case models.LabelNodeGeneric:
		cls.RunCommands = view.npmRunCommands()
	case models.LabelPythonGeneric, models.LabelMLNotebook:
		cls.EntryFiles = view.pythonEntryFiles()
	}
	return cls
}

// repoView wraps a snapshot with the lookups the rules need. File contents
// are read lazily and at most once.
type repoView struct {
	snap    *models.RepoSnapshot
	rootSet map[string]struct{} // top-level file and dir names
}

func newRepoView(snap *models.RepoSnapshot) *repoView {
	v := &repoView{snap: snap, rootSet: make(map[string]struct{})}
	for _, f := range snap.Files {
		if i := strings.IndexByte(f, '/'); i >= 0 {
			v.rootSet[f[:i]+"/"] = struct{}{}
		} else {
			v.rootSet[f] = struct{}{}
		}
	}
	return v
}

func (v *repoView) hasRootFile(name string) bool {
	_, ok := v.rootSet[name]
	return ok
}

func (v *repoView) hasRootDir(name string) bool {
	_, ok := v.rootSet[name+"/"]
	return ok
}

var notebookFolders = []string{"notebooks", "nbs", "notebook", "experiments", "jupyter"}

var mlIndicators = []string{
	"torch", "tensorflow", "keras", "scikit-learn", "sklearn",
	"pandas", "numpy", "jupyter", "notebook",
}

func (v *repoView) hasNotebookMarkers() bool {
	for _, dir := range notebookFolders {
		if v.hasRootDir(dir) {
			return true
		}
	}
	if len(snapshot.FilesWithSuffix(v.snap, ".ipynb")) > 0 {
		return true
	}
	// Three or more ML libraries in requirements.txt is a strong signal even
	// without notebooks.
	if req, ok := readRootFile(v.snap, "requirements.txt"); ok {
		lower := strings.ToLower(req)
		count := 0
		for _, lib := range mlIndicators {
			if strings.Contains(lower, lib) {
				count++
			}
		}
		if count >= 3 {
			return true
		}
	}
	return false
}

var nextConfigs = []string{"next.config.js", "next.config.ts", "next.config.mjs"}

func (v *repoView) hasNextMarkers() bool {
	if !v.hasRootFile("package.json") {
		return false
	}
	for _, cfg := range nextConfigs {
		if v.hasRootFile(cfg) {
			return true
		}
	}
	// App Router repos sometimes omit next.config entirely.
	return v.hasRootDir("app")
}

func (v *repoView) hasPythonMarkers() bool {
	return v.hasRootFile("requirements.txt") || v.hasRootFile("pyproject.toml") || v.hasRootFile("setup.py")
}

func (v *repoView) hasNodeMarkers() bool {
	return v.hasRootFile("package.json")
}

// dominantLabel falls back by file extension counts when no marker matched.
func (v *repoView) dominantLabel() models.Label {
	py := len(snapshot.FilesWithSuffix(v.snap, ".py"))
	js := len(snapshot.FilesWithSuffix(v.snap, ".js", ".jsx", ".ts", ".tsx"))
	if js > py {
		return models.LabelNodeGeneric
	}
	return models.LabelPythonGeneric
}

var nextEntryCandidates = []string{
	"app/layout.tsx", "app/layout.jsx", "app/page.tsx", "app/page.jsx",
	"pages/_app.tsx", "pages/_app.jsx", "pages/index.tsx", "pages/index.jsx",
}

func (v *repoView) nextEntryFiles() []string {
	var entries []string
	for _, p := range nextEntryCandidates {
		if snapshot.Contains(v.snap, p) {
			entries = append(entries, p)
		}
	}
	return entries
}

func (v *repoView) nextNotes() []string {
	var notes []string
	if snapshot.Contains(v.snap, "app/layout.tsx") || snapshot.Contains(v.snap, "app/layout.jsx") {
		notes = append(notes, "Next.js App Router detected (`app/` directory); root layout is `app/layout.*`.")
	}
	if snapshot.Contains(v.snap, "pages/index.tsx") || snapshot.Contains(v.snap, "pages/index.jsx") || snapshot.Contains(v.snap, "pages/_app.tsx") {
		notes = append(notes, "Next.js Pages Router detected (`pages/` directory); root route is `pages/index.*`.")
	}
	return notes
}

var pythonEntryCandidates = []string{"main.py", "app.py", "server.py", "run.py", "wsgi.py", "asgi.py"}

func (v *repoView) pythonEntryFiles() []string {
	var entries []string
	for _, name := range pythonEntryCandidates {
		if v.hasRootFile(name) {
			entries = append(entries, name)
		}
	}
	return entries
}
