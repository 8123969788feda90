// Package docs renders the fixed set of onboarding documents for a
// classified repository.
package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/annai/internal/diagram"
	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/snapshot"
)

// Document file names per project type. Every label maps to exactly one
// triple.
const (
	DocOnboarding     = "ONBOARDING.md"
	DocArchitecture   = "ARCHITECTURE.md"
	DocFilesOverview  = "FILES_OVERVIEW.md"
	DocMLPipeline     = "ML_PIPELINE.md"
	DocExperiments    = "EXPERIMENTS.md"
	DocResultsSummary = "RESULTS_SUMMARY.md"
)

// Generator renders document sets and persists them to the output directory.
type Generator struct {
	diagrams *diagram.Generator
	logger   *zap.Logger
	now      func() time.Time
}

// NewGenerator creates a doc generator. logger may be nil.
func NewGenerator(diagrams *diagram.Generator, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if diagrams == nil {
		diagrams = diagram.NewGenerator(logger)
	}
	return &Generator{diagrams: diagrams, logger: logger, now: time.Now}
}

// DocumentNames returns the file names generated for a label, in render
// order. The mapping is fixed: ml-notebook repos get the notebook triple,
// everything else the standard onboarding triple.
func DocumentNames(label models.Label) []string {
	if label == models.LabelMLNotebook {
		return []string{DocMLPipeline, DocExperiments, DocResultsSummary}
	}
	return []string{DocOnboarding, DocArchitecture, DocFilesOverview}
}

// Generate renders the document set for the snapshot and classification.
func (g *Generator) Generate(snap *models.RepoSnapshot, cls *models.Classification) (models.DocumentSet, error) {
	data := docData{
		RepoName:    snap.Name,
		GeneratedOn: g.now().Format("2006-01-02 15:04"),
		RunCommands: cls.RunCommands,
		EntryFiles:  cls.EntryFiles,
		Notes:       cls.Notes,
		Notebooks:   snapshot.FilesWithSuffix(snap, ".ipynb"),
	}

	set := make(models.DocumentSet)
	if cls.Label == models.LabelMLNotebook {
		for name, tpl := range map[string]string{
			DocMLPipeline:     "ml-pipeline",
			DocExperiments:    "experiments",
			DocResultsSummary: "results-summary",
		} {
			content, err := g.render(tpl, data)
			if err != nil {
				return nil, err
			}
			set[name] = content
		}
		return set, nil
	}

	onboarding := "onboarding-python"
	switch cls.Label {
	case models.LabelNextJS:
		onboarding = "onboarding-nextjs"
	case models.LabelNodeGeneric:
		onboarding = "onboarding-node"
	}
	content, err := g.render(onboarding, data)
	if err != nil {
		return nil, err
	}
	set[DocOnboarding] = content

	if diagram.IsTypeScriptRepo(snap) {
		data.Language = "TypeScript/TSX"
		data.LanguageNote = "Prioritizes files in `app/`, `lib/`, `src/`, and `components/` folders."
	} else {
		data.Language = "Python"
		data.LanguageNote = "Modules are repo files; external imports are omitted."
	}
	data.Mermaid = g.diagrams.Generate(snap)
	content, err = g.render("architecture", data)
	if err != nil {
		return nil, err
	}
	set[DocArchitecture] = content

	data.Tree = snapshot.RenderMarkdownTree(snap)
	content, err = g.render("files-overview", data)
	if err != nil {
		return nil, err
	}
	set[DocFilesOverview] = content

	return set, nil
}

func (g *Generator) render(name string, data docData) (string, error) {
	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimLeft(b.String(), "\n"), nil
}

// Write persists a document set under outputDir/repoName, replacing any
// previous generation for the same repo.
func (g *Generator) Write(outputDir, repoName string, set models.DocumentSet) (string, error) {
	dir := filepath.Join(outputDir, repoName)
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("clear output dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	for _, name := range set.Names() {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(set[name]), 0644); err != nil {
			return "", fmt.Errorf("write %s: %w", name, err)
		}
		g.logger.Debug("wrote document", zap.String("path", path))
	}
	return dir, nil
}
