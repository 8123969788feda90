package docs

import "text/template"

// Template data passed to every document template.
type docData struct {
	RepoName     string
	GeneratedOn  string
	RunCommands  []string
	EntryFiles   []string
	Notes        []string
	Notebooks    []string
	Mermaid      string
	Language     string
	LanguageNote string
	Tree         string
}

var tmpl = template.Must(template.New("docs").Funcs(template.FuncMap{
	"add": func(a, b int) int { return a + b },
}).Parse(`
{{define "onboarding-nextjs"}}# Onboarding Guide: {{.RepoName}}

Generated on: {{.GeneratedOn}}

This is a **Next.js App Router** project.

## Quick Start

1. ` + "`npm install`" + `
{{- if .RunCommands}}
{{- range $i, $cmd := .RunCommands}}
{{add $i 2}}. ` + "`{{$cmd}}`" + `
{{- end}}
{{- else}}
2. ` + "`npm run dev`" + `
{{- end}}
{{if .RunCommands}}{{add (len .RunCommands) 2}}{{else}}3{{end}}. Open [http://localhost:3000](http://localhost:3000) in your browser

## Project Structure

### Core Files

- **` + "`app/layout.tsx`" + `** - Root layout component. Wraps all pages, defines the global UI shell, providers, and metadata.
- **` + "`app/page.tsx`" + `** - Home page component, rendered at the ` + "`/`" + ` route. Each folder inside ` + "`app/`" + ` with a ` + "`page.tsx`" + ` becomes a route.

### Key Directories

- **` + "`app/`" + `** - All routes and pages (folder-based routing)
- **` + "`components/`" + `** - Reusable React components shared across pages
- **` + "`lib/`" + `** - Utility functions, API clients, and shared logic

## Files to Read First

{{if .EntryFiles}}{{range $i, $f := .EntryFiles}}{{add $i 1}}. ` + "`{{$f}}`" + `
{{end}}{{else}}1. ` + "`app/layout.tsx`" + `
2. ` + "`app/page.tsx`" + `
{{end}}
## How Routing Works

Next.js App Router uses **file-based routing**:
- ` + "`app/page.tsx`" + ` → ` + "`/`" + `
- ` + "`app/about/page.tsx`" + ` → ` + "`/about`" + `
- ` + "`app/blog/[slug]/page.tsx`" + ` → ` + "`/blog/:slug`" + ` (dynamic route)
{{if .Notes}}
## Notes
{{range .Notes}}
- {{.}}
{{- end}}
{{end}}
## Next Steps

1. Run the dev server and explore the app in a browser
2. Trace the data flow from a page to its components
3. Check ` + "`lib/`" + ` for API integrations or data fetching
4. Review any middleware or API routes in ` + "`app/api/`" + `
{{end}}

{{define "onboarding-python"}}# Onboarding Guide: {{.RepoName}}

Generated on: {{.GeneratedOn}}

## Quick Start

1. Create and activate a Python virtual environment
` + "```bash" + `
python -m venv venv
source venv/bin/activate
` + "```" + `

2. Install dependencies
` + "```bash" + `
pip install -r requirements.txt
` + "```" + `

3. Run the project
{{- if .EntryFiles}}
{{- range .EntryFiles}}
   - ` + "`python {{.}}`" + `
{{- end}}
{{- else}}
   - Check README and entry points
{{- end}}

## What this repo likely contains
- Core logic in ` + "`src/`" + ` or the main package folder
- Configuration via ` + "`.env`" + `, ` + "`config.*`" + `, or YAML/JSON
- Tests in ` + "`tests/`" + ` (if present)

## Suggested first steps for a new developer
1. Read ` + "`README.md`" + `
2. Identify the entry point (main script / app server)
3. Run tests (if available)
4. Trace one key workflow end-to-end
{{end}}

{{define "onboarding-node"}}# Onboarding Guide: {{.RepoName}}

Generated on: {{.GeneratedOn}}

## Quick Start

1. Install dependencies
` + "```bash" + `
npm install
` + "```" + `

2. Run the project
{{- if .RunCommands}}
{{- range .RunCommands}}
   - ` + "`{{.}}`" + `
{{- end}}
{{- else}}
   - Check ` + "`package.json`" + ` scripts
{{- end}}

## What this repo likely contains
- Source code in ` + "`src/`" + ` or the repo root
- Configuration via ` + "`.env`" + `, ` + "`config.*`" + `, or JSON files
- Tests in ` + "`__tests__/`" + ` or ` + "`test/`" + ` (if present)

## Suggested first steps for a new developer
1. Read ` + "`README.md`" + `
2. Check ` + "`package.json`" + ` for available scripts
3. Run tests (if available): ` + "`npm test`" + `
4. Trace one key workflow end-to-end
{{end}}

{{define "architecture"}}# Architecture: {{.RepoName}}

## Auto-generated dependency diagram ({{.Language}})
{{.Mermaid}}

## Notes
- The diagram is derived from import statement parsing.
- {{.LanguageNote}}
{{end}}

{{define "files-overview"}}# Files Overview

{{.Tree}}{{end}}

{{define "ml-pipeline"}}# ML Pipeline: {{.RepoName}}

Generated on: {{.GeneratedOn}}

This repository contains **Jupyter notebooks** for machine learning experiments.

## Notebooks in this Repository

{{if .Notebooks}}{{range .Notebooks}}- ` + "`{{.}}`" + `
{{end}}{{else}}- (no notebooks found)
{{end}}
## Environment Setup

### Step 1: Create Virtual Environment
` + "```bash" + `
python -m venv venv
source venv/bin/activate
` + "```" + `

### Step 2: Install Dependencies
` + "```bash" + `
pip install -r requirements.txt
` + "```" + `

### Step 3: Launch Jupyter
` + "```bash" + `
jupyter lab
` + "```" + `

## Typical ML Pipeline Stages

| Stage | Description | Look For |
|-------|-------------|----------|
| **Data Loading** | Import and initial exploration | ` + "`pd.read_csv()`" + `, ` + "`load_dataset()`" + ` |
| **Preprocessing** | Cleaning, feature engineering | ` + "`fit_transform()`" + `, ` + "`fillna()`" + ` |
| **Model Training** | Algorithm selection, fitting | ` + "`.fit()`" + `, ` + "`train_test_split()`" + ` |
| **Evaluation** | Metrics, validation | ` + "`accuracy_score()`" + `, ` + "`confusion_matrix()`" + ` |
| **Inference** | Predictions on new data | ` + "`.predict()`" + `, ` + "`model.save()`" + ` |

## Key Files to Check

1. ` + "`requirements.txt`" + ` - Python dependencies
2. ` + "`README.md`" + ` - Project overview and instructions
3. ` + "`data/`" + ` folder - Dataset files (if present)
4. ` + "`models/`" + ` folder - Saved model artifacts (if present)
5. ` + "`src/`" + ` or ` + "`lib/`" + ` - Reusable Python modules
{{end}}

{{define "experiments"}}# Experiments Log: {{.RepoName}}

Generated on: {{.GeneratedOn}}

## Overview

This document tracks experiments and notebooks in the repository.

## Notebooks

{{if .Notebooks}}{{range $i, $nb := .Notebooks}}### {{add $i 1}}. ` + "`{{$nb}}`" + `
- **Purpose**: (Review notebook for details)
- **Key outputs**: (Check cell outputs)
- **Status**: To be documented

{{end}}{{else}}No notebooks found.
{{end}}
## Experiment Tracking Checklist

For each experiment, document:

- [ ] **Objective**: What question are you answering?
- [ ] **Dataset**: Which data split/version?
- [ ] **Model/Method**: Algorithm and hyperparameters
- [ ] **Metrics**: Evaluation criteria
- [ ] **Results**: Key findings
- [ ] **Next Steps**: Follow-up experiments

## Reproducing Experiments

1. Clone the repository
2. Set up the environment (see ML_PIPELINE.md)
3. Run notebooks in order (if sequential dependencies)
4. Compare outputs with documented results
{{end}}

{{define "results-summary"}}# Results Summary: {{.RepoName}}

Generated on: {{.GeneratedOn}}

## Model Performance Overview

| Notebook | Model | Primary Metric | Score |
|----------|-------|----------------|-------|
{{if .Notebooks}}{{range .Notebooks}}| ` + "`{{.}}`" + ` | - | - | - |
{{end}}{{else}}| (none) | - | - | - |
{{end}}
> **Note**: Fill in results after running experiments.

## Key Findings

1. (Finding 1)
2. (Finding 2)
3. (Finding 3)

## Future Work

- [ ] Try additional models
- [ ] Feature engineering improvements
- [ ] Hyperparameter tuning
- [ ] Cross-validation analysis
{{end}}
`))
