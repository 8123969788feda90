// Package models defines core data structures for repo snapshots, chunks, and Q&A.
package models

import "time"

// Label is the fixed enumeration of project-type classifications.
type Label string

const (
	LabelNextJS        Label = "next-js"
	LabelMLNotebook    Label = "ml-notebook"
	LabelPythonGeneric Label = "python-generic"
	LabelNodeGeneric   Label = "node-generic"
)

// RepoSnapshot is a local directory tree plus its filtered, sorted relative
// file paths. Discarded (or re-built) when the underlying tree changes.
type RepoSnapshot struct {
	Name  string   `json:"name"`
	Root  string   `json:"root"`
	Files []string `json:"files"`
}

// Classification is the outcome of project-type detection: one Label plus the
// entry files and run commands that were detected along the way. Immutable
// once computed for a snapshot.
type Classification struct {
	Label       Label    `json:"label"`
	EntryFiles  []string `json:"entry_files,omitempty"`
	RunCommands []string `json:"run_commands,omitempty"`
	Notes       []string `json:"notes,omitempty"`
}

// Session is one analysis of a repository: snapshot, classification, and the
// identifiers needed to reach its index. Sessions are not safe for concurrent
// mutation; the server serializes writes per session.
type Session struct {
	ID             string          `json:"id"`
	RepoID         string          `json:"repo_id"`
	URL            string          `json:"url,omitempty"`
	Snapshot       *RepoSnapshot   `json:"snapshot"`
	Classification *Classification `json:"classification"`
	Chunks         int             `json:"chunks"`
	CreatedAt      time.Time       `json:"created_at"`
}
