package models

import (
	"fmt"
	"sort"
	"time"
)

// Chunk is a contiguous span of text from one source file, the unit of
// retrieval. The ID is derived from the file path and line range so that
// re-indexing the same snapshot produces the same chunk identities.
type Chunk struct {
	ID        string    `json:"id" db:"id"`
	RepoID    string    `json:"repo_id" db:"repo_id"`
	FilePath  string    `json:"file_path" db:"file_path"`
	StartLine int       `json:"start_line" db:"start_line"`
	EndLine   int       `json:"end_line" db:"end_line"`
	Content   string    `json:"content" db:"content"`
	Index     int       `json:"chunk_index" db:"chunk_index"`
	Embedding []float32 `json:"-" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ChunkID returns the stable chunk identifier for a file path and line range.
func ChunkID(filePath string, startLine, endLine int) string {
	return fmt.Sprintf("%s:%d-%d", filePath, startLine, endLine)
}

// Citation renders the chunk's source reference, e.g. "src/main.py (lines 10-42)".
func (c *Chunk) Citation() string {
	return fmt.Sprintf("%s (lines %d-%d)", c.FilePath, c.StartLine, c.EndLine)
}

// DependencyEdge is an ordered (importing file, imported module/file) pair.
// Collections of edges are deduplicated by pair identity.
type DependencyEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DocumentSet maps output filename (e.g. "ONBOARDING.md") to rendered content.
type DocumentSet map[string]string

// Names returns the document filenames in the set, sorted.
func (d DocumentSet) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
