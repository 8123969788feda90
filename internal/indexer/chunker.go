// Package indexer turns a repo snapshot into embedded, searchable chunks.
package indexer

import (
	"strings"

	"github.com/hyperjump/annai/internal/models"
)

// ChunkLines splits text into overlapping line windows. Line numbers are
// 1-indexed and inclusive; blank windows are dropped. The same text always
// yields the same chunk boundaries, so chunk IDs are stable across runs.
func ChunkLines(repoID, filePath, text string, linesPerChunk, overlap int) []*models.Chunk {
	if linesPerChunk <= 0 {
		linesPerChunk = 200
	}
	if overlap < 0 || overlap >= linesPerChunk {
		overlap = 0
	}

	lines := strings.Split(text, "\n")
	// Split on a trailing newline yields one empty trailing element.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var chunks []*models.Chunk
	n := len(lines)
	i := 0
	for i < n {
		start := i
		end := start + linesPerChunk
		if end > n {
			end = n
		}
		content := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
		if content != "" {
			chunks = append(chunks, &models.Chunk{
				ID:        models.ChunkID(filePath, start+1, end),
				RepoID:    repoID,
				FilePath:  filePath,
				StartLine: start + 1,
				EndLine:   end,
				Content:   content,
				Index:     len(chunks),
			})
		}
		if end == n {
			break
		}
		i = end - overlap
		if i < 0 {
			i = 0
		}
	}
	return chunks
}
