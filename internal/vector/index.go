// Package vector provides similarity indexes over chunk embeddings.
package vector

import "context"

// Index stores embeddings keyed by repo and chunk ID and answers
// nearest-neighbor queries within a single repo. Chunk IDs are only unique
// per repo, so every operation carries the owning repo ID; Size accepts an
// empty repo ID to count everything. Vectors are L2-normalized by the
// embedder, so inner product scores are cosine similarities.
type Index interface {
	Add(ctx context.Context, repoID string, ids []string, vectors [][]float32) error
	Search(ctx context.Context, repoID string, query []float32, k int) ([]*Result, error)
	Remove(ctx context.Context, repoID string, ids []string) error
	Size(ctx context.Context, repoID string) (int, error)
	Close() error
}

// Result is a single similarity hit.
type Result struct {
	ID    string
	Score float64
}
