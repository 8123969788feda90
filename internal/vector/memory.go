package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hyperjump/annai/pkg/utils"
)

// MemoryIndex is a brute-force inner-product index. Entries are tagged with
// their repo, so searches never cross repo boundaries even when two repos
// produce identical chunk IDs. Fine for single-process use, where indexes
// stay well under tens of thousands of chunks.
type MemoryIndex struct {
	dimensions int
	repos      []string
	ids        []string
	vectors    [][]float32
	mu         sync.RWMutex
}

// NewMemoryIndex creates an empty in-memory index of the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}
	return &MemoryIndex{dimensions: dimensions}, nil
}

// Add appends vectors under the given repo and IDs. Vectors are copied.
func (m *MemoryIndex) Add(ctx context.Context, repoID string, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch: %d vs %d", len(ids), len(vectors))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		if len(vectors[i]) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), m.dimensions)
		}
		vec := make([]float32, m.dimensions)
		copy(vec, vectors[i])
		m.repos = append(m.repos, repoID)
		m.ids = append(m.ids, id)
		m.vectors = append(m.vectors, vec)
	}
	return nil
}

// Search returns the repo's top-k entries by inner product, highest first.
func (m *MemoryIndex) Search(ctx context.Context, repoID string, query []float32, k int) ([]*Result, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.ids) == 0 {
		return nil, nil
	}
	var results []*Result
	for i, vec := range m.vectors {
		if m.repos[i] != repoID {
			continue
		}
		results = append(results, &Result{ID: m.ids[i], Score: utils.Dot(query, vec)})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Remove deletes the repo's entries with the given IDs.
func (m *MemoryIndex) Remove(ctx context.Context, repoID string, ids []string) error {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	keptRepos := m.repos[:0]
	keptIDs := m.ids[:0]
	keptVecs := m.vectors[:0]
	for i, id := range m.ids {
		if _, ok := drop[id]; ok && m.repos[i] == repoID {
			continue
		}
		keptRepos = append(keptRepos, m.repos[i])
		keptIDs = append(keptIDs, id)
		keptVecs = append(keptVecs, m.vectors[i])
	}
	m.repos = keptRepos
	m.ids = keptIDs
	m.vectors = keptVecs
	return nil
}

// Size returns the number of stored vectors for a repo, or the total when
// repoID is empty.
func (m *MemoryIndex) Size(ctx context.Context, repoID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if repoID == "" {
		return len(m.ids), nil
	}
	n := 0
	for _, r := range m.repos {
		if r == repoID {
			n++
		}
	}
	return n, nil
}

// Clear removes all entries, keeping the dimension.
func (m *MemoryIndex) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repos = nil
	m.ids = nil
	m.vectors = nil
}

// Close is a no-op.
func (m *MemoryIndex) Close() error {
	return nil
}
