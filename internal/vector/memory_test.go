package vector

import (
	"context"
	"testing"
)

func TestMemoryIndexSearchRanking(t *testing.T) {
	idx, err := NewMemoryIndex(3)
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	ctx := context.Background()

	ids := []string{"a", "b", "c"}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.7, 0.7, 0},
	}
	if err := idx.Add(ctx, "r", ids, vectors); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := idx.Search(ctx, "r", []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != "a" {
		t.Errorf("top result = %q, want a", results[0].ID)
	}
	if results[1].ID != "c" {
		t.Errorf("second result = %q, want c", results[1].ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("results not sorted by score")
	}
}

func TestMemoryIndexRemove(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()

	if err := idx.Add(ctx, "r", []string{"x", "y"}, [][]float32{{1, 0}, {0, 1}}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Remove(ctx, "r", []string{"x"}); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	n, err := idx.Size(ctx, "r")
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if n != 1 {
		t.Errorf("size = %d, want 1", n)
	}

	results, err := idx.Search(ctx, "r", []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range results {
		if r.ID == "x" {
			t.Error("removed entry still returned")
		}
	}
}

func TestMemoryIndexScopedByRepo(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()

	// Both repos use the same chunk ID; neither entry may shadow the other.
	if err := idx.Add(ctx, "alpha", []string{"main.py:1-10"}, [][]float32{{1, 0}}); err != nil {
		t.Fatalf("Add alpha: %v", err)
	}
	if err := idx.Add(ctx, "beta", []string{"main.py:1-10"}, [][]float32{{0, 1}}); err != nil {
		t.Fatalf("Add beta: %v", err)
	}

	results, err := idx.Search(ctx, "alpha", []float32{0, 1}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want alpha's single entry", len(results))
	}
	if results[0].Score > 0.5 {
		t.Errorf("alpha search returned beta's vector (score %.2f)", results[0].Score)
	}

	if err := idx.Remove(ctx, "alpha", []string{"main.py:1-10"}); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if n, _ := idx.Size(ctx, "alpha"); n != 0 {
		t.Errorf("alpha size = %d after remove, want 0", n)
	}
	if n, _ := idx.Size(ctx, "beta"); n != 1 {
		t.Errorf("beta size = %d, want 1 (remove crossed repos)", n)
	}
	if n, _ := idx.Size(ctx, ""); n != 1 {
		t.Errorf("total size = %d, want 1", n)
	}
}

func TestMemoryIndexDimensionMismatch(t *testing.T) {
	idx, _ := NewMemoryIndex(4)
	ctx := context.Background()

	if err := idx.Add(ctx, "r", []string{"a"}, [][]float32{{1, 2}}); err == nil {
		t.Error("expected error adding wrong-dimension vector")
	}
	if _, err := idx.Search(ctx, "r", []float32{1}, 1); err == nil {
		t.Error("expected error searching with wrong-dimension query")
	}
}

func TestMemoryIndexEmptySearch(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	results, err := idx.Search(context.Background(), "r", []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results from empty index", len(results))
	}
}
