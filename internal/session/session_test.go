package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/annai/internal/config"
	"github.com/hyperjump/annai/internal/embedding"
	"github.com/hyperjump/annai/internal/indexer"
	"github.com/hyperjump/annai/internal/ingest"
	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/storage"
	"github.com/hyperjump/annai/internal/vector"
)

func managerFixture(t *testing.T) (*Manager, string) {
	t.Helper()

	repoRoot := t.TempDir()
	files := map[string]string{
		"requirements.txt": "flask\n",
		"main.py":          "import flask\napp = flask.Flask(__name__)\n",
	}
	for rel, content := range files {
		if err := os.WriteFile(filepath.Join(repoRoot, rel), []byte(content), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "s.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	idx, err := vector.NewMemoryIndex(32)
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	cfg := config.IndexConfig{ChunkLines: 200, ChunkOverlap: 30, MaxFileBytes: 2_000_000, MaxReadBytes: 200_000}
	ix := indexer.New(store, idx, embedding.NewMockEmbedder(32), cfg)
	ing := ingest.NewIngestor(t.TempDir(), nil)

	return NewManager(ing, ix, store, idx), repoRoot
}

func TestAnalyzeLocalDirectory(t *testing.T) {
	m, root := managerFixture(t)

	sess, err := m.Analyze(context.Background(), root)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if sess.Classification.Label != models.LabelPythonGeneric {
		t.Errorf("label = %q, want python-generic", sess.Classification.Label)
	}
	if sess.Chunks == 0 {
		t.Error("no chunks indexed")
	}

	got, ok := m.Get(sess.ID)
	if !ok || got.ID != sess.ID {
		t.Error("session not retrievable by ID")
	}
	byRepo, ok := m.GetByRepo(sess.RepoID)
	if !ok || byRepo.ID != sess.ID {
		t.Error("session not retrievable by repo ID")
	}
}

func TestLoadStoredRestoresIndexWithoutEmbedding(t *testing.T) {
	m, root := managerFixture(t)
	ctx := context.Background()

	sess, err := m.Analyze(ctx, root)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	// Fresh manager sharing the same store simulates a new process.
	store := m.store
	idx, err := vector.NewMemoryIndex(32)
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	cfg := config.IndexConfig{ChunkLines: 200, ChunkOverlap: 30}
	ix := indexer.New(store, idx, failingEmbedder{}, cfg)
	fresh := NewManager(ingest.NewIngestor(t.TempDir(), nil), ix, store, idx)

	restored, err := fresh.LoadStored(ctx, sess.RepoID)
	if err != nil {
		t.Fatalf("LoadStored: %v", err)
	}
	if restored.Chunks != sess.Chunks {
		t.Errorf("restored %d chunks, want %d", restored.Chunks, sess.Chunks)
	}
	size, err := idx.Size(ctx, restored.RepoID)
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != sess.Chunks {
		t.Errorf("vector index size = %d, want %d", size, sess.Chunks)
	}
}

func TestAnalyzeKeepsSameNamedCheckoutsApart(t *testing.T) {
	m, _ := managerFixture(t)
	ctx := context.Background()

	// Two checkouts called "app" under different parents.
	roots := make([]string, 2)
	contents := []string{"import flask\n", "import celery\n"}
	for i := range roots {
		roots[i] = filepath.Join(t.TempDir(), "app")
		if err := os.MkdirAll(roots[i], 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(roots[i], "main.py"), []byte(contents[i]), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	first, err := m.Analyze(ctx, roots[0])
	if err != nil {
		t.Fatalf("Analyze first: %v", err)
	}
	second, err := m.Analyze(ctx, roots[1])
	if err != nil {
		t.Fatalf("Analyze second: %v", err)
	}

	if first.RepoID == second.RepoID {
		t.Fatalf("both checkouts got repo ID %q", first.RepoID)
	}

	repos, err := m.store.ListRepos(ctx)
	if err != nil {
		t.Fatalf("ListRepos: %v", err)
	}
	if len(repos) != 2 {
		t.Fatalf("stored repos = %d, want 2", len(repos))
	}

	chunks, err := m.store.GetChunksByRepo(ctx, first.RepoID)
	if err != nil {
		t.Fatalf("GetChunksByRepo: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Content != "import flask" {
		t.Errorf("first repo's chunks overwritten: %+v", chunks)
	}

	// Re-analyzing the same root keeps its ID stable.
	again, err := m.Analyze(ctx, roots[0])
	if err != nil {
		t.Fatalf("re-Analyze: %v", err)
	}
	if again.RepoID != first.RepoID {
		t.Errorf("repo ID changed across runs: %q vs %q", first.RepoID, again.RepoID)
	}
}

// failingEmbedder proves LoadStored never embeds.
type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	panic("embedder must not be called")
}
func (failingEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	panic("embedder must not be called")
}
func (failingEmbedder) Dimensions() int { return 32 }
func (failingEmbedder) Close() error    { return nil }
