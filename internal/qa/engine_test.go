package qa

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/annai/internal/embedding"
	"github.com/hyperjump/annai/internal/llm"
	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/storage"
	"github.com/hyperjump/annai/internal/vector"
)

// callCountingEmbedder fails the test goal if an empty index still triggers
// embedding calls.
type callCountingEmbedder struct {
	*embedding.MockEmbedder
	calls int
}

func (c *callCountingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.MockEmbedder.Embed(ctx, text)
}

func engineFixture(t *testing.T, completer llm.Completer) (*Engine, *storage.Store, vector.Index, *callCountingEmbedder) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "qa.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	idx, err := vector.NewMemoryIndex(32)
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	emb := &callCountingEmbedder{MockEmbedder: embedding.NewMockEmbedder(32)}
	return NewEngine(store, idx, emb, completer), store, idx, emb
}

func seedChunks(t *testing.T, store *storage.Store, idx vector.Index, emb *callCountingEmbedder, repoID string, chunks []*models.Chunk) {
	t.Helper()
	ctx := context.Background()
	if err := store.UpsertRepo(ctx, &storage.RepoRecord{ID: repoID, Name: repoID, Root: "/tmp/" + repoID, Label: models.LabelPythonGeneric}); err != nil {
		t.Fatalf("UpsertRepo: %v", err)
	}
	ids := make([]string, len(chunks))
	vecs := make([][]float32, len(chunks))
	for i, c := range chunks {
		vec, err := emb.MockEmbedder.Embed(ctx, c.Content)
		if err != nil {
			t.Fatalf("Embed: %v", err)
		}
		c.Embedding = vec
		ids[i] = c.ID
		vecs[i] = vec
	}
	if err := store.ReplaceChunks(ctx, repoID, chunks); err != nil {
		t.Fatalf("ReplaceChunks: %v", err)
	}
	if err := idx.Add(ctx, repoID, ids, vecs); err != nil {
		t.Fatalf("Add: %v", err)
	}
}

func TestAskEmptyIndexNeverCallsServices(t *testing.T) {
	mock := &llm.MockCompleter{Answer: "should not be used"}
	engine, _, _, emb := engineFixture(t, mock)

	_, err := engine.Ask(context.Background(), "r", &models.AskRequest{Question: "how does auth work?"})
	if !errors.Is(err, models.ErrEmptyIndex) {
		t.Fatalf("err = %v, want ErrEmptyIndex", err)
	}
	if len(mock.Prompts) != 0 {
		t.Errorf("completer called %d times on empty index", len(mock.Prompts))
	}
	if emb.calls != 0 {
		t.Errorf("embedder called %d times on empty index", emb.calls)
	}
}

func TestAskEmptyRepoRefusedWhileOthersIndexed(t *testing.T) {
	mock := &llm.MockCompleter{Answer: "should not be used"}
	engine, store, idx, emb := engineFixture(t, mock)

	seedChunks(t, store, idx, emb, "billing", []*models.Chunk{
		{ID: "charge.py:1-10", RepoID: "billing", FilePath: "charge.py", StartLine: 1, EndLine: 10,
			Content: "def charge(card):\n    return gateway.charge(card)"},
	})

	// Another repo's chunks must not make an unindexed repo answerable.
	_, err := engine.Ask(context.Background(), "auth", &models.AskRequest{Question: "how does auth work?"})
	if !errors.Is(err, models.ErrEmptyIndex) {
		t.Fatalf("err = %v, want ErrEmptyIndex", err)
	}
	if emb.calls != 0 {
		t.Errorf("embedder called %d times before refusal", emb.calls)
	}
	if len(mock.Prompts) != 0 {
		t.Errorf("completer called %d times before refusal", len(mock.Prompts))
	}
}

func TestAskRetrievesOnlyOwnRepoChunks(t *testing.T) {
	engine, store, idx, emb := engineFixture(t, nil)

	seedChunks(t, store, idx, emb, "billing", []*models.Chunk{
		{ID: "charge.py:1-10", RepoID: "billing", FilePath: "charge.py", StartLine: 1, EndLine: 10,
			Content: "def charge(card):\n    return gateway.charge(card)"},
	})
	seedChunks(t, store, idx, emb, "auth", []*models.Chunk{
		{ID: "tokens.py:1-10", RepoID: "auth", FilePath: "tokens.py", StartLine: 1, EndLine: 10,
			Content: "def verify_token(token):\n    return jwt.decode(token)"},
	})

	// The question matches the other repo's chunk exactly; billing must
	// still answer from its own chunk.
	resp, err := engine.Ask(context.Background(), "billing", &models.AskRequest{
		Question: "def verify_token(token):\n    return jwt.decode(token)", TopK: 1})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if len(resp.Citations) != 1 || resp.Citations[0] != "charge.py (lines 1-10)" {
		t.Errorf("citations = %v, want charge.py (lines 1-10)", resp.Citations)
	}
}

func TestAskPromptContainsRetrievedFile(t *testing.T) {
	mock := &llm.MockCompleter{Answer: "the token is verified in auth.py"}
	engine, store, idx, emb := engineFixture(t, mock)

	seedChunks(t, store, idx, emb, "r", []*models.Chunk{
		{ID: "auth.py:1-40", RepoID: "r", FilePath: "auth.py", StartLine: 1, EndLine: 40,
			Content: "def verify_token(token):\n    return jwt.decode(token)"},
		{ID: "db.py:1-40", RepoID: "r", FilePath: "db.py", StartLine: 1, EndLine: 40,
			Content: "def connect():\n    return sqlite3.connect(path)"},
	})

	resp, err := engine.Ask(context.Background(), "r", &models.AskRequest{Question: "def verify_token(token):\n    return jwt.decode(token)", TopK: 1})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if resp.Answer != mock.Answer {
		t.Errorf("answer = %q, want completer output verbatim", resp.Answer)
	}

	if len(mock.Prompts) != 1 {
		t.Fatalf("completer called %d times, want 1", len(mock.Prompts))
	}
	prompt := mock.Prompts[0]
	if !strings.Contains(prompt, "FILE: auth.py (lines 1-40)") {
		t.Errorf("prompt missing retrieved file header:\n%s", prompt)
	}
	if len(resp.Citations) == 0 || resp.Citations[0] != "auth.py (lines 1-40)" {
		t.Errorf("citations = %v", resp.Citations)
	}
}

func TestAskServiceErrorSurfacedVerbatim(t *testing.T) {
	svcErr := &models.ServiceError{Service: "completion", Err: errors.New("rate limited")}
	mock := &llm.MockCompleter{Err: svcErr}
	engine, store, idx, emb := engineFixture(t, mock)

	seedChunks(t, store, idx, emb, "r", []*models.Chunk{
		{ID: "a.py:1-10", RepoID: "r", FilePath: "a.py", StartLine: 1, EndLine: 10, Content: "x = 1"},
	})

	_, err := engine.Ask(context.Background(), "r", &models.AskRequest{Question: "what is x?"})
	if !models.IsServiceUnavailable(err) {
		t.Fatalf("err = %v, want service error", err)
	}
	if len(mock.Prompts) != 1 {
		t.Errorf("completer called %d times, want exactly 1 (no retry)", len(mock.Prompts))
	}
}

func TestAskWithoutCompleterFallsBack(t *testing.T) {
	engine, store, idx, emb := engineFixture(t, nil)

	seedChunks(t, store, idx, emb, "r", []*models.Chunk{
		{ID: "main.go:1-20", RepoID: "r", FilePath: "main.go", StartLine: 1, EndLine: 20, Content: "package main"},
	})

	resp, err := engine.Ask(context.Background(), "r", &models.AskRequest{Question: "entry point?"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if resp.Provider != "none" {
		t.Errorf("provider = %q, want none", resp.Provider)
	}
	if !strings.Contains(resp.Answer, "main.go (lines 1-20)") {
		t.Errorf("fallback answer missing citation:\n%s", resp.Answer)
	}
}

func TestAskTopKDefaultAndClamp(t *testing.T) {
	req := &models.AskRequest{Question: "q"}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if req.TopK != 6 {
		t.Errorf("default TopK = %d, want 6", req.TopK)
	}

	req = &models.AskRequest{Question: "q", TopK: 500}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if req.TopK != 20 {
		t.Errorf("clamped TopK = %d, want 20", req.TopK)
	}

	req = &models.AskRequest{}
	if err := req.Validate(); err == nil {
		t.Error("expected error for empty question")
	}
}
