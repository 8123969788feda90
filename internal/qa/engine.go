// Package qa answers questions about an indexed repository via
// embed-retrieve-prompt.
package qa

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/annai/internal/embedding"
	"github.com/hyperjump/annai/internal/llm"
	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/storage"
	"github.com/hyperjump/annai/internal/vector"
)

// Engine retrieves the chunks nearest a question and asks the completer for
// an answer grounded in them. A nil completer degrades to returning the
// retrieved chunks themselves.
type Engine struct {
	store     *storage.Store
	index     vector.Index
	embedder  embedding.Embedder
	completer llm.Completer
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates a Q&A engine. completer may be nil.
func NewEngine(store *storage.Store, index vector.Index, embedder embedding.Embedder, completer llm.Completer, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		index:     index,
		embedder:  embedder,
		completer: completer,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IndexSize reports how many vectors are currently searchable across all
// repos.
func (e *Engine) IndexSize(ctx context.Context) (int, error) {
	return e.index.Size(ctx, "")
}

// Ask answers a question about the indexed repo. Retrieval is scoped to
// repoID, and a repo with nothing indexed is refused with
// models.ErrEmptyIndex before any embedding or completion call is made.
// Provider failures surface as models.ServiceError, untouched and unretried.
func (e *Engine) Ask(ctx context.Context, repoID string, req *models.AskRequest) (*models.AskResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	size, err := e.index.Size(ctx, repoID)
	if err != nil {
		return nil, fmt.Errorf("index size: %w", err)
	}
	if size == 0 {
		return nil, models.ErrEmptyIndex
	}

	start := time.Now()

	queryVec, err := e.embedder.Embed(ctx, req.Question)
	if err != nil {
		return nil, err
	}

	hits, err := e.index.Search(ctx, repoID, queryVec, req.TopK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if len(hits) == 0 {
		return nil, models.ErrEmptyIndex
	}

	chunks := make([]*models.Chunk, 0, len(hits))
	for _, hit := range hits {
		chunk, err := e.store.GetChunk(ctx, repoID, hit.ID)
		if err != nil {
			return nil, fmt.Errorf("load chunk %s: %w", hit.ID, err)
		}
		if chunk == nil {
			e.logger.Warn("indexed chunk missing from store", zap.String("chunk", hit.ID))
			continue
		}
		chunks = append(chunks, chunk)
	}
	if len(chunks) == 0 {
		return nil, models.ErrEmptyIndex
	}

	resp := &models.AskResponse{
		Citations: citations(chunks),
		QueryTime: time.Since(start).Milliseconds(),
	}

	if e.completer == nil {
		resp.Answer = fallbackAnswer(req.Question, chunks)
		resp.Provider = "none"
		return resp, nil
	}

	answer, err := e.completer.Complete(ctx, buildPrompt(req.Question, chunks))
	if err != nil {
		return nil, err
	}
	resp.Answer = answer
	resp.Provider = e.completer.Name()
	resp.QueryTime = time.Since(start).Milliseconds()

	e.logger.Debug("answered question",
		zap.String("repo", repoID),
		zap.Int("chunks", len(chunks)),
		zap.Int64("ms", resp.QueryTime))
	return resp, nil
}
