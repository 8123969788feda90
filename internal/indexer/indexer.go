package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/annai/internal/config"
	"github.com/hyperjump/annai/internal/embedding"
	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/storage"
	"github.com/hyperjump/annai/internal/vector"
	"github.com/hyperjump/annai/pkg/utils"
)

// KeywordIndexer receives chunks for exact-match search. Optional; a nil
// indexer disables keyword search.
type KeywordIndexer interface {
	IndexChunks(chunks []*models.Chunk) error
	RemoveChunks(repoID string, ids []string) error
}

// Indexer chunks snapshot files, embeds them, and keeps SQLite, the vector
// index, and the keyword index in step. Re-indexing the same snapshot
// produces the same chunk IDs and, with a deterministic embedder, the same
// vectors.
type Indexer struct {
	store    *storage.Store
	index    vector.Index
	keywords KeywordIndexer
	embedder embedding.Embedder
	cfg      config.IndexConfig
	logger   *zap.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(ix *Indexer) { ix.logger = logger }
}

// WithKeywordIndexer attaches a keyword index.
func WithKeywordIndexer(k KeywordIndexer) Option {
	return func(ix *Indexer) { ix.keywords = k }
}

// New creates an indexer over the given store, vector index, and embedder.
func New(store *storage.Store, index vector.Index, embedder embedding.Embedder, cfg config.IndexConfig, opts ...Option) *Indexer {
	ix := &Indexer{
		store:    store,
		index:    index,
		embedder: embedder,
		cfg:      cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// IndexSnapshot chunks and embeds every indexable file in the snapshot,
// replacing any previous index contents for repoID. Returns the chunk count.
func (ix *Indexer) IndexSnapshot(ctx context.Context, repoID string, snap *models.RepoSnapshot) (int, error) {
	chunks := ix.ChunkSnapshot(repoID, snap)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	for i, c := range chunks {
		c.Embedding = vectors[i]
	}

	if err := ix.removePrevious(ctx, repoID); err != nil {
		return 0, err
	}
	if err := ix.store.ReplaceChunks(ctx, repoID, chunks); err != nil {
		return 0, fmt.Errorf("persist chunks: %w", err)
	}

	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	if err := ix.index.Add(ctx, repoID, ids, vectors); err != nil {
		return 0, fmt.Errorf("add vectors: %w", err)
	}
	if ix.keywords != nil {
		if err := ix.keywords.IndexChunks(chunks); err != nil {
			return 0, fmt.Errorf("index keywords: %w", err)
		}
	}

	ix.logger.Info("indexed snapshot",
		zap.String("repo", repoID),
		zap.Int("files", len(snap.Files)),
		zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

// removePrevious drops the repo's existing entries from the vector and
// keyword indexes, using the stored chunk IDs.
func (ix *Indexer) removePrevious(ctx context.Context, repoID string) error {
	previous, err := ix.store.GetChunksByRepo(ctx, repoID)
	if err != nil {
		return fmt.Errorf("load previous chunks: %w", err)
	}
	if len(previous) == 0 {
		return nil
	}
	ids := make([]string, len(previous))
	for i, c := range previous {
		ids[i] = c.ID
	}
	if err := ix.index.Remove(ctx, repoID, ids); err != nil {
		return fmt.Errorf("remove previous vectors: %w", err)
	}
	if ix.keywords != nil {
		if err := ix.keywords.RemoveChunks(repoID, ids); err != nil {
			return fmt.Errorf("remove previous keywords: %w", err)
		}
	}
	return nil
}

// ChunkSnapshot reads and chunks every indexable file. Oversized files are
// skipped by size, unreadable and binary files are skipped with a warning.
func (ix *Indexer) ChunkSnapshot(repoID string, snap *models.RepoSnapshot) []*models.Chunk {
	var chunks []*models.Chunk
	for _, rel := range snap.Files {
		text, ok := ix.readIndexable(snap, rel)
		if !ok {
			continue
		}
		chunks = append(chunks, ChunkLines(repoID, rel, text, ix.cfg.ChunkLines, ix.cfg.ChunkOverlap)...)
	}
	return chunks
}

func (ix *Indexer) readIndexable(snap *models.RepoSnapshot, rel string) (string, bool) {
	full := filepath.Join(snap.Root, filepath.FromSlash(rel))

	info, err := os.Stat(full)
	if err != nil {
		ix.logger.Warn("skipping unreadable file", zap.String("path", rel), zap.Error(err))
		return "", false
	}
	if ix.cfg.MaxFileBytes > 0 && info.Size() > ix.cfg.MaxFileBytes {
		ix.logger.Debug("skipping oversized file",
			zap.String("path", rel), zap.Int64("size", info.Size()))
		return "", false
	}

	data, err := os.ReadFile(full)
	if err != nil {
		ix.logger.Warn("skipping unreadable file", zap.String("path", rel), zap.Error(err))
		return "", false
	}
	if !utils.IsMostlyText(data) {
		ix.logger.Warn("skipping binary file", zap.String("path", rel))
		return "", false
	}
	if ix.cfg.MaxReadBytes > 0 && len(data) > ix.cfg.MaxReadBytes {
		data = data[:ix.cfg.MaxReadBytes]
	}
	return string(data), true
}
