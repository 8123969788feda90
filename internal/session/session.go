// Package session coordinates the analysis pipeline and tracks analyzed
// repos for the server and CLI.
package session

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/hyperjump/annai/internal/classify"
	"github.com/hyperjump/annai/internal/indexer"
	"github.com/hyperjump/annai/internal/ingest"
	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/snapshot"
	"github.com/hyperjump/annai/internal/storage"
	"github.com/hyperjump/annai/internal/vector"
)

// Manager runs the analyze pipeline (resolve, snapshot, classify, index) and
// keeps the resulting sessions in a TTL cache. Two lookups work: by session
// ID and by repo ID.
type Manager struct {
	ingestor   *ingest.Ingestor
	classifier *classify.Classifier
	indexer    *indexer.Indexer
	store      *storage.Store
	index      vector.Index
	keywords   indexer.KeywordIndexer
	sessions   *gocache.Cache
	logger     *zap.Logger
	onAnalyzed func(*models.Session)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithKeywordIndexer attaches a keyword index used when reloading stored
// repos.
func WithKeywordIndexer(k indexer.KeywordIndexer) Option {
	return func(m *Manager) { m.keywords = k }
}

// WithAnalyzedHook registers a callback invoked after a session is created,
// both for fresh analyses and reloads. The server uses it to start watching
// local repo roots.
func WithAnalyzedHook(fn func(*models.Session)) Option {
	return func(m *Manager) { m.onAnalyzed = fn }
}

// WithTTL overrides the session cache TTL.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.sessions = gocache.New(ttl, ttl/2) }
}

// NewManager creates a session manager with a 24h session TTL.
func NewManager(ing *ingest.Ingestor, ix *indexer.Indexer, store *storage.Store, index vector.Index, opts ...Option) *Manager {
	m := &Manager{
		ingestor:   ing,
		classifier: classify.NewClassifier(),
		indexer:    ix,
		store:      store,
		index:      index,
		sessions:   gocache.New(24*time.Hour, time.Hour),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Analyze runs the full pipeline on a repo URL or local path and returns the
// session. The repo record and chunks are persisted, so later processes can
// reload the index without re-embedding.
func (m *Manager) Analyze(ctx context.Context, source string) (*models.Session, error) {
	root, err := m.ingestor.Resolve(ctx, source)
	if err != nil {
		return nil, err
	}

	snap, err := snapshot.Build(root, nil)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	cls := m.classifier.Classify(snap)

	sess := &models.Session{
		ID:             uuid.New().String(),
		RepoID:         repoIdentity(snap.Name, root),
		URL:            source,
		Snapshot:       snap,
		Classification: cls,
		CreatedAt:      time.Now(),
	}

	if err := m.store.UpsertRepo(ctx, &storage.RepoRecord{
		ID:        sess.RepoID,
		Name:      snap.Name,
		URL:       source,
		Root:      root,
		Label:     cls.Label,
		FileCount: len(snap.Files),
	}); err != nil {
		return nil, fmt.Errorf("persist repo: %w", err)
	}

	chunks, err := m.indexer.IndexSnapshot(ctx, sess.RepoID, snap)
	if err != nil {
		return nil, err
	}
	sess.Chunks = chunks

	m.sessions.SetDefault(sess.ID, sess)
	m.sessions.SetDefault(repoKey(sess.RepoID), sess)

	m.logger.Info("analyzed repository",
		zap.String("session", sess.ID),
		zap.String("repo", sess.RepoID),
		zap.String("label", string(cls.Label)),
		zap.Int("chunks", chunks))
	if m.onAnalyzed != nil {
		m.onAnalyzed(sess)
	}
	return sess, nil
}

// Reindex rebuilds a session's chunks after its tree changed.
func (m *Manager) Reindex(ctx context.Context, sess *models.Session) error {
	snap, err := snapshot.Build(sess.Snapshot.Root, nil)
	if err != nil {
		return fmt.Errorf("rebuild snapshot: %w", err)
	}
	sess.Snapshot = snap
	sess.Classification = m.classifier.Classify(snap)

	chunks, err := m.indexer.IndexSnapshot(ctx, sess.RepoID, snap)
	if err != nil {
		return err
	}
	sess.Chunks = chunks
	return nil
}

// Get returns a session by ID.
func (m *Manager) Get(id string) (*models.Session, bool) {
	v, ok := m.sessions.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*models.Session), true
}

// GetByRepo returns the most recent session for a repo ID.
func (m *Manager) GetByRepo(repoID string) (*models.Session, bool) {
	return m.Get(repoKey(repoID))
}

// LoadStored rebuilds the in-memory similarity and keyword indexes for a
// previously analyzed repo from its persisted chunks and embeddings. No
// embedding service is touched.
func (m *Manager) LoadStored(ctx context.Context, repoID string) (*models.Session, error) {
	rec, err := m.store.GetRepo(ctx, repoID)
	if err != nil {
		return nil, fmt.Errorf("load repo: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("repo not analyzed: %s", repoID)
	}

	chunks, err := m.store.GetChunksByRepo(ctx, repoID)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	ids := make([]string, 0, len(chunks))
	vecs := make([][]float32, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		ids = append(ids, c.ID)
		vecs = append(vecs, c.Embedding)
	}
	// Remove-then-add keeps reloading idempotent across cache expiry.
	if len(ids) > 0 {
		if err := m.index.Remove(ctx, repoID, ids); err != nil {
			return nil, fmt.Errorf("reset vectors: %w", err)
		}
		if err := m.index.Add(ctx, repoID, ids, vecs); err != nil {
			return nil, fmt.Errorf("restore vectors: %w", err)
		}
	}
	if m.keywords != nil && len(chunks) > 0 {
		if err := m.keywords.IndexChunks(chunks); err != nil {
			return nil, fmt.Errorf("restore keywords: %w", err)
		}
	}

	snap, err := snapshot.Build(rec.Root, nil)
	if err != nil {
		return nil, fmt.Errorf("rebuild snapshot: %w", err)
	}

	sess := &models.Session{
		ID:             uuid.New().String(),
		RepoID:         repoID,
		URL:            rec.URL,
		Snapshot:       snap,
		Classification: m.classifier.Classify(snap),
		Chunks:         len(chunks),
		CreatedAt:      rec.CreatedAt,
	}
	m.sessions.SetDefault(sess.ID, sess)
	m.sessions.SetDefault(repoKey(repoID), sess)
	if m.onAnalyzed != nil {
		m.onAnalyzed(sess)
	}
	return sess, nil
}

// GetByRoot returns the session whose snapshot root matches the given path.
func (m *Manager) GetByRoot(root string) (*models.Session, bool) {
	for _, item := range m.sessions.Items() {
		sess, ok := item.Object.(*models.Session)
		if !ok || sess.Snapshot == nil {
			continue
		}
		if sess.Snapshot.Root == root {
			return sess, true
		}
	}
	return nil, false
}

func repoKey(repoID string) string {
	return "repo:" + repoID
}

// repoIdentity derives a stable repo ID from the checkout name and root. The
// name keeps IDs readable; the root hash keeps two checkouts that share a
// base name from overwriting each other's record and chunks.
func repoIdentity(name, root string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(root))
	return fmt.Sprintf("%s-%08x", name, h.Sum32())
}
