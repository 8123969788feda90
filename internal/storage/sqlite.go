// Package storage persists analyzed repos and their chunks in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/annai/internal/models"
)

// Store is the SQLite-backed persistence layer. Embeddings are stored next
// to chunk text as little-endian float32 blobs so a restart can rebuild the
// similarity index without re-embedding.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the database at dbPath and initializes the
// schema. Parent directories are created as needed.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS repos (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		url TEXT,
		root TEXT NOT NULL,
		label TEXT NOT NULL,
		file_count INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT NOT NULL,
		repo_id TEXT NOT NULL,
		file_path TEXT NOT NULL,
		start_line INTEGER NOT NULL,
		end_line INTEGER NOT NULL,
		content TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		embedding BLOB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (repo_id, id),
		FOREIGN KEY (repo_id) REFERENCES repos(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_repo_id ON chunks(repo_id);
	CREATE INDEX IF NOT EXISTS idx_chunks_repo_file ON chunks(repo_id, file_path);
	`
	_, err := db.Exec(schema)
	return err
}

// RepoRecord is the persisted form of one analyzed repository.
type RepoRecord struct {
	ID        string
	Name      string
	URL       string
	Root      string
	Label     models.Label
	FileCount int
	CreatedAt time.Time
}

// UpsertRepo inserts or replaces the repo record.
func (s *Store) UpsertRepo(ctx context.Context, r *RepoRecord) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO repos (id, name, url, root, label, file_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.URL, r.Root, string(r.Label), r.FileCount, r.CreatedAt,
	)
	return err
}

// GetRepo returns the repo record by ID, or nil when absent.
func (s *Store) GetRepo(ctx context.Context, id string) (*RepoRecord, error) {
	var r RepoRecord
	var label string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, url, root, label, file_count, created_at FROM repos WHERE id = ?`, id,
	).Scan(&r.ID, &r.Name, &r.URL, &r.Root, &label, &r.FileCount, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Label = models.Label(label)
	return &r, nil
}

// ListRepos returns all repo records, newest first.
func (s *Store) ListRepos(ctx context.Context) ([]*RepoRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, url, root, label, file_count, created_at FROM repos ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repos []*RepoRecord
	for rows.Next() {
		var r RepoRecord
		var label string
		if err := rows.Scan(&r.ID, &r.Name, &r.URL, &r.Root, &label, &r.FileCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Label = models.Label(label)
		repos = append(repos, &r)
	}
	return repos, rows.Err()
}

// DeleteRepo removes the repo and its chunks.
func (s *Store) DeleteRepo(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE repo_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM repos WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceChunks deletes the repo's existing chunks and inserts the new set
// in one transaction, so a re-index is atomic.
func (s *Store) ReplaceChunks(ctx context.Context, repoID string, chunks []*models.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE repo_id = ?`, repoID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, repo_id, file_path, start_line, end_line, content, chunk_index, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, c := range chunks {
		c.CreatedAt = now
		var blob []byte
		if len(c.Embedding) > 0 {
			blob = encodeVector(c.Embedding)
		}
		if _, err := stmt.ExecContext(ctx,
			c.ID, repoID, c.FilePath, c.StartLine, c.EndLine, c.Content, c.Index, blob, c.CreatedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetChunk returns one chunk by repo and chunk ID, or nil when absent.
func (s *Store) GetChunk(ctx context.Context, repoID, chunkID string) (*models.Chunk, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, repo_id, file_path, start_line, end_line, content, chunk_index, embedding, created_at
		 FROM chunks WHERE repo_id = ? AND id = ?`, repoID, chunkID)
	c, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// GetChunksByRepo returns all chunks for a repo ordered by file and index.
func (s *Store) GetChunksByRepo(ctx context.Context, repoID string) ([]*models.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, repo_id, file_path, start_line, end_line, content, chunk_index, embedding, created_at
		 FROM chunks WHERE repo_id = ? ORDER BY file_path, chunk_index`, repoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*models.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChunk(row rowScanner) (*models.Chunk, error) {
	var c models.Chunk
	var blob []byte
	if err := row.Scan(&c.ID, &c.RepoID, &c.FilePath, &c.StartLine, &c.EndLine,
		&c.Content, &c.Index, &blob, &c.CreatedAt); err != nil {
		return nil, err
	}
	if len(blob) > 0 {
		c.Embedding = decodeVector(blob)
	}
	return &c, nil
}

// CountChunks returns the number of chunks stored for a repo.
func (s *Store) CountChunks(ctx context.Context, repoID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE repo_id = ?`, repoID).Scan(&count)
	return count, err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
