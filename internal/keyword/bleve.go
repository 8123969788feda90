// Package keyword provides Bleve-backed keyword search over chunks, the
// exact-match complement to the semantic index.
package keyword

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	keywordanalyzer "github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/hyperjump/annai/internal/models"
)

// Index is an in-memory Bleve index of chunk text and file paths. Documents
// are keyed by repo and chunk ID together, and every search is scoped to one
// repo. The index is rebuilt from storage at startup, so nothing is persisted
// to disk.
type Index struct {
	index bleve.Index
}

// chunkDoc is the indexed shape of a chunk.
type chunkDoc struct {
	RepoID  string `json:"repo_id"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// NewIndex creates an empty in-memory keyword index. The standard analyzer
// (lowercase + tokenize, no stemming) keeps identifier searches literal; the
// repo ID is indexed untokenized so scoping matches it exactly.
func NewIndex() (*Index, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textField)
	docMapping.AddFieldMappingsAt("path", textField)
	repoField := bleve.NewTextFieldMapping()
	repoField.Analyzer = keywordanalyzer.Name
	repoField.IncludeInAll = false
	docMapping.AddFieldMappingsAt("repo_id", repoField)
	im.AddDocumentMapping("chunk", docMapping)
	im.DefaultType = "chunk"
	im.DefaultMapping = docMapping

	idx, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("create keyword index: %w", err)
	}
	return &Index{index: idx}, nil
}

// docID qualifies a chunk ID with its repo; chunk IDs repeat across repos
// that share file layouts.
func docID(repoID, chunkID string) string {
	return repoID + "\x00" + chunkID
}

// IndexChunks adds chunks in one batch, keyed by repo and chunk ID.
func (ix *Index) IndexChunks(chunks []*models.Chunk) error {
	batch := ix.index.NewBatch()
	for _, c := range chunks {
		doc := chunkDoc{RepoID: c.RepoID, Path: c.FilePath, Content: c.Content}
		if err := batch.Index(docID(c.RepoID, c.ID), doc); err != nil {
			return fmt.Errorf("batch chunk %s: %w", c.ID, err)
		}
	}
	return ix.index.Batch(batch)
}

// RemoveChunks deletes a repo's chunks by ID in one batch.
func (ix *Index) RemoveChunks(repoID string, ids []string) error {
	batch := ix.index.NewBatch()
	for _, id := range ids {
		batch.Delete(docID(repoID, id))
	}
	return ix.index.Batch(batch)
}

// Result is one keyword hit.
type Result struct {
	ID    string
	Score float64
}

// Search runs a match query over the repo's paths and content, returning up
// to limit chunk IDs by descending score.
func (ix *Index) Search(repoID, query string, limit int) ([]*Result, error) {
	scope := bleve.NewTermQuery(repoID)
	scope.SetField("repo_id")
	req := bleve.NewSearchRequest(bleve.NewConjunctionQuery(bleve.NewMatchQuery(query), scope))
	req.Size = limit
	res, err := ix.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	out := make([]*Result, len(res.Hits))
	for i, hit := range res.Hits {
		out[i] = &Result{ID: strings.TrimPrefix(hit.ID, repoID+"\x00"), Score: hit.Score}
	}
	return out, nil
}

// Count returns the number of indexed chunks across all repos.
func (ix *Index) Count() (uint64, error) {
	return ix.index.DocCount()
}

// Close releases the index.
func (ix *Index) Close() error {
	return ix.index.Close()
}
