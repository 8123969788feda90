package models

import "fmt"

// AskRequest is a natural-language question against an analyzed repo.
type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// Validate checks the question and clamps TopK into [1, 20], defaulting to 6.
func (r *AskRequest) Validate() error {
	if r.Question == "" {
		return fmt.Errorf("question cannot be empty")
	}
	if r.TopK <= 0 {
		r.TopK = 6
	}
	if r.TopK > 20 {
		r.TopK = 20
	}
	return nil
}

// AskResponse is the answer plus the source citations of the retrieved chunks.
type AskResponse struct {
	Answer    string   `json:"answer"`
	Citations []string `json:"citations,omitempty"`
	Provider  string   `json:"provider,omitempty"`
	QueryTime int64    `json:"query_time_ms"`
}

// SearchRequest is a keyword lookup over an analyzed repo's chunks.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// Validate checks the query and clamps Limit into [1, 100], defaulting to 10.
func (r *SearchRequest) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if r.Limit <= 0 {
		r.Limit = 10
	}
	if r.Limit > 100 {
		r.Limit = 100
	}
	return nil
}

// SearchResult is one keyword hit.
type SearchResult struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// SearchResponse is the response for a keyword search.
type SearchResponse struct {
	Results   []*SearchResult `json:"results"`
	Total     int             `json:"total"`
	QueryTime int64           `json:"query_time_ms"`
	Query     string          `json:"query"`
}
