package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/snapshot"
)

type analyzeRequest struct {
	Source string `json:"source"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Source == "" {
		s.respondError(w, http.StatusBadRequest, "source is required")
		return
	}
	s.logger.Debug("analyze request", zap.String("source", req.Source))
	sess, err := s.sessions.Analyze(r.Context(), req.Source)
	if err != nil {
		s.logger.Error("analysis failed", zap.Error(err))
		s.respondError(w, statusForError(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleListRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := s.storage.ListRepos(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"repos": repos, "total": len(repos)})
}

// lookupSession resolves an {id} path parameter as a session ID first and a
// repo ID second, so clients can address a repo without tracking session IDs.
// A repo analyzed by a previous process is reloaded from storage.
func (s *Server) lookupSession(r *http.Request, id string) (*models.Session, bool) {
	if sess, ok := s.sessions.Get(id); ok {
		return sess, true
	}
	if sess, ok := s.sessions.GetByRepo(id); ok {
		return sess, true
	}
	sess, err := s.sessions.LoadStored(r.Context(), id)
	if err != nil {
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(r, chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	s.respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(r, chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"repo_id": sess.RepoID,
		"files":   len(sess.Snapshot.Files),
		"tree":    snapshot.RenderTree(sess.Snapshot),
	})
}

func (s *Server) handleClassification(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(r, chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	s.respondJSON(w, http.StatusOK, sess.Classification)
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(r, chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"repo_id": sess.RepoID,
		"mermaid": s.diagrams.Generate(sess.Snapshot),
	})
}

func (s *Server) handleGenerateDocs(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(r, chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	set, err := s.docs.Generate(sess.Snapshot, sess.Classification)
	if err != nil {
		s.logger.Error("doc generation failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dir, err := s.docs.Write(s.config.Storage.OutputDir, sess.RepoID, set)
	if err != nil {
		s.logger.Error("doc write failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"output_dir": dir,
		"documents":  set.Names(),
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(r, chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("ask request", zap.String("repo", sess.RepoID), zap.String("question", req.Question))
	resp, err := s.engine.Ask(r.Context(), sess.RepoID, &req)
	if err != nil {
		s.logger.Error("ask failed", zap.Error(err))
		s.respondError(w, statusForError(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(r, chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	hits, err := s.keywords.Search(sess.RepoID, req.Query, req.Limit)
	if err != nil {
		s.logger.Error("keyword search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	results := make([]*models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		chunk, err := s.storage.GetChunk(r.Context(), sess.RepoID, hit.ID)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if chunk == nil {
			continue
		}
		results = append(results, &models.SearchResult{
			Chunk: chunk,
			Score: hit.Score,
			Rank:  len(results) + 1,
		})
	}
	s.respondJSON(w, http.StatusOK, &models.SearchResponse{
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
		Query:     req.Query,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	repos, err := s.storage.ListRepos(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	vectorSize, err := s.engine.IndexSize(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	keywordCount, err := s.keywords.Count()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"repos":             len(repos),
		"vector_index_size": vectorSize,
		"keyword_docs":      keywordCount,
		"config": map[string]interface{}{
			"embedding_provider":   s.config.Embedding.Provider,
			"embedding_dimensions": s.config.Embedding.Dimensions,
			"completion_provider":  s.config.Completion.Provider,
			"vector_backend":       s.config.Vector.Backend,
			"chunk_lines":          s.config.Index.ChunkLines,
			"chunk_overlap":        s.config.Index.ChunkOverlap,
			"database_path":        s.config.Storage.DatabasePath,
			"output_dir":           s.config.Storage.OutputDir,
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusForError maps domain errors onto HTTP statuses. Empty index is a
// conflict (the repo has no indexed content yet), clone failures are the
// client's unprocessable input, and provider outages are upstream failures.
func statusForError(err error) int {
	var cloneErr *models.CloneError
	switch {
	case errors.Is(err, models.ErrEmptyIndex):
		return http.StatusConflict
	case errors.As(err, &cloneErr):
		return http.StatusUnprocessableEntity
	case models.IsServiceUnavailable(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
