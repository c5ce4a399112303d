// ABOUTME: HTTP surface over the pipeline: query, search, history, stats
// ABOUTME: Thin chi router translating JSON requests into App operations
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/docteam/ragstack/internal/app"
	"github.com/docteam/ragstack/internal/embeddings"
	"github.com/docteam/ragstack/internal/models"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 20
)

// NewRouter mounts the HTTP API on a chi router.
func NewRouter(a *app.App) http.Handler {
	s := &server{app: a}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Post("/query", s.handleQuery)
	r.Get("/search", s.handleSearch)
	r.Get("/history/{sessionID}", s.handleGetHistory)
	r.Delete("/history/{sessionID}", s.handleClearHistory)
	return r
}

type server struct {
	app *app.App
}

type queryRequest struct {
	Query     string         `json:"query"`
	SessionID string         `json:"session_id,omitempty"`
	Rerank    bool           `json:"rerank,omitempty"`
	Filter    map[string]any `json:"filter,omitempty"`
}

type queryResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id,omitempty"`
}

type searchResult struct {
	Body     string         `json:"body"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type historyResponse struct {
	SessionID string               `json:"session_id"`
	Messages  []models.ChatMessage `json:"messages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.app.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	answer, err := s.app.Query(r.Context(), req.Query, req.SessionID, req.Rerank, req.Filter)
	if err != nil {
		writeError(w, statusForPipelineError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{Answer: answer, SessionID: req.SessionID})
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "q parameter is required"})
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSearchLimit {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be between 1 and 20"})
			return
		}
		limit = n
	}
	rerank := r.URL.Query().Get("rerank") == "true"

	var filter map[string]any
	if product := r.URL.Query().Get("product"); product != "" {
		filter = map[string]any{"metadata.productName": product}
	}

	results, err := s.app.Search(r.Context(), query, limit, rerank, filter)
	if err != nil {
		writeError(w, statusForPipelineError(err), err)
		return
	}

	out := make([]searchResult, len(results))
	for i, res := range results {
		out[i] = searchResult{Body: res.Body, Metadata: res.Metadata, Score: res.Score}
		// A rerank pass replaces the surfaced score.
		if res.RerankScore != nil {
			out[i].Score = *res.RerankScore
		}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: out})
}

func (s *server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	messages, err := s.app.GetHistory(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, historyResponse{SessionID: sessionID, Messages: messages})
}

func (s *server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.app.ClearHistory(r.Context(), sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "session_id": sessionID})
}

// statusForPipelineError maps upstream-service failures to 502 and
// everything else to 500.
func statusForPipelineError(err error) int {
	if errors.Is(err, embeddings.ErrEmbeddingService) || errors.Is(err, embeddings.ErrRerankService) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("encoding response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	log.WithError(err).Error("request failed")
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
