package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"proposal-ai/internal/contextutil"
	"proposal-ai/internal/rag"
)

// SearchHandler handles HTTP requests for raw knowledge-base search.
type SearchHandler struct {
	engine rag.Engine
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(engine rag.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// SearchRequest represents the HTTP request payload for knowledge search.
//
// swagger:model SearchRequest
type SearchRequest struct {
	Question       string   `json:"question"`
	OrganizationID string   `json:"organization_id"`
	DocumentIDs    []string `json:"document_ids,omitempty"`
}

// SearchHit represents one retrieved chunk in the HTTP response.
//
// swagger:model SearchHit
type SearchHit struct {
	ChunkID    string  `json:"chunk_id"`
	Score      float64 `json:"score"`
	Rank       int     `json:"rank"`
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	PageNumber int     `json:"page_number"`
	Text       string  `json:"text"`
}

// SearchResponse represents the HTTP response payload for knowledge search.
//
// swagger:model SearchResponse
type SearchResponse struct {
	Results []SearchHit `json:"results"`
}

// ServeHTTP handles POST /api/search.
//
// Runs the retrieval stage only and returns ranked candidates with payload
// metadata, for inspecting what the knowledge base would contribute to a
// question. The same tenant isolation rules apply as for answers.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	candidates, err := h.engine.SearchKnowledge(ctx, rag.AnswerRequest{
		Question:       req.Question,
		OrganizationID: req.OrganizationID,
		DocumentIDs:    req.DocumentIDs,
	})
	if err != nil {
		if errors.Is(err, rag.ErrInvalidInput) {
			logger.WarnContext(ctx, "invalid search request", "error", err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.ErrorContext(ctx, "knowledge search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to search knowledge base")
		return
	}

	resp := SearchResponse{Results: make([]SearchHit, 0, len(candidates))}
	for _, c := range candidates {
		resp.Results = append(resp.Results, SearchHit{
			ChunkID:    c.ChunkID,
			Score:      c.Score,
			Rank:       c.Rank,
			DocumentID: c.Payload.DocumentID,
			Filename:   c.Payload.Filename,
			PageNumber: c.Payload.PageNumber,
			Text:       c.Payload.Text,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
