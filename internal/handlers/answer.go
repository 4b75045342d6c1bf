package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"proposal-ai/internal/contextutil"
	"proposal-ai/internal/rag"
	"proposal-ai/internal/storage"
)

// AnswerHandler handles HTTP requests for answer generation.
type AnswerHandler struct {
	engine  rag.Engine
	answers storage.AnswerStore
}

// NewAnswerHandler creates a new AnswerHandler. answers may be nil to skip
// persistence.
func NewAnswerHandler(engine rag.Engine, answers storage.AnswerStore) *AnswerHandler {
	return &AnswerHandler{engine: engine, answers: answers}
}

// AnswerRequest represents the HTTP request payload for answer generation.
// This mirrors rag.AnswerRequest but is defined here for HTTP layer
// separation.
//
// swagger:model AnswerRequest
type AnswerRequest struct {
	Question       string   `json:"question"`
	OrganizationID string   `json:"organization_id"`
	DocumentIDs    []string `json:"document_ids,omitempty"`
}

// AnswerResponse represents the HTTP response payload for answer generation.
//
// swagger:model AnswerResponse
type AnswerResponse struct {
	// ID of the persisted answer, empty when persistence is disabled.
	ID string `json:"id,omitempty"`

	// The generated answer text.
	Answer string `json:"answer"`

	// Confidence in [0,1]. 0.0 means generation itself failed.
	Confidence float64 `json:"confidence"`

	// Mode is "grounded" or "ungrounded".
	Mode string `json:"mode"`

	// Sources used to ground the answer, empty for ungrounded answers.
	Sources []rag.Source `json:"sources"`
}

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles POST /api/answer.
//
// Generates an RFP answer for one question from the organization's indexed
// knowledge base. Returns 400 for invalid input; backend failures still
// return 200 with a degraded answer.
func (h *AnswerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	answer, err := h.engine.Answer(ctx, rag.AnswerRequest{
		Question:       req.Question,
		OrganizationID: req.OrganizationID,
		DocumentIDs:    req.DocumentIDs,
	})
	if err != nil {
		if errors.Is(err, rag.ErrInvalidInput) {
			logger.WarnContext(ctx, "invalid answer request", "error", err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.ErrorContext(ctx, "answer generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate answer")
		return
	}

	resp := AnswerResponse{
		Answer:     answer.Text,
		Confidence: answer.Confidence,
		Mode:       string(answer.Mode),
		Sources:    answer.Sources,
	}
	if resp.Sources == nil {
		resp.Sources = []rag.Source{}
	}

	if h.answers != nil {
		resp.ID = h.persist(r, req, answer)
	}

	writeJSON(w, http.StatusOK, resp)
}

// persist saves the answer and returns its id. Persistence failures are
// logged but never fail the request: the caller already has the answer.
func (h *AnswerHandler) persist(r *http.Request, req AnswerRequest, answer rag.GeneratedAnswer) string {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	sourcesJSON, err := json.Marshal(answer.Sources)
	if err != nil {
		logger.ErrorContext(ctx, "failed to marshal answer sources", "error", err)
		return ""
	}

	record := &storage.AnswerRecord{
		ID:             uuid.NewString(),
		OrganizationID: req.OrganizationID,
		Question:       req.Question,
		AnswerText:     answer.Text,
		Confidence:     answer.Confidence,
		Mode:           string(answer.Mode),
		SourcesJSON:    string(sourcesJSON),
	}
	if err := h.answers.Insert(ctx, record); err != nil {
		logger.ErrorContext(ctx, "failed to persist answer", "error", err)
		return ""
	}
	return record.ID
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}
