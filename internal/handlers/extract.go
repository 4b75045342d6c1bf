package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"proposal-ai/internal/contextutil"
	"proposal-ai/internal/extract"
	"proposal-ai/internal/storage"
)

// ExtractHandler handles HTTP requests for question extraction.
type ExtractHandler struct {
	extractor *extract.Extractor
	questions storage.QuestionStore
}

// NewExtractHandler creates a new ExtractHandler. questions may be nil to
// skip persistence.
func NewExtractHandler(extractor *extract.Extractor, questions storage.QuestionStore) *ExtractHandler {
	return &ExtractHandler{extractor: extractor, questions: questions}
}

// ExtractRequest represents the HTTP request payload for question
// extraction. Text is the already-extracted document text; binary document
// parsing happens upstream.
//
// swagger:model ExtractRequest
type ExtractRequest struct {
	OrganizationID string `json:"organization_id"`
	DocumentID     string `json:"document_id"`
	Text           string `json:"text"`
}

// ExtractResponse represents the HTTP response payload for question
// extraction.
//
// swagger:model ExtractResponse
type ExtractResponse struct {
	DocumentID     string            `json:"document_id"`
	TotalQuestions int               `json:"total_questions"`
	Sections       []extract.Section `json:"sections"`
	Method         string            `json:"extraction_method"`
}

// ServeHTTP handles POST /api/extract.
//
// Extracts the answerable questions from RFP document text, persists them
// for the document, and returns them grouped into sections.
func (h *ExtractHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.OrganizationID) == "" {
		writeError(w, http.StatusBadRequest, "organization_id is required")
		return
	}
	if strings.TrimSpace(req.DocumentID) == "" {
		writeError(w, http.StatusBadRequest, "document_id is required")
		return
	}

	result, err := h.extractor.ExtractQuestions(ctx, req.Text)
	if err != nil {
		logger.WarnContext(ctx, "question extraction rejected input", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.questions != nil {
		if err := h.saveQuestions(r, req, result); err != nil {
			logger.ErrorContext(ctx, "failed to persist extracted questions", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save extracted questions")
			return
		}
	}

	sections := result.Sections
	if sections == nil {
		sections = []extract.Section{}
	}
	writeJSON(w, http.StatusOK, ExtractResponse{
		DocumentID:     req.DocumentID,
		TotalQuestions: result.TotalQuestions,
		Sections:       sections,
		Method:         result.Method,
	})
}

func (h *ExtractHandler) saveQuestions(r *http.Request, req ExtractRequest, result extract.Result) error {
	var records []*storage.QuestionRecord
	for _, section := range result.Sections {
		for _, q := range section.Questions {
			records = append(records, &storage.QuestionRecord{
				ID:             q.ID,
				OrganizationID: req.OrganizationID,
				DocumentID:     req.DocumentID,
				SectionTitle:   q.SectionTitle,
				Topic:          q.Topic,
				ReferenceID:    q.ReferenceID,
				Text:           q.Text,
			})
		}
	}
	return h.questions.ReplaceForDocument(r.Context(), req.OrganizationID, req.DocumentID, records)
}
