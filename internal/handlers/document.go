package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"proposal-ai/internal/contextutil"
	"proposal-ai/internal/indexer"
	"proposal-ai/internal/taxonomy"
)

// DocumentIndexer is the indexing pipeline seen from the HTTP layer.
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, doc indexer.Document) ([]string, error)
	RemoveDocument(ctx context.Context, organizationID, documentID string) error
}

// DocumentHandler handles HTTP requests for knowledge-base documents.
type DocumentHandler struct {
	pipeline DocumentIndexer
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(pipeline DocumentIndexer) *DocumentHandler {
	return &DocumentHandler{pipeline: pipeline}
}

// IndexDocumentRequest represents the HTTP request payload for indexing a
// knowledge-base document. Pages carry already-extracted text; binary
// parsing happens upstream.
//
// swagger:model IndexDocumentRequest
type IndexDocumentRequest struct {
	// ID is optional; a UUID is generated when empty.
	ID             string        `json:"id,omitempty"`
	OrganizationID string        `json:"organization_id"`
	Filename       string        `json:"filename"`
	Pages          []PagePayload `json:"pages"`
	Tags           taxonomy.Tags `json:"tags"`
}

// PagePayload is one page of document text.
//
// swagger:model PagePayload
type PagePayload struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// IndexDocumentResponse represents the HTTP response payload for indexing.
//
// swagger:model IndexDocumentResponse
type IndexDocumentResponse struct {
	DocumentID string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
}

// Index handles POST /api/documents.
//
// Chunks, embeds and stores one reference document in the organization's
// knowledge base. Tag values outside the taxonomy are rejected with 400.
func (h *DocumentHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req IndexDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.OrganizationID) == "" {
		writeError(w, http.StatusBadRequest, "organization_id is required")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	doc := indexer.Document{
		ID:             req.ID,
		OrganizationID: req.OrganizationID,
		Filename:       req.Filename,
		Tags:           req.Tags,
	}
	for _, page := range req.Pages {
		doc.Pages = append(doc.Pages, indexer.Page{Number: page.Number, Text: page.Text})
	}

	ids, err := h.pipeline.IndexDocument(ctx, doc)
	if err != nil {
		logger.WarnContext(ctx, "document rejected", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, IndexDocumentResponse{
		DocumentID: req.ID,
		ChunkCount: len(ids),
	})
}

// Remove handles DELETE /api/documents/{documentID}.
//
// Removes all stored chunks of one document within the caller's
// organization.
func (h *DocumentHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	documentID := chi.URLParam(r, "documentID")
	organizationID := r.URL.Query().Get("organization_id")
	if strings.TrimSpace(organizationID) == "" {
		writeError(w, http.StatusBadRequest, "organization_id is required")
		return
	}

	if err := h.pipeline.RemoveDocument(ctx, organizationID, documentID); err != nil {
		logger.ErrorContext(ctx, "failed to remove document", "error", err, "document_id", documentID)
		writeError(w, http.StatusInternalServerError, "Failed to remove document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
