package indexer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"proposal-ai/internal/contextutil"
	"proposal-ai/internal/storage"
	"proposal-ai/internal/vectorstore"
)

// Embedder turns texts into fixed-dimension vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline chunks a document, validates its tags, embeds the chunks and
// upserts them into the vector store. When a document catalog is attached
// it also records one row per indexed document.
type Pipeline struct {
	chunker    *Chunker
	embedder   Embedder
	store      vectorstore.VectorStore
	documents  storage.DocumentStore
	collection string
}

// NewPipeline creates a new indexing pipeline. documents may be nil to skip
// catalog bookkeeping.
func NewPipeline(embedder Embedder, store vectorstore.VectorStore, documents storage.DocumentStore, collection string) *Pipeline {
	return &Pipeline{
		chunker:    NewChunker(),
		embedder:   embedder,
		store:      store,
		documents:  documents,
		collection: collection,
	}
}

// IndexDocument indexes one document and returns the stored point IDs.
// Tags are validated here so an invalid value can never reach the store;
// a chunk with a typoed tag would otherwise be silently unmatchable at
// query time.
func (p *Pipeline) IndexDocument(ctx context.Context, doc Document) ([]string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if doc.ID == "" {
		return nil, fmt.Errorf("document id is required")
	}
	if doc.OrganizationID == "" {
		return nil, fmt.Errorf("document organization id is required")
	}
	if err := doc.Tags.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document tags: %w", err)
	}

	chunks := p.chunker.ChunkDocument(doc)
	if len(chunks) == 0 {
		logger.WarnContext(ctx, "document produced no chunks", "document_id", doc.ID, "filename", doc.Filename)
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("expected %d vectors, got %d", len(chunks), len(vectors))
	}

	points := make([]vectorstore.Point, len(chunks))
	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		id := uuid.NewString()
		ids[i] = id
		points[i] = vectorstore.Point{
			ID:  id,
			Vec: vectors[i],
			Payload: vectorstore.Payload{
				OrganizationID: doc.OrganizationID,
				DocumentID:     doc.ID,
				Filename:       doc.Filename,
				PageNumber:     chunk.Page,
				ChunkIndex:     chunk.Index,
				Text:           chunk.Text,
				Tags:           doc.Tags,
			},
		}
	}

	if err := p.store.Upsert(ctx, p.collection, points); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	if p.documents != nil {
		if err := p.recordDocument(ctx, doc, len(chunks)); err != nil {
			return nil, err
		}
	}

	logger.InfoContext(ctx, "document indexed",
		"document_id", doc.ID,
		"organization_id", doc.OrganizationID,
		"chunks", len(chunks),
	)
	return ids, nil
}

func (p *Pipeline) recordDocument(ctx context.Context, doc Document, chunkCount int) error {
	tagsJSON, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal document tags: %w", err)
	}
	record := &storage.DocumentRecord{
		ID:             doc.ID,
		OrganizationID: doc.OrganizationID,
		Filename:       doc.Filename,
		PageCount:      len(doc.Pages),
		ChunkCount:     chunkCount,
		TagsJSON:       string(tagsJSON),
	}
	if err := p.documents.Upsert(ctx, record); err != nil {
		return fmt.Errorf("failed to record document: %w", err)
	}
	return nil
}

// RemoveDocument deletes all stored chunks of one document and its catalog
// entry.
func (p *Pipeline) RemoveDocument(ctx context.Context, organizationID, documentID string) error {
	if err := p.store.DeleteDocument(ctx, p.collection, organizationID, documentID); err != nil {
		return fmt.Errorf("failed to remove document chunks: %w", err)
	}
	if p.documents != nil {
		if err := p.documents.Delete(ctx, organizationID, documentID); err != nil {
			return fmt.Errorf("failed to remove document record: %w", err)
		}
	}
	return nil
}
