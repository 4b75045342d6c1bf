package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks proposal-ai/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"fmt"
)

// DocumentStore defines the interface for document catalog operations.
type DocumentStore interface {
	// Upsert inserts or replaces a document record.
	// The record.ID must be set (UUID) before calling this method.
	Upsert(ctx context.Context, record *DocumentRecord) error
	// GetByID gets a document by its ID within an organization.
	// Returns ErrNotFound if not found.
	GetByID(ctx context.Context, organizationID, id string) (*DocumentRecord, error)
	// ListByOrganization returns all documents of one organization,
	// newest first.
	ListByOrganization(ctx context.Context, organizationID string) ([]*DocumentRecord, error)
	// Delete removes a document record within an organization.
	Delete(ctx context.Context, organizationID, id string) error
}

// DocumentRepo provides methods for document catalog operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Upsert inserts or replaces a document record.
func (r *DocumentRepo) Upsert(ctx context.Context, record *DocumentRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, organization_id, filename, page_count, chunk_count, tags_json)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			page_count = excluded.page_count,
			chunk_count = excluded.chunk_count,
			tags_json = excluded.tags_json,
			indexed_at = CURRENT_TIMESTAMP`,
		record.ID, record.OrganizationID, record.Filename, record.PageCount, record.ChunkCount, record.TagsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// GetByID gets a document by its ID within an organization.
// Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByID(ctx context.Context, organizationID, id string) (*DocumentRecord, error) {
	var rec DocumentRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT id, organization_id, filename, page_count, chunk_count, tags_json, indexed_at
		 FROM documents WHERE organization_id = ? AND id = ?`,
		organizationID, id,
	).Scan(&rec.ID, &rec.OrganizationID, &rec.Filename, &rec.PageCount, &rec.ChunkCount, &rec.TagsJSON, &rec.IndexedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return &rec, nil
}

// ListByOrganization returns all documents of one organization, newest first.
// Returns an empty slice if none exist (not an error).
func (r *DocumentRepo) ListByOrganization(ctx context.Context, organizationID string) ([]*DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, organization_id, filename, page_count, chunk_count, tags_json, indexed_at
		 FROM documents WHERE organization_id = ? ORDER BY indexed_at DESC`,
		organizationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []*DocumentRecord
	for rows.Next() {
		var rec DocumentRecord
		if err := rows.Scan(&rec.ID, &rec.OrganizationID, &rec.Filename, &rec.PageCount, &rec.ChunkCount, &rec.TagsJSON, &rec.IndexedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}

// Delete removes a document record within an organization.
func (r *DocumentRepo) Delete(ctx context.Context, organizationID, id string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM documents WHERE organization_id = ? AND id = ?",
		organizationID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
