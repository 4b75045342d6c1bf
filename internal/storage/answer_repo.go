package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_answer_store.go -package=mocks proposal-ai/internal/storage AnswerStore

import (
	"context"
	"database/sql"
	"fmt"
)

// AnswerStore defines the interface for answer persistence.
type AnswerStore interface {
	// Insert stores one generated answer.
	// The record.ID must be set (UUID) before calling this method.
	Insert(ctx context.Context, record *AnswerRecord) error
	// GetByID gets an answer by its ID within an organization.
	// Returns ErrNotFound if not found.
	GetByID(ctx context.Context, organizationID, id string) (*AnswerRecord, error)
	// ListByOrganization returns the organization's answers, newest first,
	// at most limit rows.
	ListByOrganization(ctx context.Context, organizationID string, limit int) ([]*AnswerRecord, error)
}

// AnswerRepo provides methods for answer persistence.
// It implements the AnswerStore interface.
type AnswerRepo struct {
	db *sql.DB
}

// NewAnswerRepo creates a new AnswerRepo.
func NewAnswerRepo(db *sql.DB) *AnswerRepo {
	return &AnswerRepo{db: db}
}

// Insert stores one generated answer.
func (r *AnswerRepo) Insert(ctx context.Context, record *AnswerRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO answers (id, organization_id, question, answer_text, confidence, mode, sources_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.OrganizationID, record.Question, record.AnswerText, record.Confidence, record.Mode, record.SourcesJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert answer: %w", err)
	}
	return nil
}

// GetByID gets an answer by its ID within an organization.
// Returns ErrNotFound if not found.
func (r *AnswerRepo) GetByID(ctx context.Context, organizationID, id string) (*AnswerRecord, error) {
	var rec AnswerRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT id, organization_id, question, answer_text, confidence, mode, sources_json, created_at
		 FROM answers WHERE organization_id = ? AND id = ?`,
		organizationID, id,
	).Scan(&rec.ID, &rec.OrganizationID, &rec.Question, &rec.AnswerText, &rec.Confidence, &rec.Mode, &rec.SourcesJSON, &rec.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query answer: %w", err)
	}
	return &rec, nil
}

// ListByOrganization returns the organization's answers, newest first.
// Returns an empty slice if none exist (not an error).
func (r *AnswerRepo) ListByOrganization(ctx context.Context, organizationID string, limit int) ([]*AnswerRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, organization_id, question, answer_text, confidence, mode, sources_json, created_at
		 FROM answers WHERE organization_id = ? ORDER BY created_at DESC, id LIMIT ?`,
		organizationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []*AnswerRecord
	for rows.Next() {
		var rec AnswerRecord
		if err := rows.Scan(&rec.ID, &rec.OrganizationID, &rec.Question, &rec.AnswerText, &rec.Confidence, &rec.Mode, &rec.SourcesJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}
