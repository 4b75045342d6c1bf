package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_question_store.go -package=mocks proposal-ai/internal/storage QuestionStore

import (
	"context"
	"database/sql"
	"fmt"
)

// QuestionStore defines the interface for extracted-question persistence.
type QuestionStore interface {
	// ReplaceForDocument atomically replaces the stored questions of one
	// document. Re-running extraction never duplicates rows.
	ReplaceForDocument(ctx context.Context, organizationID, documentID string, records []*QuestionRecord) error
	// ListByDocument returns the document's questions in insertion order.
	ListByDocument(ctx context.Context, organizationID, documentID string) ([]*QuestionRecord, error)
}

// QuestionRepo provides methods for extracted-question persistence.
// It implements the QuestionStore interface.
type QuestionRepo struct {
	db *sql.DB
}

// NewQuestionRepo creates a new QuestionRepo.
func NewQuestionRepo(db *sql.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// ReplaceForDocument atomically replaces the stored questions of one
// document.
func (r *QuestionRepo) ReplaceForDocument(ctx context.Context, organizationID, documentID string, records []*QuestionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM questions WHERE organization_id = ? AND document_id = ?",
		organizationID, documentID,
	); err != nil {
		return fmt.Errorf("failed to clear questions: %w", err)
	}

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO questions (id, organization_id, document_id, section_title, topic, reference_id, text)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, organizationID, documentID, rec.SectionTitle, rec.Topic, rec.ReferenceID, rec.Text,
		); err != nil {
			return fmt.Errorf("failed to insert question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit questions: %w", err)
	}
	return nil
}

// ListByDocument returns the document's questions in insertion order.
// Returns an empty slice if none exist (not an error).
func (r *QuestionRepo) ListByDocument(ctx context.Context, organizationID, documentID string) ([]*QuestionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, organization_id, document_id, section_title, topic, reference_id, text, created_at
		 FROM questions WHERE organization_id = ? AND document_id = ? ORDER BY rowid`,
		organizationID, documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []*QuestionRecord
	for rows.Next() {
		var rec QuestionRecord
		if err := rows.Scan(&rec.ID, &rec.OrganizationID, &rec.DocumentID, &rec.SectionTitle, &rec.Topic, &rec.ReferenceID, &rec.Text, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}
