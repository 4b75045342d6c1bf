package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAnswerRepo_InsertAndGet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := &AnswerRecord{
		ID:             "ans-1",
		OrganizationID: "org-1",
		Question:       "What is your experience?",
		AnswerText:     "We have delivered similar projects.",
		Confidence:     0.78,
		Mode:           "grounded",
		SourcesJSON:    `[{"document_id":"doc-1"}]`,
	}
	if err := db.answers.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := db.answers.GetByID(ctx, "org-1", "ans-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Confidence != 0.78 || got.Mode != "grounded" {
		t.Errorf("GetByID() = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set by the database")
	}
}

func TestAnswerRepo_GetByIDScopedToOrganization(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := &AnswerRecord{ID: "ans-1", OrganizationID: "org-1", Question: "q", AnswerText: "a", Mode: "grounded", SourcesJSON: "[]"}
	if err := db.answers.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if _, err := db.answers.GetByID(ctx, "org-2", "ans-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() with foreign organization = %v, want ErrNotFound", err)
	}
}

func TestAnswerRepo_ListByOrganizationLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := &AnswerRecord{
			ID:             fmt.Sprintf("ans-%d", i),
			OrganizationID: "org-1",
			Question:       "q",
			AnswerText:     "a",
			Mode:           "ungrounded",
			SourcesJSON:    "[]",
		}
		if err := db.answers.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	records, err := db.answers.ListByOrganization(ctx, "org-1", 3)
	if err != nil {
		t.Fatalf("ListByOrganization() error = %v", err)
	}
	if len(records) != 3 {
		t.Errorf("ListByOrganization() = %d records, want 3", len(records))
	}

	all, err := db.answers.ListByOrganization(ctx, "org-1", 0)
	if err != nil {
		t.Fatalf("ListByOrganization() default limit error = %v", err)
	}
	if len(all) != 5 {
		t.Errorf("ListByOrganization() with default limit = %d records, want 5", len(all))
	}
}
