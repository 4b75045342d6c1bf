package storage

import (
	"context"
	"errors"
	"testing"
)

func openTestDB(t *testing.T) *testDB {
	t.Helper()
	dbPath := t.TempDir() + "/test.db"

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return &testDB{documents: NewDocumentRepo(db), answers: NewAnswerRepo(db)}
}

type testDB struct {
	documents *DocumentRepo
	answers   *AnswerRepo
}

func TestDocumentRepo_UpsertAndGet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := &DocumentRecord{
		ID:             "doc-1",
		OrganizationID: "org-1",
		Filename:       "capabilities.pdf",
		PageCount:      12,
		ChunkCount:     34,
		TagsJSON:       `{"document_type":"company_profile"}`,
	}
	if err := db.documents.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := db.documents.GetByID(ctx, "org-1", "doc-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Filename != "capabilities.pdf" || got.ChunkCount != 34 {
		t.Errorf("GetByID() = %+v", got)
	}
	if got.IndexedAt.IsZero() {
		t.Error("IndexedAt should be set by the database")
	}

	// Re-upsert replaces the catalog entry.
	rec.ChunkCount = 40
	if err := db.documents.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}
	got, err = db.documents.GetByID(ctx, "org-1", "doc-1")
	if err != nil {
		t.Fatalf("GetByID() after update error = %v", err)
	}
	if got.ChunkCount != 40 {
		t.Errorf("ChunkCount = %d, want 40", got.ChunkCount)
	}
}

func TestDocumentRepo_GetByIDScopedToOrganization(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := &DocumentRecord{ID: "doc-1", OrganizationID: "org-1", Filename: "a.pdf", TagsJSON: "{}"}
	if err := db.documents.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if _, err := db.documents.GetByID(ctx, "org-2", "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() with foreign organization = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_ListByOrganization(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"doc-1", "doc-2"} {
		rec := &DocumentRecord{ID: id, OrganizationID: "org-1", Filename: id + ".pdf", TagsJSON: "{}"}
		if err := db.documents.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert(%s) error = %v", id, err)
		}
	}
	other := &DocumentRecord{ID: "doc-3", OrganizationID: "org-2", Filename: "other.pdf", TagsJSON: "{}"}
	if err := db.documents.Upsert(ctx, other); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	records, err := db.documents.ListByOrganization(ctx, "org-1")
	if err != nil {
		t.Fatalf("ListByOrganization() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ListByOrganization() = %d records, want 2", len(records))
	}
	for _, rec := range records {
		if rec.OrganizationID != "org-1" {
			t.Errorf("record %s belongs to %s", rec.ID, rec.OrganizationID)
		}
	}

	empty, err := db.documents.ListByOrganization(ctx, "org-3")
	if err != nil {
		t.Fatalf("ListByOrganization() empty error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("ListByOrganization() for unknown organization = %d records", len(empty))
	}
}

func TestDocumentRepo_Delete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := &DocumentRecord{ID: "doc-1", OrganizationID: "org-1", Filename: "a.pdf", TagsJSON: "{}"}
	if err := db.documents.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// Foreign organization cannot delete.
	if err := db.documents.Delete(ctx, "org-2", "doc-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := db.documents.GetByID(ctx, "org-1", "doc-1"); err != nil {
		t.Fatalf("document should survive foreign delete, got %v", err)
	}

	if err := db.documents.Delete(ctx, "org-1", "doc-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := db.documents.GetByID(ctx, "org-1", "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete = %v, want ErrNotFound", err)
	}
}
