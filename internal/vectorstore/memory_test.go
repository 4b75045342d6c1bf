package vectorstore

import (
	"context"
	"testing"

	"proposal-ai/internal/taxonomy"
)

const testCollection = "test_knowledge"

func seedPoint(id, orgID string, vec []float32, tags taxonomy.Tags) Point {
	return Point{
		ID:  id,
		Vec: vec,
		Payload: Payload{
			OrganizationID: orgID,
			DocumentID:     "doc-" + id,
			Filename:       id + ".pdf",
			ChunkIndex:     0,
			Text:           "text for " + id,
			Tags:           tags,
		},
	}
}

func TestMemoryStoreSearchOrdering(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	caseStudy := taxonomy.Tags{DocumentType: taxonomy.DocCaseStudy}
	err := store.Upsert(ctx, testCollection, []Point{
		seedPoint("far", "org-1", []float32{0, 1, 0}, caseStudy),
		seedPoint("near", "org-1", []float32{1, 0, 0}, caseStudy),
		seedPoint("mid", "org-1", []float32{1, 1, 0}, caseStudy),
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	results, err := store.Search(ctx, testCollection, []float32{1, 0, 0}, 10, Filter{OrganizationID: "org-1"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("results not in descending score order: %v then %v", results[i-1].Score, results[i].Score)
		}
	}
	if results[0].ID != "near" {
		t.Errorf("top result = %q, want near", results[0].ID)
	}
}

func TestMemoryStoreTenantIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	tags := taxonomy.Tags{DocumentType: taxonomy.DocCompanyProfile}
	_ = store.Upsert(ctx, testCollection, []Point{
		seedPoint("a", "org-1", []float32{1, 0, 0}, tags),
		seedPoint("b", "org-1", []float32{0.9, 0.1, 0}, tags),
	})

	results, err := store.Search(ctx, testCollection, []float32{1, 0, 0}, 10, Filter{OrganizationID: "org-2"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("org-2 search returned %d org-1 chunks, want 0", len(results))
	}

	if _, err := store.Search(ctx, testCollection, []float32{1, 0, 0}, 10, Filter{}); err == nil {
		t.Fatal("expected error for missing organization id")
	}
}

func TestMemoryStoreDimensionFilters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Upsert(ctx, testCollection, []Point{
		seedPoint("health", "org-1", []float32{1, 0, 0}, taxonomy.Tags{
			DocumentType: taxonomy.DocCaseStudy,
			IndustryTags: []taxonomy.IndustryTag{taxonomy.IndustryHealthcare},
		}),
		seedPoint("fin", "org-1", []float32{1, 0, 0}, taxonomy.Tags{
			DocumentType: taxonomy.DocCaseStudy,
			IndustryTags: []taxonomy.IndustryTag{taxonomy.IndustryFinance},
		}),
		seedPoint("bios", "org-1", []float32{1, 0, 0}, taxonomy.Tags{
			DocumentType: taxonomy.DocTeamBios,
			IndustryTags: []taxonomy.IndustryTag{taxonomy.IndustryHealthcare},
		}),
	})

	// OR within a dimension.
	results, err := store.Search(ctx, testCollection, []float32{1, 0, 0}, 10, Filter{
		OrganizationID: "org-1",
		IndustryTags:   []taxonomy.IndustryTag{taxonomy.IndustryHealthcare, taxonomy.IndustryFinance},
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 3 {
		t.Errorf("industry OR filter returned %d, want 3", len(results))
	}

	// AND across dimensions.
	results, err = store.Search(ctx, testCollection, []float32{1, 0, 0}, 10, Filter{
		OrganizationID: "org-1",
		DocumentTypes:  []taxonomy.DocumentType{taxonomy.DocCaseStudy},
		IndustryTags:   []taxonomy.IndustryTag{taxonomy.IndustryHealthcare},
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].ID != "health" {
		t.Errorf("AND filter results = %v, want only health", results)
	}
}

func TestMemoryStoreDocumentAllowlist(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	tags := taxonomy.Tags{DocumentType: taxonomy.DocCaseStudy}
	_ = store.Upsert(ctx, testCollection, []Point{
		seedPoint("a", "org-1", []float32{1, 0, 0}, tags),
		seedPoint("b", "org-1", []float32{1, 0, 0}, tags),
	})

	results, err := store.Search(ctx, testCollection, []float32{1, 0, 0}, 10, Filter{
		OrganizationID: "org-1",
		DocumentIDs:    []string{"doc-a"},
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Errorf("allowlist results = %v, want only a", results)
	}
}

func TestMemoryStoreDeleteDocument(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	tags := taxonomy.Tags{DocumentType: taxonomy.DocCaseStudy}
	_ = store.Upsert(ctx, testCollection, []Point{
		seedPoint("a", "org-1", []float32{1, 0, 0}, tags),
		seedPoint("b", "org-1", []float32{1, 0, 0}, tags),
	})

	if err := store.DeleteDocument(ctx, testCollection, "org-1", "doc-a"); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
	if got := store.Count(testCollection); got != 1 {
		t.Errorf("Count() = %d after delete, want 1", got)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Errorf("identical vectors similarity = %v, want ~1", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got > 0.001 {
		t.Errorf("orthogonal vectors similarity = %v, want ~0", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 0}); got != 0 {
		t.Errorf("zero vector similarity = %v, want 0", got)
	}
	if got := cosineSimilarity([]float32{1}, []float32{1, 0}); got != 0 {
		t.Errorf("mismatched dimensions similarity = %v, want 0", got)
	}
}
