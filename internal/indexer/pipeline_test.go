package indexer

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/mock/gomock"

	"proposal-ai/internal/storage"
	storage_mocks "proposal-ai/internal/storage/mocks"
	"proposal-ai/internal/taxonomy"
	"proposal-ai/internal/vectorstore"
	vectorstore_mocks "proposal-ai/internal/vectorstore/mocks"
)

type stubEmbedder struct {
	err  error
	dims int
}

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, s.dims)
		vec[0] = 1
		out[i] = vec
	}
	return out, nil
}

func testDocument() Document {
	return Document{
		ID:             "doc-1",
		OrganizationID: "org-1",
		Filename:       "case-study.txt",
		Pages:          []Page{{Number: 1, Text: "We migrated a hospital network to Azure with zero downtime."}},
		Tags: taxonomy.Tags{
			DocumentType: taxonomy.DocCaseStudy,
			IndustryTags: []taxonomy.IndustryTag{taxonomy.IndustryHealthcare},
		},
	}
}

func TestIndexDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := vectorstore_mocks.NewMockVectorStore(ctrl)

	var gotPoints []vectorstore.Point
	mockStore.EXPECT().
		Upsert(gomock.Any(), "kb", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, points []vectorstore.Point) error {
			gotPoints = points
			return nil
		})

	pipeline := NewPipeline(&stubEmbedder{dims: 4}, mockStore, nil, "kb")
	ids, err := pipeline.IndexDocument(context.Background(), testDocument())
	if err != nil {
		t.Fatalf("IndexDocument() error = %v", err)
	}
	if len(ids) != 1 || len(gotPoints) != 1 {
		t.Fatalf("got %d ids and %d points, want 1 each", len(ids), len(gotPoints))
	}

	payload := gotPoints[0].Payload
	if payload.OrganizationID != "org-1" {
		t.Errorf("payload organization = %q, want org-1", payload.OrganizationID)
	}
	if payload.DocumentID != "doc-1" || payload.PageNumber != 1 || payload.ChunkIndex != 0 {
		t.Errorf("payload provenance = %+v", payload)
	}
	if payload.Tags.DocumentType != taxonomy.DocCaseStudy {
		t.Errorf("payload document type = %q", payload.Tags.DocumentType)
	}
}

func TestIndexDocumentRejectsInvalidTags(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := vectorstore_mocks.NewMockVectorStore(ctrl)

	doc := testDocument()
	doc.Tags.IndustryTags = []taxonomy.IndustryTag{"not-an-industry"}

	pipeline := NewPipeline(&stubEmbedder{dims: 4}, mockStore, nil, "kb")
	if _, err := pipeline.IndexDocument(context.Background(), doc); err == nil {
		t.Fatal("expected error for invalid tag")
	}
}

func TestIndexDocumentRequiresIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := vectorstore_mocks.NewMockVectorStore(ctrl)
	pipeline := NewPipeline(&stubEmbedder{dims: 4}, mockStore, nil, "kb")

	doc := testDocument()
	doc.OrganizationID = ""
	if _, err := pipeline.IndexDocument(context.Background(), doc); err == nil {
		t.Fatal("expected error for missing organization id")
	}

	doc = testDocument()
	doc.ID = ""
	if _, err := pipeline.IndexDocument(context.Background(), doc); err == nil {
		t.Fatal("expected error for missing document id")
	}
}

func TestIndexDocumentEmbeddingFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := vectorstore_mocks.NewMockVectorStore(ctrl)

	pipeline := NewPipeline(&stubEmbedder{err: fmt.Errorf("embeddings down")}, mockStore, nil, "kb")
	if _, err := pipeline.IndexDocument(context.Background(), testDocument()); err == nil {
		t.Fatal("expected error when embedding fails")
	}
}

func TestIndexDocumentEmptyText(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := vectorstore_mocks.NewMockVectorStore(ctrl)

	doc := testDocument()
	doc.Pages = []Page{{Number: 1, Text: "   "}}

	pipeline := NewPipeline(&stubEmbedder{dims: 4}, mockStore, nil, "kb")
	ids, err := pipeline.IndexDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("IndexDocument() error = %v", err)
	}
	if ids != nil {
		t.Errorf("got ids %v for empty document, want nil", ids)
	}
}

func TestRemoveDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := vectorstore_mocks.NewMockVectorStore(ctrl)
	mockStore.EXPECT().DeleteDocument(gomock.Any(), "kb", "org-1", "doc-1").Return(nil)

	pipeline := NewPipeline(&stubEmbedder{dims: 4}, mockStore, nil, "kb")
	if err := pipeline.RemoveDocument(context.Background(), "org-1", "doc-1"); err != nil {
		t.Fatalf("RemoveDocument() error = %v", err)
	}
}

func TestIndexDocumentRecordsCatalogEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := vectorstore_mocks.NewMockVectorStore(ctrl)
	mockDocs := storage_mocks.NewMockDocumentStore(ctrl)

	mockStore.EXPECT().Upsert(gomock.Any(), "kb", gomock.Any()).Return(nil)

	var gotRecord *storage.DocumentRecord
	mockDocs.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, record *storage.DocumentRecord) error {
			gotRecord = record
			return nil
		})

	pipeline := NewPipeline(&stubEmbedder{dims: 4}, mockStore, mockDocs, "kb")
	if _, err := pipeline.IndexDocument(context.Background(), testDocument()); err != nil {
		t.Fatalf("IndexDocument() error = %v", err)
	}

	if gotRecord == nil {
		t.Fatal("catalog record was not written")
	}
	if gotRecord.ID != "doc-1" || gotRecord.OrganizationID != "org-1" {
		t.Errorf("record identity = %+v", gotRecord)
	}
	if gotRecord.PageCount != 1 || gotRecord.ChunkCount != 1 {
		t.Errorf("record counts = %+v", gotRecord)
	}
	if gotRecord.TagsJSON == "" {
		t.Error("record should carry serialized tags")
	}
}

func TestRemoveDocumentClearsCatalogEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := vectorstore_mocks.NewMockVectorStore(ctrl)
	mockDocs := storage_mocks.NewMockDocumentStore(ctrl)

	mockStore.EXPECT().DeleteDocument(gomock.Any(), "kb", "org-1", "doc-1").Return(nil)
	mockDocs.EXPECT().Delete(gomock.Any(), "org-1", "doc-1").Return(nil)

	pipeline := NewPipeline(&stubEmbedder{dims: 4}, mockStore, mockDocs, "kb")
	if err := pipeline.RemoveDocument(context.Background(), "org-1", "doc-1"); err != nil {
		t.Fatalf("RemoveDocument() error = %v", err)
	}
}
