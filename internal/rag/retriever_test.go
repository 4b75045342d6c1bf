package rag

import (
	"context"
	"errors"
	"testing"
	"time"

	"proposal-ai/internal/vectorstore"
)

type scriptedStore struct {
	results []vectorstore.SearchResult
	err     error
}

func (s *scriptedStore) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	return nil
}

func (s *scriptedStore) Search(ctx context.Context, collection string, query []float32, k int, filter vectorstore.Filter) ([]vectorstore.SearchResult, error) {
	return s.results, s.err
}

func (s *scriptedStore) DeleteDocument(ctx context.Context, collection, organizationID, documentID string) error {
	return nil
}

func TestRetrieveOrdersByScoreThenChunkIndex(t *testing.T) {
	store := &scriptedStore{results: []vectorstore.SearchResult{
		{ID: "c", Score: 0.8, Payload: vectorstore.Payload{ChunkIndex: 5}},
		{ID: "a", Score: 0.9, Payload: vectorstore.Payload{ChunkIndex: 2}},
		{ID: "b", Score: 0.8, Payload: vectorstore.Payload{ChunkIndex: 1}},
	}}
	r := NewRetriever(fixedEmbedder([]float32{1, 0}), store, testCollection, 10, time.Second, time.Second)

	got, err := r.Retrieve(context.Background(), "question", vectorstore.Filter{OrganizationID: "org-1"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	wantOrder := []string{"a", "b", "c"}
	if len(got) != len(wantOrder) {
		t.Fatalf("candidates = %d, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].ChunkID != id {
			t.Errorf("position %d = %q, want %q", i, got[i].ChunkID, id)
		}
		if got[i].Rank != i+1 {
			t.Errorf("rank at position %d = %d, want %d", i, got[i].Rank, i+1)
		}
	}
}

func TestRetrieveStoreFailureYieldsEmpty(t *testing.T) {
	store := &scriptedStore{err: errors.New("store unreachable")}
	r := NewRetriever(fixedEmbedder([]float32{1, 0}), store, testCollection, 10, time.Second, time.Second)

	got, err := r.Retrieve(context.Background(), "question", vectorstore.Filter{OrganizationID: "org-1"})
	if err != nil {
		t.Fatalf("store failure should not surface as error, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("candidates = %v, want none", got)
	}
}

func TestRetrieveEmbeddingFailureIsError(t *testing.T) {
	store := &scriptedStore{}
	embedder := embedderFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("no provider")
	})
	r := NewRetriever(embedder, store, testCollection, 10, time.Second, time.Second)

	if _, err := r.Retrieve(context.Background(), "question", vectorstore.Filter{OrganizationID: "org-1"}); err == nil {
		t.Fatal("expected error when embedding fails")
	}
}
