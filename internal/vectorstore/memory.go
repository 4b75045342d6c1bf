package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-memory VectorStore using exact cosine similarity.
// It backs unit tests and local runs without a Qdrant instance, and applies
// the same filter semantics as QdrantStore: organization equality plus
// OR-within/AND-across set membership.
type MemoryStore struct {
	mu     sync.RWMutex
	points map[string]map[string]Point // collection -> point id -> point
}

// NewMemoryStore creates an empty in-memory vector store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{points: make(map[string]map[string]Point)}
}

// Upsert inserts or updates points in the collection.
func (s *MemoryStore) Upsert(ctx context.Context, collection string, points []Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.points[collection]
	if !ok {
		coll = make(map[string]Point)
		s.points[collection] = coll
	}
	for _, p := range points {
		coll[p.ID] = p
	}
	return nil
}

// Search performs an exact similarity search restricted by the filter.
func (s *MemoryStore) Search(ctx context.Context, collection string, query []float32, k int, filter Filter) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	if filter.OrganizationID == "" {
		return nil, fmt.Errorf("filter organization id is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []SearchResult
	for _, p := range s.points[collection] {
		if !matchesFilter(p.Payload, filter) {
			continue
		}
		results = append(results, SearchResult{
			ID:      p.ID,
			Score:   cosineSimilarity(query, p.Vec),
			Payload: p.Payload,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// DeleteDocument removes all points of one document within one organization.
func (s *MemoryStore) DeleteDocument(ctx context.Context, collection, organizationID, documentID string) error {
	if organizationID == "" || documentID == "" {
		return fmt.Errorf("organization id and document id are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.points[collection] {
		if p.Payload.OrganizationID == organizationID && p.Payload.DocumentID == documentID {
			delete(s.points[collection], id)
		}
	}
	return nil
}

// Count returns the number of points in a collection. Test helper.
func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points[collection])
}

func matchesFilter(p Payload, f Filter) bool {
	if p.OrganizationID != f.OrganizationID {
		return false
	}
	if len(f.DocumentIDs) > 0 && !containsString(f.DocumentIDs, p.DocumentID) {
		return false
	}
	if len(f.DocumentTypes) > 0 && !containsString(toKeywords(f.DocumentTypes), string(p.Tags.DocumentType)) {
		return false
	}
	if len(f.IndustryTags) > 0 && !intersects(toKeywords(f.IndustryTags), toKeywords(p.Tags.IndustryTags)) {
		return false
	}
	if len(f.CapabilityTags) > 0 && !intersects(toKeywords(f.CapabilityTags), toKeywords(p.Tags.CapabilityTags)) {
		return false
	}
	if len(f.ProjectSizes) > 0 && !containsString(toKeywords(f.ProjectSizes), string(p.Tags.ProjectSize)) {
		return false
	}
	if len(f.GeographicScopes) > 0 && !containsString(toKeywords(f.GeographicScopes), string(p.Tags.GeographicScope)) {
		return false
	}
	if len(f.ConfidenceLevels) > 0 && !containsString(toKeywords(f.ConfidenceLevels), string(p.Tags.ConfidenceLevel)) {
		return false
	}
	return true
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, s := range a {
		if containsString(b, s) {
			return true
		}
	}
	return false
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
