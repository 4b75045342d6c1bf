package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks proposal-ai/internal/vectorstore VectorStore

import (
	"context"

	"proposal-ai/internal/taxonomy"
)

// Payload is the typed metadata stored alongside every vector. The tag
// fields come from the closed taxonomy sets and are validated before
// indexing, so filters built from the same sets always match.
type Payload struct {
	OrganizationID string
	DocumentID     string
	Filename       string
	PageNumber     int
	ChunkIndex     int
	Text           string
	Tags           taxonomy.Tags
}

// Point represents a vector point with its payload.
type Point struct {
	ID      string
	Vec     []float32
	Payload Payload
}

// SearchResult represents one hit from a similarity search.
type SearchResult struct {
	ID      string
	Score   float32
	Payload Payload
}

// Filter restricts a similarity search by payload. OrganizationID is
// mandatory; it is the tenant-isolation boundary and is enforced at the
// store, never assumed to be pre-filtered upstream. Every other field is an
// optional OR-set; populated sets are ANDed together.
type Filter struct {
	OrganizationID   string
	DocumentIDs      []string
	DocumentTypes    []taxonomy.DocumentType
	IndustryTags     []taxonomy.IndustryTag
	CapabilityTags   []taxonomy.CapabilityTag
	ProjectSizes     []taxonomy.ProjectSize
	GeographicScopes []taxonomy.GeographicScope
	ConfidenceLevels []taxonomy.ConfidenceLevel
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search restricted by the filter.
	// Results are ordered by descending score.
	Search(ctx context.Context, collection string, query []float32, k int, filter Filter) ([]SearchResult, error)

	// DeleteDocument removes all points of one document within one
	// organization.
	DeleteDocument(ctx context.Context, collection, organizationID, documentID string) error
}
