package storage

import "time"

// DocumentRecord tracks an indexed knowledge-base document. The chunk text
// itself lives in the vector store; this row is the catalog entry used for
// listings and re-index bookkeeping.
type DocumentRecord struct {
	ID             string // UUID (same as the vector store payload document_id)
	OrganizationID string
	Filename       string
	PageCount      int
	ChunkCount     int
	TagsJSON       string // taxonomy.Tags serialized as JSON
	IndexedAt      time.Time
}

// QuestionRecord is one question extracted from an uploaded RFP document.
type QuestionRecord struct {
	ID             string // UUID
	OrganizationID string
	DocumentID     string // RFP document the question came from
	SectionTitle   string
	Topic          string
	ReferenceID    string // identifier carried from the RFP text, if any
	Text           string
	CreatedAt      time.Time
}

// AnswerRecord is one generated answer kept for review and reuse.
type AnswerRecord struct {
	ID             string // UUID
	OrganizationID string
	Question       string
	AnswerText     string
	Confidence     float64
	Mode           string // "grounded" or "ungrounded"
	SourcesJSON    string // []rag.Source serialized as JSON
	CreatedAt      time.Time
}
