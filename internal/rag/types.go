package rag

import (
	"context"

	"proposal-ai/internal/llm"
	"proposal-ai/internal/vectorstore"
)

// Embedder turns text into fixed-dimension vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel is the LLM used for query analysis and answer generation.
type ChatModel interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// AnswerRequest is one question to answer. OrganizationID comes from the
// authenticated call context, never from question text.
type AnswerRequest struct {
	Question       string
	OrganizationID string
	// DocumentIDs optionally restricts retrieval to specific documents.
	DocumentIDs []string
}

// GenerationMode records whether retrieved context informed the answer.
type GenerationMode string

const (
	// ModeGrounded means non-empty retrieved context was used.
	ModeGrounded GenerationMode = "grounded"
	// ModeUngrounded means the answer was produced without
	// company-specific context.
	ModeUngrounded GenerationMode = "ungrounded"
)

// Source attributes part of an answer to a stored chunk.
type Source struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	PageNumber int     `json:"page_number"`
	Relevance  float64 `json:"relevance"`
	Excerpt    string  `json:"excerpt"`
}

// GeneratedAnswer is the final output of one answer() call. The caller owns
// persistence; the engine returns it and forgets it.
type GeneratedAnswer struct {
	Text       string         `json:"text"`
	Confidence float64        `json:"confidence"`
	Sources    []Source       `json:"sources"`
	Mode       GenerationMode `json:"mode"`
}

// RetrievedCandidate is one similarity-search hit.
type RetrievedCandidate struct {
	ChunkID string
	// Score is the similarity in [0,1], higher is more relevant.
	Score float64
	// Rank is the 1-based position within one search call.
	Rank    int
	Payload vectorstore.Payload
}

// ContextItem is one chunk admitted into the generation context, with
// provenance kept even if its text was truncated.
type ContextItem struct {
	ChunkID    string
	Text       string
	Score      float64
	DocumentID string
	Filename   string
	PageNumber int
}

// AssembledContext is the bounded context passed to the generator. An empty
// item list is a valid state, not an error.
type AssembledContext struct {
	Items      []ContextItem
	TotalChars int
}

// Empty reports whether no context survived assembly.
func (c AssembledContext) Empty() bool {
	return len(c.Items) == 0
}
