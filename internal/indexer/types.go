package indexer

import "proposal-ai/internal/taxonomy"

// Page is one page of extracted document text. Documents without page
// structure are treated as a single page 1.
type Page struct {
	Number int
	Text   string
}

// Document is a reference document ready for indexing. Text extraction and
// OCR happen upstream; the indexer receives plain text. OrganizationID must
// be set by the caller; it is the tenant boundary carried into every
// stored chunk.
type Document struct {
	ID             string
	OrganizationID string
	Filename       string
	Pages          []Page
	Tags           taxonomy.Tags
}

// Chunk is one bounded slice of document text produced by the chunker.
type Chunk struct {
	// Index is the sequence position within the whole document.
	Index int
	// Page is the page the chunk starts on.
	Page int
	// Text is the chunk content.
	Text string
}
