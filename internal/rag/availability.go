package rag

// ServiceAvailability records which external collaborators were reachable
// when the engine was constructed. It is injected rather than inferred from
// missing configuration, so the degraded paths are explicit, first-class
// code paths that tests can exercise directly.
type ServiceAvailability struct {
	// VectorStore is true when the vector store answered a probe.
	VectorStore bool
	// Embeddings is true when the embedding provider is configured.
	Embeddings bool
	// LLM is true when the chat model is configured.
	LLM bool
}

// CanRetrieve reports whether the retrieval stage can run at all.
func (a ServiceAvailability) CanRetrieve() bool {
	return a.VectorStore && a.Embeddings
}
