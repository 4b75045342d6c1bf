package rag

import (
	"context"
	"fmt"
	"sort"
	"time"

	"proposal-ai/internal/contextutil"
	"proposal-ai/internal/vectorstore"
)

// Retriever embeds a question and searches the vector store with the
// analyzer's filter. Store failures degrade to an empty candidate set;
// embedding failures are real errors because no query vector exists.
type Retriever struct {
	embedder      Embedder
	store         vectorstore.VectorStore
	collection    string
	topK          int
	embedTimeout  time.Duration
	searchTimeout time.Duration
}

func NewRetriever(embedder Embedder, store vectorstore.VectorStore, collection string, topK int, embedTimeout, searchTimeout time.Duration) *Retriever {
	return &Retriever{
		embedder:      embedder,
		store:         store,
		collection:    collection,
		topK:          topK,
		embedTimeout:  embedTimeout,
		searchTimeout: searchTimeout,
	}
}

// Retrieve returns candidates ordered by descending similarity, ties broken
// by ascending chunk index so results are stable across runs.
func (r *Retriever) Retrieve(ctx context.Context, question string, filter vectorstore.Filter) ([]RetrievedCandidate, error) {
	logger := contextutil.LoggerFromContext(ctx)

	embedCtx, cancel := context.WithTimeout(ctx, r.embedTimeout)
	vecs, err := r.embedder.EmbedTexts(embedCtx, []string{question})
	cancel()
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedding question: expected 1 vector, got %d", len(vecs))
	}

	searchCtx, cancel := context.WithTimeout(ctx, r.searchTimeout)
	defer cancel()
	results, err := r.store.Search(searchCtx, r.collection, vecs[0], r.topK, filter)
	if err != nil {
		logger.WarnContext(ctx, "vector search failed, continuing without context", "error", err)
		return nil, nil
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Payload.ChunkIndex < results[j].Payload.ChunkIndex
	})

	candidates := make([]RetrievedCandidate, 0, len(results))
	for i, res := range results {
		candidates = append(candidates, RetrievedCandidate{
			ChunkID: res.ID,
			Score:   float64(res.Score),
			Rank:    i + 1,
			Payload: res.Payload,
		})
	}
	return candidates, nil
}
