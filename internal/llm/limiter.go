package llm

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds the number of concurrent outbound calls to the LLM and
// embedding services. All clients of one deployment share a single Limiter
// so that many in-flight questions cannot overwhelm the upstream service.
type Limiter struct {
	sem *semaphore.Weighted
}

// NewLimiter creates a limiter allowing at most n concurrent calls.
func NewLimiter(n int64) *Limiter {
	return &Limiter{sem: semaphore.NewWeighted(n)}
}

// acquire blocks until a slot is free or the context is done.
func (l *Limiter) acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.sem.Acquire(ctx, 1)
}

func (l *Limiter) release() {
	if l == nil {
		return
	}
	l.sem.Release(1)
}
