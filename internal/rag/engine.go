package rag

import (
	"context"
	"strings"

	"proposal-ai/internal/config"
	"proposal-ai/internal/contextutil"
)

// Engine is the answer pipeline: analyze, retrieve, assemble, generate.
type Engine interface {
	// Answer produces an answer for one question. It only errors on invalid
	// input; backend failures degrade to ungrounded or placeholder answers.
	Answer(ctx context.Context, req AnswerRequest) (GeneratedAnswer, error)
	// SearchKnowledge runs retrieval only, for inspecting what the knowledge
	// base would contribute to a question.
	SearchKnowledge(ctx context.Context, req AnswerRequest) ([]RetrievedCandidate, error)
}

type engine struct {
	analyzer  *Analyzer
	retriever *Retriever
	generator *Generator
	params    config.RetrievalParams
	avail     ServiceAvailability
}

func NewEngine(analyzer *Analyzer, retriever *Retriever, generator *Generator, params config.RetrievalParams, avail ServiceAvailability) Engine {
	return &engine{
		analyzer:  analyzer,
		retriever: retriever,
		generator: generator,
		params:    params,
		avail:     avail,
	}
}

func validateRequest(req AnswerRequest) error {
	if strings.TrimSpace(req.Question) == "" {
		return &ValidationError{Field: "question", Message: "must not be empty"}
	}
	if strings.TrimSpace(req.OrganizationID) == "" {
		return &ValidationError{Field: "organization_id", Message: "must not be empty"}
	}
	return nil
}

func (e *engine) Answer(ctx context.Context, req AnswerRequest) (GeneratedAnswer, error) {
	if err := validateRequest(req); err != nil {
		return GeneratedAnswer{}, err
	}
	logger := contextutil.LoggerFromContext(ctx)

	assembled := AssembledContext{}
	if e.avail.CanRetrieve() {
		candidates, err := e.retrieve(ctx, req)
		if err != nil {
			// Embedding failure: no query vector, so retrieval is
			// impossible. Fall through to an ungrounded answer.
			logger.WarnContext(ctx, "retrieval unavailable, answering without context", "error", err)
		} else {
			assembled = Assemble(candidates, e.params.MinSimilarity, e.params.MaxContextItems, e.params.MaxContextChars)
		}
	} else {
		logger.InfoContext(ctx, "retrieval services unavailable, answering without context")
	}

	answer := e.generator.Generate(ctx, req.Question, assembled)
	logger.InfoContext(ctx, "answer generated",
		"mode", string(answer.Mode),
		"confidence", answer.Confidence,
		"sources", len(answer.Sources))
	return answer, nil
}

func (e *engine) SearchKnowledge(ctx context.Context, req AnswerRequest) ([]RetrievedCandidate, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if !e.avail.CanRetrieve() {
		return nil, nil
	}
	return e.retrieve(ctx, req)
}

func (e *engine) retrieve(ctx context.Context, req AnswerRequest) ([]RetrievedCandidate, error) {
	filter := e.analyzer.Analyze(ctx, req.Question, req.OrganizationID)
	// The caller's organization always wins, whatever the analyzer did.
	filter.OrganizationID = req.OrganizationID
	filter.DocumentIDs = req.DocumentIDs
	return e.retriever.Retrieve(ctx, req.Question, filter)
}
