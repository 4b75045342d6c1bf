package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"proposal-ai/internal/contextutil"
	"proposal-ai/internal/llm"
)

const (
	generateTemperature = 0.3
	generateMaxTokens   = 1500
	excerptRunes        = 200

	// Confidence weights for grounded answers. Mean similarity carries
	// most of the signal; a small corroboration term rewards multiple
	// independent supporting chunks, saturating at three.
	simWeight     = 0.55
	supportWeight = 0.40
	supportSat    = 3
)

const groundedSystemPrompt = `You are a proposal writer answering RFP questions on behalf of a vendor.
Answer the question using ONLY the provided company knowledge excerpts.
Write in a confident, professional tone suitable for a formal RFP response.
Cite concrete facts from the excerpts; do not invent details that are not present.
If the excerpts only partially cover the question, answer what they support and say what additional information would strengthen the response.`

const ungroundedSystemPrompt = `You are a proposal writer answering RFP questions on behalf of a vendor.
No company-specific knowledge is available for this question.
Provide a brief, professional answer based on general industry best practices.
Begin the answer by noting that it is a general response not based on company records, so the reader knows to review it carefully.`

const degradedAnswerText = "We were unable to generate an answer for this question at the moment. Please try again shortly, or draft this response manually."

// Generator produces the final answer from the assembled context. LLM
// failures never propagate: they produce a zero-confidence placeholder so a
// batch of questions always completes.
type Generator struct {
	chat    ChatModel
	model   string
	timeout time.Duration

	ungroundedConfidence float64
	confidenceCap        float64
}

func NewGenerator(chat ChatModel, model string, timeout time.Duration, ungroundedConfidence, confidenceCap float64) *Generator {
	return &Generator{
		chat:                 chat,
		model:                model,
		timeout:              timeout,
		ungroundedConfidence: ungroundedConfidence,
		confidenceCap:        confidenceCap,
	}
}

// Generate answers the question. With a non-empty context it produces a
// grounded answer citing sources; with an empty one it produces a flagged
// general answer at the fixed ungrounded confidence.
func (g *Generator) Generate(ctx context.Context, question string, assembled AssembledContext) GeneratedAnswer {
	logger := contextutil.LoggerFromContext(ctx)

	var messages []llm.Message
	mode := ModeUngrounded
	if !assembled.Empty() {
		mode = ModeGrounded
		messages = []llm.Message{
			{Role: "system", Content: groundedSystemPrompt},
			{Role: "user", Content: formatGroundedPrompt(question, assembled)},
		}
	} else {
		messages = []llm.Message{
			{Role: "system", Content: ungroundedSystemPrompt},
			{Role: "user", Content: question},
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	text, err := g.chat.ChatWithMessages(callCtx, messages, llm.ChatParams{
		Model:       g.model,
		Temperature: generateTemperature,
		MaxTokens:   generateMaxTokens,
	})
	if err != nil {
		logger.ErrorContext(ctx, "answer generation failed", "error", err)
		return GeneratedAnswer{
			Text:       degradedAnswerText,
			Confidence: 0,
			Sources:    []Source{},
			Mode:       ModeUngrounded,
		}
	}

	answer := GeneratedAnswer{
		Text:    strings.TrimSpace(text),
		Sources: sourcesFromContext(assembled),
		Mode:    mode,
	}
	if mode == ModeGrounded {
		answer.Confidence = g.groundedConfidence(assembled)
	} else {
		answer.Confidence = g.ungroundedConfidence
	}
	return answer
}

func formatGroundedPrompt(question string, assembled AssembledContext) string {
	var b strings.Builder
	b.WriteString("Company knowledge excerpts:\n\n")
	for i, item := range assembled.Items {
		fmt.Fprintf(&b, "[%d] %s (page %d)\n%s\n\n", i+1, item.Filename, item.PageNumber, item.Text)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

// groundedConfidence blends mean similarity with a saturating count of
// supporting chunks, clamped to [ungrounded floor, cap]. With the default
// 0.6 similarity cutoff a grounded answer always scores above the floor.
func (g *Generator) groundedConfidence(assembled AssembledContext) float64 {
	n := len(assembled.Items)
	if n == 0 {
		return g.ungroundedConfidence
	}
	var sum float64
	for _, item := range assembled.Items {
		sum += item.Score
	}
	mean := sum / float64(n)

	support := float64(n)
	if support > supportSat {
		support = supportSat
	}
	conf := simWeight*mean + supportWeight*(support/supportSat)

	if conf > g.confidenceCap {
		conf = g.confidenceCap
	}
	if conf < g.ungroundedConfidence {
		conf = g.ungroundedConfidence
	}
	return conf
}

func sourcesFromContext(assembled AssembledContext) []Source {
	sources := make([]Source, 0, len(assembled.Items))
	for _, item := range assembled.Items {
		sources = append(sources, Source{
			DocumentID: item.DocumentID,
			Filename:   item.Filename,
			PageNumber: item.PageNumber,
			Relevance:  item.Score,
			Excerpt:    excerpt(item.Text),
		})
	}
	return sources
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptRunes {
		return text
	}
	return string(runes[:excerptRunes]) + "..."
}
