package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"proposal-ai/internal/contextutil"
	"proposal-ai/internal/llm"
)

// MinDocumentChars is the minimum amount of text worth analyzing. Shorter
// inputs are almost always failed uploads or empty extractions.
const MinDocumentChars = 50

const maxHeuristicQuestions = 15

// ChatModel is the LLM used for structured question extraction.
type ChatModel interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Question is one answerable item found in an RFP document.
type Question struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	Topic        string `json:"topic"`
	ReferenceID  string `json:"reference_id,omitempty"`
	SectionTitle string `json:"section_title"`
}

// Section groups related questions the way the source document does.
type Section struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
}

// Result is the outcome of one extraction run.
type Result struct {
	Sections       []Section `json:"sections"`
	TotalQuestions int       `json:"total_questions"`
	// Method records which path produced the questions: "llm" or
	// "heuristic".
	Method string `json:"extraction_method"`
}

// Extractor pulls questions out of RFP document text. The LLM path returns
// sectioned, categorized questions; when it fails the regex heuristic still
// yields a flat list so an upload never extracts to nothing silently.
type Extractor struct {
	chat    ChatModel
	model   string
	timeout time.Duration
}

// NewExtractor creates an extractor. chat may be nil to run heuristics only.
func NewExtractor(chat ChatModel, model string, timeout time.Duration) *Extractor {
	return &Extractor{chat: chat, model: model, timeout: timeout}
}

const extractSystemPrompt = `You analyze RFP (Request for Proposal) documents and extract the questions a bidding vendor must answer.
Identify direct questions, requirements that need responses, information requests, and compliance items needing confirmation.
Group related questions into logical sections.
Respond with a single JSON object in exactly this shape and nothing else:
{"sections":[{"title":"...","description":"...","questions":[{"text":"...","topic":"...","reference_id":""}]}]}`

// maxPromptRunes bounds the document text sent to the model.
const maxPromptRunes = 8000

// ExtractQuestions analyzes documentText and returns the questions found.
// It errors only on unusable input; model failures fall back to pattern
// matching.
func (e *Extractor) ExtractQuestions(ctx context.Context, documentText string) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(strings.TrimSpace(documentText)) < MinDocumentChars {
		return Result{}, fmt.Errorf("document has insufficient content for extraction (%d chars)", len(strings.TrimSpace(documentText)))
	}

	if e.chat != nil {
		sections, err := e.extractWithModel(ctx, documentText)
		if err == nil {
			return buildResult(sections, "llm"), nil
		}
		logger.WarnContext(ctx, "model extraction failed, using pattern heuristic", "error", err)
	}

	return buildResult(heuristicSections(documentText), "heuristic"), nil
}

func buildResult(sections []Section, method string) Result {
	total := 0
	for _, s := range sections {
		total += len(s.Questions)
	}
	return Result{Sections: sections, TotalQuestions: total, Method: method}
}

type extractedQuestion struct {
	Text        string `json:"text"`
	Topic       string `json:"topic"`
	ReferenceID string `json:"reference_id"`
}

type extractedSection struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Questions   []extractedQuestion `json:"questions"`
}

type extractedDocument struct {
	Sections []extractedSection `json:"sections"`
}

func (e *Extractor) extractWithModel(ctx context.Context, documentText string) ([]Section, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	runes := []rune(documentText)
	if len(runes) > maxPromptRunes {
		documentText = string(runes[:maxPromptRunes])
	}

	raw, err := e.chat.ChatWithMessages(ctx, []llm.Message{
		{Role: "system", Content: extractSystemPrompt},
		{Role: "user", Content: "Extract all questions and requirements from this RFP document:\n\n" + documentText},
	}, llm.ChatParams{Model: e.model, Temperature: 0.1, MaxTokens: 4000})
	if err != nil {
		return nil, err
	}

	var parsed extractedDocument
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parsing extraction response: %w", err)
	}
	if len(parsed.Sections) == 0 {
		return nil, fmt.Errorf("extraction response contained no sections")
	}

	sections := make([]Section, 0, len(parsed.Sections))
	for _, sec := range parsed.Sections {
		out := Section{
			ID:          uuid.NewString(),
			Title:       sec.Title,
			Description: sec.Description,
		}
		for _, q := range sec.Questions {
			text := strings.TrimSpace(q.Text)
			if text == "" {
				continue
			}
			out.Questions = append(out.Questions, Question{
				ID:           uuid.NewString(),
				Text:         text,
				Topic:        q.Topic,
				ReferenceID:  q.ReferenceID,
				SectionTitle: sec.Title,
			})
		}
		if len(out.Questions) > 0 {
			sections = append(sections, out)
		}
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("extraction response contained no questions")
	}
	return sections, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

var questionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)^\s*(?:\d+\.?\s*)?(?:question\s*\d*:?\s*)?(what\s+(?:is|are|would|should|will|do|does)[^.?]*\?)`),
	regexp.MustCompile(`(?im)^\s*(?:\d+\.?\s*)?(?:question\s*\d*:?\s*)?(how\s+(?:do|does|would|should|will|can|many|much)[^.?]*\?)`),
	regexp.MustCompile(`(?im)^\s*(?:\d+\.?\s*)?(?:question\s*\d*:?\s*)?(please\s+(?:provide|describe|explain|list|detail)[^.?]*[.?])`),
	regexp.MustCompile(`(?im)^\s*(?:\d+\.?\s*)?(?:question\s*\d*:?\s*)?(describe\s+your[^.?]*[.?])`),
	regexp.MustCompile(`(?im)^\s*(?:\d+\.?\s*)?(?:question\s*\d*:?\s*)?(provide\s+(?:details|information|examples)[^.?]*[.?])`),
	regexp.MustCompile(`(?im)^\s*(?:\d+\.?\s*)?(.+\?)\s*$`),
}

var numberPrefix = regexp.MustCompile(`(?i)^(?:\d+\.?\s*)?(?:question\s*\d*:?\s*)?`)

// heuristicSections is the deterministic fallback: pattern-match question
// shaped lines, dedup case-insensitively preserving order, and return them
// as one flat section.
func heuristicSections(documentText string) []Section {
	seen := make(map[string]bool)
	var questions []Question

	for _, pattern := range questionPatterns {
		for _, match := range pattern.FindAllStringSubmatch(documentText, -1) {
			text := strings.TrimSpace(numberPrefix.ReplaceAllString(strings.TrimSpace(match[1]), ""))
			if len(text) <= 10 {
				continue
			}
			lower := strings.ToLower(text)
			if strings.HasPrefix(lower, "yes") || strings.HasPrefix(lower, "no") ||
				strings.HasPrefix(lower, "true") || strings.HasPrefix(lower, "false") {
				continue
			}
			if seen[lower] {
				continue
			}
			seen[lower] = true
			questions = append(questions, Question{
				ID:           uuid.NewString(),
				Text:         text,
				Topic:        "general",
				SectionTitle: "Extracted Questions",
			})
			if len(questions) >= maxHeuristicQuestions {
				break
			}
		}
		if len(questions) >= maxHeuristicQuestions {
			break
		}
	}

	if len(questions) == 0 {
		return nil
	}
	return []Section{{
		ID:          uuid.NewString(),
		Title:       "Extracted Questions",
		Description: "Questions identified by pattern matching",
		Questions:   questions,
	}}
}
