package rag

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"proposal-ai/internal/contextutil"
	"proposal-ai/internal/llm"
	"proposal-ai/internal/taxonomy"
	"proposal-ai/internal/vectorstore"
)

// Analyzer maps a free-text question to a structured retrieval filter. It
// first tries an LLM classification constrained to the taxonomy's closed
// sets; on any failure it falls back to a deterministic keyword heuristic.
// Analyze is total: it always returns a usable filter and never errors.
type Analyzer struct {
	chat    ChatModel
	model   string
	timeout time.Duration
}

// NewAnalyzer creates an analyzer. chat may be nil, in which case only the
// keyword heuristic runs.
func NewAnalyzer(chat ChatModel, model string, timeout time.Duration) *Analyzer {
	return &Analyzer{chat: chat, model: model, timeout: timeout}
}

const analyzerSystemPrompt = `You classify RFP questions to select knowledge-base filters.
Respond with a single JSON object and nothing else, using exactly these keys:
{"document_types": [], "industry_tags": [], "capability_tags": []}
Allowed document_types: company_profile, case_study, technical_specs, certifications, team_bios, pricing_templates, methodology, partnerships, awards, other.
Allowed industry_tags: healthcare, finance, technology, manufacturing, government, education, retail, energy, telecommunications, automotive, aerospace, other.
Allowed capability_tags: cloud_migration, data_analytics, cybersecurity, ai_ml, integration, mobile_development, web_development, database_management, devops, consulting, project_management, quality_assurance, ui_ux_design, blockchain, iot, other.
Leave a list empty when no value clearly applies. Never invent values outside the allowed sets.`

// Analyze derives a retrieval filter for the question. The organization id
// always comes from the call context, never from question text.
func (a *Analyzer) Analyze(ctx context.Context, question, organizationID string) vectorstore.Filter {
	logger := contextutil.LoggerFromContext(ctx)

	if a.chat != nil {
		filter, err := a.classify(ctx, question)
		if err == nil {
			filter.OrganizationID = organizationID
			return filter
		}
		logger.WarnContext(ctx, "filter classification failed, using keyword heuristic", "error", err)
	}

	filter := heuristicFilter(question)
	filter.OrganizationID = organizationID
	return filter
}

type classification struct {
	DocumentTypes  []string `json:"document_types"`
	IndustryTags   []string `json:"industry_tags"`
	CapabilityTags []string `json:"capability_tags"`
}

func (a *Analyzer) classify(ctx context.Context, question string) (vectorstore.Filter, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.chat.ChatWithMessages(ctx, []llm.Message{
		{Role: "system", Content: analyzerSystemPrompt},
		{Role: "user", Content: question},
	}, llm.ChatParams{Model: a.model, Temperature: 0, MaxTokens: 200})
	if err != nil {
		return vectorstore.Filter{}, err
	}

	var parsed classification
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		return vectorstore.Filter{}, err
	}

	// Values outside the closed sets are dropped, not errors: a partially
	// usable classification still beats the keyword table.
	filter := vectorstore.Filter{}
	for _, s := range parsed.DocumentTypes {
		if t, err := taxonomy.ParseDocumentType(s); err == nil {
			filter.DocumentTypes = append(filter.DocumentTypes, t)
		}
	}
	for _, s := range parsed.IndustryTags {
		if t, err := taxonomy.ParseIndustryTag(s); err == nil {
			filter.IndustryTags = append(filter.IndustryTags, t)
		}
	}
	for _, s := range parsed.CapabilityTags {
		if t, err := taxonomy.ParseCapabilityTag(s); err == nil {
			filter.CapabilityTags = append(filter.CapabilityTags, t)
		}
	}
	return filter, nil
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

// documentTypeKeywords maps question phrasing to document type filters.
// First matching row wins within each table.
var documentTypeKeywords = []struct {
	words []string
	types []taxonomy.DocumentType
}{
	{[]string{"experience", "past", "previous", "track record", "portfolio"}, []taxonomy.DocumentType{taxonomy.DocCaseStudy, taxonomy.DocCompanyProfile}},
	{[]string{"team", "staff", "personnel", "resources", "qualifications"}, []taxonomy.DocumentType{taxonomy.DocTeamBios, taxonomy.DocCompanyProfile}},
	{[]string{"technical", "technology", "architecture", "specs", "specifications"}, []taxonomy.DocumentType{taxonomy.DocTechnicalSpecs, taxonomy.DocMethodology}},
	{[]string{"cost", "price", "budget", "pricing", "rate"}, []taxonomy.DocumentType{taxonomy.DocPricingTemplates, taxonomy.DocCaseStudy}},
	{[]string{"approach", "methodology", "process", "framework"}, []taxonomy.DocumentType{taxonomy.DocMethodology, taxonomy.DocCaseStudy}},
	{[]string{"certification", "compliance", "standard", "iso", "sox", "hipaa"}, []taxonomy.DocumentType{taxonomy.DocCertifications, taxonomy.DocCompanyProfile}},
}

var industryKeywords = []struct {
	words []string
	tags  []taxonomy.IndustryTag
}{
	{[]string{"healthcare", "medical", "hospital", "patient"}, []taxonomy.IndustryTag{taxonomy.IndustryHealthcare}},
	{[]string{"financial", "banking", "fintech", "payment"}, []taxonomy.IndustryTag{taxonomy.IndustryFinance}},
	{[]string{"government", "federal", "state", "public sector"}, []taxonomy.IndustryTag{taxonomy.IndustryGovernment}},
	{[]string{"manufacturing", "production", "supply chain"}, []taxonomy.IndustryTag{taxonomy.IndustryManufacturing}},
}

var capabilityKeywords = []struct {
	words []string
	tags  []taxonomy.CapabilityTag
}{
	{[]string{"cloud", "aws", "azure", "migration"}, []taxonomy.CapabilityTag{taxonomy.CapCloudMigration}},
	{[]string{"data", "analytics", "reporting", "dashboard"}, []taxonomy.CapabilityTag{taxonomy.CapDataAnalytics}},
	{[]string{"security", "cybersecurity", "encryption", "vulnerability"}, []taxonomy.CapabilityTag{taxonomy.CapCybersecurity}},
	{[]string{"ai", "machine learning", "ml", "artificial intelligence"}, []taxonomy.CapabilityTag{taxonomy.CapAIML}},
	{[]string{"integration", "api", "connect", "interface"}, []taxonomy.CapabilityTag{taxonomy.CapIntegration}},
	{[]string{"mobile", "app", "ios", "android"}, []taxonomy.CapabilityTag{taxonomy.CapMobileDevelopment}},
}

var complexityIndicators = []string{"complex", "enterprise", "large-scale", "mission-critical", "strategic"}

// heuristicFilter is the deterministic fallback. It narrows by substring
// matching against a fixed keyword table and always returns a filter,
// possibly unrestricted.
func heuristicFilter(question string) vectorstore.Filter {
	q := strings.ToLower(question)
	filter := vectorstore.Filter{}

	for _, row := range documentTypeKeywords {
		if containsAny(q, row.words) {
			filter.DocumentTypes = row.types
			break
		}
	}
	for _, row := range industryKeywords {
		if containsAny(q, row.words) {
			filter.IndustryTags = row.tags
			break
		}
	}
	for _, row := range capabilityKeywords {
		if containsAny(q, row.words) {
			filter.CapabilityTags = row.tags
			break
		}
	}
	if containsAny(q, complexityIndicators) {
		filter.ConfidenceLevels = []taxonomy.ConfidenceLevel{taxonomy.ConfidenceHigh}
	}
	return filter
}

func containsAny(haystack string, words []string) bool {
	for _, w := range words {
		if strings.Contains(haystack, w) {
			return true
		}
	}
	return false
}
