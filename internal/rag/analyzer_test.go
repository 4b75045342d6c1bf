package rag

import (
	"context"
	"errors"
	"testing"
	"time"

	"proposal-ai/internal/llm"
	"proposal-ai/internal/taxonomy"
)

type chatFunc func(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)

func (f chatFunc) ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error) {
	return f(ctx, messages, params)
}

func TestHeuristicFilterKeywordTables(t *testing.T) {
	cases := []struct {
		name         string
		question     string
		wantDocTypes []taxonomy.DocumentType
		wantIndustry []taxonomy.IndustryTag
		wantCaps     []taxonomy.CapabilityTag
		wantConf     []taxonomy.ConfidenceLevel
	}{
		{
			name:         "experience maps to case studies",
			question:     "Describe your past experience with similar projects",
			wantDocTypes: []taxonomy.DocumentType{taxonomy.DocCaseStudy, taxonomy.DocCompanyProfile},
		},
		{
			name:         "team questions map to bios",
			question:     "What staff will be assigned to this engagement?",
			wantDocTypes: []taxonomy.DocumentType{taxonomy.DocTeamBios, taxonomy.DocCompanyProfile},
		},
		{
			name:         "pricing questions map to pricing templates",
			question:     "Provide your rate card and budget assumptions",
			wantDocTypes: []taxonomy.DocumentType{taxonomy.DocPricingTemplates, taxonomy.DocCaseStudy},
		},
		{
			name:         "healthcare industry detected",
			question:     "Tell us about your hospital system integrations",
			wantIndustry: []taxonomy.IndustryTag{taxonomy.IndustryHealthcare},
			wantCaps:     []taxonomy.CapabilityTag{taxonomy.CapIntegration},
		},
		{
			name:     "cloud capability detected",
			question: "How do you handle AWS workloads?",
			wantCaps: []taxonomy.CapabilityTag{taxonomy.CapCloudMigration},
		},
		{
			name:     "complexity raises confidence filter",
			question: "How would you run a mission-critical deployment?",
			wantConf: []taxonomy.ConfidenceLevel{taxonomy.ConfidenceHigh},
		},
		{
			name:     "no keywords leaves filter open",
			question: "Tell us something interesting",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := heuristicFilter(tc.question)
			if !equalDocTypes(f.DocumentTypes, tc.wantDocTypes) {
				t.Errorf("document types = %v, want %v", f.DocumentTypes, tc.wantDocTypes)
			}
			if !equalIndustry(f.IndustryTags, tc.wantIndustry) {
				t.Errorf("industry tags = %v, want %v", f.IndustryTags, tc.wantIndustry)
			}
			if !equalCaps(f.CapabilityTags, tc.wantCaps) {
				t.Errorf("capability tags = %v, want %v", f.CapabilityTags, tc.wantCaps)
			}
			if !equalConf(f.ConfidenceLevels, tc.wantConf) {
				t.Errorf("confidence levels = %v, want %v", f.ConfidenceLevels, tc.wantConf)
			}
		})
	}
}

func TestAnalyzeUsesLLMClassification(t *testing.T) {
	chat := chatFunc(func(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error) {
		return "```json\n{\"document_types\":[\"case_study\",\"not_a_type\"],\"industry_tags\":[\"finance\"],\"capability_tags\":[]}\n```", nil
	})
	a := NewAnalyzer(chat, "test-model", time.Second)

	f := a.Analyze(context.Background(), "question", "org-1")
	if f.OrganizationID != "org-1" {
		t.Errorf("organization id = %q, want org-1", f.OrganizationID)
	}
	if len(f.DocumentTypes) != 1 || f.DocumentTypes[0] != taxonomy.DocCaseStudy {
		t.Errorf("document types = %v, want [case_study] with invalid value dropped", f.DocumentTypes)
	}
	if len(f.IndustryTags) != 1 || f.IndustryTags[0] != taxonomy.IndustryFinance {
		t.Errorf("industry tags = %v, want [finance]", f.IndustryTags)
	}
}

func TestAnalyzeFallsBackOnLLMError(t *testing.T) {
	chat := chatFunc(func(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error) {
		return "", errors.New("model offline")
	})
	a := NewAnalyzer(chat, "test-model", time.Second)

	f := a.Analyze(context.Background(), "What is your pricing model?", "org-1")
	if f.OrganizationID != "org-1" {
		t.Errorf("organization id = %q, want org-1", f.OrganizationID)
	}
	if len(f.DocumentTypes) == 0 || f.DocumentTypes[0] != taxonomy.DocPricingTemplates {
		t.Errorf("document types = %v, want keyword fallback to pricing_templates", f.DocumentTypes)
	}
}

func TestAnalyzeFallsBackOnMalformedJSON(t *testing.T) {
	chat := chatFunc(func(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error) {
		return "I think this is about healthcare", nil
	})
	a := NewAnalyzer(chat, "test-model", time.Second)

	f := a.Analyze(context.Background(), "Describe your hospital deployments", "org-1")
	if len(f.IndustryTags) != 1 || f.IndustryTags[0] != taxonomy.IndustryHealthcare {
		t.Errorf("industry tags = %v, want keyword fallback to healthcare", f.IndustryTags)
	}
}

func TestAnalyzeWithoutChatModel(t *testing.T) {
	a := NewAnalyzer(nil, "", time.Second)
	f := a.Analyze(context.Background(), "security audit experience", "org-1")
	if f.OrganizationID != "org-1" {
		t.Errorf("organization id = %q, want org-1", f.OrganizationID)
	}
	if len(f.CapabilityTags) != 1 || f.CapabilityTags[0] != taxonomy.CapCybersecurity {
		t.Errorf("capability tags = %v, want [cybersecurity]", f.CapabilityTags)
	}
}

func equalDocTypes(got, want []taxonomy.DocumentType) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func equalIndustry(got, want []taxonomy.IndustryTag) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func equalCaps(got, want []taxonomy.CapabilityTag) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func equalConf(got, want []taxonomy.ConfidenceLevel) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
