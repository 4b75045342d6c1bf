// Package taxonomy defines the closed metadata vocabulary attached to
// knowledge-base chunks. Tags are validated at indexing time so that
// retrieval filters can never contain values that are unmatchable in the
// vector store.
package taxonomy

import "fmt"

// DocumentType classifies a reference document.
type DocumentType string

const (
	DocCompanyProfile   DocumentType = "company_profile"
	DocCaseStudy        DocumentType = "case_study"
	DocTechnicalSpecs   DocumentType = "technical_specs"
	DocCertifications   DocumentType = "certifications"
	DocTeamBios         DocumentType = "team_bios"
	DocPricingTemplates DocumentType = "pricing_templates"
	DocMethodology      DocumentType = "methodology"
	DocPartnerships     DocumentType = "partnerships"
	DocAwards           DocumentType = "awards"
	DocOther            DocumentType = "other"
)

// IndustryTag marks the industry a document relates to.
type IndustryTag string

const (
	IndustryHealthcare         IndustryTag = "healthcare"
	IndustryFinance            IndustryTag = "finance"
	IndustryTechnology         IndustryTag = "technology"
	IndustryManufacturing      IndustryTag = "manufacturing"
	IndustryGovernment         IndustryTag = "government"
	IndustryEducation          IndustryTag = "education"
	IndustryRetail             IndustryTag = "retail"
	IndustryEnergy             IndustryTag = "energy"
	IndustryTelecommunications IndustryTag = "telecommunications"
	IndustryAutomotive         IndustryTag = "automotive"
	IndustryAerospace          IndustryTag = "aerospace"
	IndustryOther              IndustryTag = "other"
)

// CapabilityTag marks a delivery capability a document demonstrates.
type CapabilityTag string

const (
	CapCloudMigration     CapabilityTag = "cloud_migration"
	CapDataAnalytics      CapabilityTag = "data_analytics"
	CapCybersecurity      CapabilityTag = "cybersecurity"
	CapAIML               CapabilityTag = "ai_ml"
	CapIntegration        CapabilityTag = "integration"
	CapMobileDevelopment  CapabilityTag = "mobile_development"
	CapWebDevelopment     CapabilityTag = "web_development"
	CapDatabaseManagement CapabilityTag = "database_management"
	CapDevOps             CapabilityTag = "devops"
	CapConsulting         CapabilityTag = "consulting"
	CapProjectManagement  CapabilityTag = "project_management"
	CapQualityAssurance   CapabilityTag = "quality_assurance"
	CapUIUXDesign         CapabilityTag = "ui_ux_design"
	CapBlockchain         CapabilityTag = "blockchain"
	CapIOT                CapabilityTag = "iot"
	CapOther              CapabilityTag = "other"
)

// ProjectSize buckets a reference project by contract value.
type ProjectSize string

const (
	SizeSmall      ProjectSize = "small"
	SizeMedium     ProjectSize = "medium"
	SizeLarge      ProjectSize = "large"
	SizeEnterprise ProjectSize = "enterprise"
)

// GeographicScope marks the delivery footprint of a reference project.
type GeographicScope string

const (
	GeoLocal         GeographicScope = "local"
	GeoRegional      GeographicScope = "regional"
	GeoNational      GeographicScope = "national"
	GeoInternational GeographicScope = "international"
)

// ConfidenceLevel marks how freely a document may be used in answers.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

var documentTypes = map[DocumentType]bool{
	DocCompanyProfile: true, DocCaseStudy: true, DocTechnicalSpecs: true,
	DocCertifications: true, DocTeamBios: true, DocPricingTemplates: true,
	DocMethodology: true, DocPartnerships: true, DocAwards: true, DocOther: true,
}

var industryTags = map[IndustryTag]bool{
	IndustryHealthcare: true, IndustryFinance: true, IndustryTechnology: true,
	IndustryManufacturing: true, IndustryGovernment: true, IndustryEducation: true,
	IndustryRetail: true, IndustryEnergy: true, IndustryTelecommunications: true,
	IndustryAutomotive: true, IndustryAerospace: true, IndustryOther: true,
}

var capabilityTags = map[CapabilityTag]bool{
	CapCloudMigration: true, CapDataAnalytics: true, CapCybersecurity: true,
	CapAIML: true, CapIntegration: true, CapMobileDevelopment: true,
	CapWebDevelopment: true, CapDatabaseManagement: true, CapDevOps: true,
	CapConsulting: true, CapProjectManagement: true, CapQualityAssurance: true,
	CapUIUXDesign: true, CapBlockchain: true, CapIOT: true, CapOther: true,
}

var projectSizes = map[ProjectSize]bool{
	SizeSmall: true, SizeMedium: true, SizeLarge: true, SizeEnterprise: true,
}

var geographicScopes = map[GeographicScope]bool{
	GeoLocal: true, GeoRegional: true, GeoNational: true, GeoInternational: true,
}

var confidenceLevels = map[ConfidenceLevel]bool{
	ConfidenceHigh: true, ConfidenceMedium: true, ConfidenceLow: true,
}

// ParseDocumentType validates a raw string against the closed set.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(s)
	if !documentTypes[t] {
		return "", fmt.Errorf("unknown document type %q", s)
	}
	return t, nil
}

// ParseIndustryTag validates a raw string against the closed set.
func ParseIndustryTag(s string) (IndustryTag, error) {
	t := IndustryTag(s)
	if !industryTags[t] {
		return "", fmt.Errorf("unknown industry tag %q", s)
	}
	return t, nil
}

// ParseCapabilityTag validates a raw string against the closed set.
func ParseCapabilityTag(s string) (CapabilityTag, error) {
	t := CapabilityTag(s)
	if !capabilityTags[t] {
		return "", fmt.Errorf("unknown capability tag %q", s)
	}
	return t, nil
}

// ParseProjectSize validates a raw string against the closed set.
func ParseProjectSize(s string) (ProjectSize, error) {
	t := ProjectSize(s)
	if !projectSizes[t] {
		return "", fmt.Errorf("unknown project size %q", s)
	}
	return t, nil
}

// ParseGeographicScope validates a raw string against the closed set.
func ParseGeographicScope(s string) (GeographicScope, error) {
	t := GeographicScope(s)
	if !geographicScopes[t] {
		return "", fmt.Errorf("unknown geographic scope %q", s)
	}
	return t, nil
}

// ParseConfidenceLevel validates a raw string against the closed set.
func ParseConfidenceLevel(s string) (ConfidenceLevel, error) {
	t := ConfidenceLevel(s)
	if !confidenceLevels[t] {
		return "", fmt.Errorf("unknown confidence level %q", s)
	}
	return t, nil
}

// Tags is the validated metadata set attached to every indexed chunk.
type Tags struct {
	DocumentType    DocumentType      `json:"document_type"`
	IndustryTags    []IndustryTag     `json:"industry_tags,omitempty"`
	CapabilityTags  []CapabilityTag   `json:"capability_tags,omitempty"`
	ProjectSize     ProjectSize       `json:"project_size,omitempty"`
	GeographicScope GeographicScope   `json:"geographic_scope,omitempty"`
	ConfidenceLevel ConfidenceLevel   `json:"confidence_level,omitempty"`
	CustomTags      []string          `json:"custom_tags,omitempty"`
	Keywords        []string          `json:"keywords,omitempty"`
}

// Validate checks every populated field against its closed set. Optional
// fields may be empty; CustomTags and Keywords are free-form.
func (t Tags) Validate() error {
	if _, err := ParseDocumentType(string(t.DocumentType)); err != nil {
		return err
	}
	for _, tag := range t.IndustryTags {
		if _, err := ParseIndustryTag(string(tag)); err != nil {
			return err
		}
	}
	for _, tag := range t.CapabilityTags {
		if _, err := ParseCapabilityTag(string(tag)); err != nil {
			return err
		}
	}
	if t.ProjectSize != "" {
		if _, err := ParseProjectSize(string(t.ProjectSize)); err != nil {
			return err
		}
	}
	if t.GeographicScope != "" {
		if _, err := ParseGeographicScope(string(t.GeographicScope)); err != nil {
			return err
		}
	}
	if t.ConfidenceLevel != "" {
		if _, err := ParseConfidenceLevel(string(t.ConfidenceLevel)); err != nil {
			return err
		}
	}
	return nil
}
