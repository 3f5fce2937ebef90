package domain

import "strings"

type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// NormalizeSeverity maps free-form severity text (as returned by the language
// model) onto the fixed scale, defaulting to Low.
func NormalizeSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return SeverityHigh
	case "medium", "med":
		return SeverityMedium
	default:
		return SeverityLow
	}
}

type FindingOrigin string

const (
	OriginRuleEngine    FindingOrigin = "rule_engine"
	OriginLanguageModel FindingOrigin = "llm"
)

// EvidenceSnippet is a retrieved reference fragment supporting a finding.
// Score is nil when the store returned no usable distance.
type EvidenceSnippet struct {
	Text  string         `json:"text"`
	Meta  map[string]any `json:"meta"`
	Score *float64       `json:"score"`
}

// IssueFinding is a single flagged candidate compliance problem. Section is
// "document-level", "Paragraph <n>" or "LLM Analysis".
type IssueFinding struct {
	Document   string            `json:"document"`
	DocType    string            `json:"doc_type"`
	Section    string            `json:"section"`
	Issue      string            `json:"issue"`
	Severity   Severity          `json:"severity"`
	Suggestion string            `json:"suggestion"`
	Evidence   []EvidenceSnippet `json:"evidence"`
	Origin     FindingOrigin     `json:"origin"`
}

// Annotation is an advisory note anchored to a source paragraph index.
type Annotation struct {
	ParagraphIndex int
	Message        string
}
