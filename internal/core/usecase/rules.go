package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
)

type RuleScope string

const (
	ScopeDocument  RuleScope = "document"
	ScopeParagraph RuleScope = "paragraph"
)

// SectionDocumentLevel locates findings that apply to the whole document.
const SectionDocumentLevel = "document-level"

// Rule is one declarative compliance detector. Message and Note may embed a
// {match} placeholder replaced with the matched term. Negate inverts matching
// so a rule can fire on the absence of a pattern (document scope only).
type Rule struct {
	Name          string
	Scope         RuleScope
	Pattern       *regexp.Regexp
	Negate        bool
	Severity      domain.Severity
	Message       string
	Suggestion    string
	Note          string
	EvidenceQuery string
	EvidenceK     int
}

// DefaultRules is the built-in ADGM detector table. Adding a detector is a
// data change, either here or through the YAML rule-set file.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:          "missing_signature",
			Scope:         ScopeDocument,
			Pattern:       regexp.MustCompile(`(?i)(signed[:\s]|signature[:\s]|sig[:\s])`),
			Negate:        true,
			Severity:      domain.SeverityHigh,
			Message:       "Possible missing signature block",
			Suggestion:    "Add signature block with name, position and date.",
			Note:          "Add signature block with name, position and date.",
			EvidenceQuery: "signature block example",
			EvidenceK:     2,
		},
		{
			Name:          "non_adgm_jurisdiction",
			Scope:         ScopeParagraph,
			Pattern:       regexp.MustCompile(`(?i)\b(united kingdom|uk|england|usa|united states|federal court|dubai international financial centre|difc)\b`),
			Severity:      domain.SeverityHigh,
			Message:       "Non-ADGM jurisdiction referenced: '{match}'",
			Suggestion:    "Change jurisdiction to ADGM/ADGM Courts if incorporation is in ADGM.",
			Note:          "Jurisdiction appears non-ADGM: {match}. Suggest: use ADGM jurisdiction.",
			EvidenceQuery: "ADGM jurisdiction requirement",
			EvidenceK:     2,
		},
		{
			Name:          "ambiguous_language",
			Scope:         ScopeParagraph,
			Pattern:       regexp.MustCompile(`(?i)\b(may\b|best endeavou?rs?\b|best efforts|endeavour to|could\b)\b`),
			Severity:      domain.SeverityMedium,
			Message:       "Potentially ambiguous/non-binding language (may, best endeavours, etc.)",
			Suggestion:    "Consider using stronger binding language (e.g., 'shall') for obligations.",
			Note:          "Potentially ambiguous language found. Replace with stronger terms.",
			EvidenceQuery: "binding language shall vs may",
			EvidenceK:     1,
		},
		{
			Name:          "single_signatory",
			Scope:         ScopeParagraph,
			Pattern:       regexp.MustCompile(`(?i)\b(one|1)\b.*(authorized signator|authorized signatory|signatory)\b`),
			Severity:      domain.SeverityMedium,
			Message:       "Only one authorized signatory specified",
			Suggestion:    "Confirm checklist requirement; consider adding an additional authorized signatory.",
			Note:          "Only one authorized signatory specified. Consider adding another.",
			EvidenceQuery: "signature requirement multiple signatories",
			EvidenceK:     1,
		},
	}
}

// RuleEngine evaluates the detector table over a document. Evaluation is
// stateless: patterns are re-applied on every call, nothing is cached.
type RuleEngine struct {
	rules    []Rule
	evidence EvidenceSource
}

func NewRuleEngine(rules []Rule, evidence EvidenceSource) *RuleEngine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &RuleEngine{rules: rules, evidence: evidence}
}

// Evaluate returns findings ordered document-level first, then per paragraph
// in ascending index order with detectors applied in table order, plus the
// matching inline annotations. Each detector yields at most one finding per
// paragraph regardless of how many terms match.
func (e *RuleEngine) Evaluate(
	ctx context.Context,
	document, docType string,
	paras []domain.Paragraph,
	wholeText string,
) ([]domain.IssueFinding, []domain.Annotation) {
	var findings []domain.IssueFinding
	var notes []domain.Annotation

	lowerWhole := strings.ToLower(wholeText)
	for _, r := range e.rules {
		if r.Scope != ScopeDocument {
			continue
		}
		matched := r.Pattern.MatchString(lowerWhole)
		if matched == r.Negate {
			continue
		}
		match := ""
		if matched {
			match = r.Pattern.FindString(lowerWhole)
		}
		findings = append(findings, e.buildFinding(ctx, r, document, docType, SectionDocumentLevel, match))
		notes = append(notes, domain.Annotation{
			ParagraphIndex: lastParagraphIndex(paras),
			Message:        renderTemplate(r.Note, match),
		})
	}

	for _, p := range paras {
		lower := strings.ToLower(p.Text)
		for _, r := range e.rules {
			if r.Scope != ScopeParagraph {
				continue
			}
			match := r.Pattern.FindString(lower)
			if match == "" {
				continue
			}
			section := fmt.Sprintf("Paragraph %d", p.Index)
			findings = append(findings, e.buildFinding(ctx, r, document, docType, section, match))
			notes = append(notes, domain.Annotation{
				ParagraphIndex: p.Index,
				Message:        renderTemplate(r.Note, match),
			})
		}
	}

	return findings, notes
}

func (e *RuleEngine) buildFinding(ctx context.Context, r Rule, document, docType, section, match string) domain.IssueFinding {
	var evidence []domain.EvidenceSnippet
	if e.evidence != nil && r.EvidenceQuery != "" {
		evidence = e.evidence.Retrieve(ctx, r.EvidenceQuery, r.EvidenceK)
	}
	if evidence == nil {
		evidence = []domain.EvidenceSnippet{}
	}
	return domain.IssueFinding{
		Document:   document,
		DocType:    docType,
		Section:    section,
		Issue:      renderTemplate(r.Message, match),
		Severity:   r.Severity,
		Suggestion: r.Suggestion,
		Evidence:   evidence,
		Origin:     domain.OriginRuleEngine,
	}
}

func renderTemplate(tpl, match string) string {
	return strings.ReplaceAll(tpl, "{match}", match)
}

func lastParagraphIndex(paras []domain.Paragraph) int {
	if len(paras) == 0 {
		return 0
	}
	return paras[len(paras)-1].Index
}
