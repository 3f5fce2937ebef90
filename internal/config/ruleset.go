package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
	"github.com/complykit/adgm-corporate-agent/internal/core/usecase"
)

// Ruleset is an optional YAML override for the built-in detector table and
// document-type keyword map.
type Ruleset struct {
	DocTypes []docTypeSpec `yaml:"doc_types"`
	Rules    []ruleSpec    `yaml:"rules"`
}

type docTypeSpec struct {
	Type     string   `yaml:"type"`
	Keywords []string `yaml:"keywords"`
}

type ruleSpec struct {
	Name          string   `yaml:"name"`
	Scope         string   `yaml:"scope"`
	Pattern       string   `yaml:"pattern"`
	Negate        bool     `yaml:"negate"`
	Severity      string   `yaml:"severity"`
	Message       string   `yaml:"message"`
	Suggestion    string   `yaml:"suggestion"`
	Note          string   `yaml:"note"`
	EvidenceQuery string   `yaml:"evidence_query"`
	EvidenceK     int      `yaml:"evidence_k"`
}

// LoadRuleset parses a YAML rule-set file into detector rules and type
// keywords. Either section may be empty; callers fall back to the built-in
// tables for the missing one.
func LoadRuleset(path string) ([]usecase.Rule, []usecase.TypeKeywords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read ruleset: %w", err)
	}

	var set Ruleset
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, nil, fmt.Errorf("parse ruleset yaml: %w", err)
	}

	var types []usecase.TypeKeywords
	for _, dt := range set.DocTypes {
		if dt.Type == "" || len(dt.Keywords) == 0 {
			return nil, nil, fmt.Errorf("ruleset doc_type needs type and keywords")
		}
		types = append(types, usecase.TypeKeywords{Type: dt.Type, Keywords: dt.Keywords})
	}

	var rules []usecase.Rule
	for _, rs := range set.Rules {
		rule, err := compileRule(rs)
		if err != nil {
			return nil, nil, err
		}
		rules = append(rules, rule)
	}
	return rules, types, nil
}

func compileRule(rs ruleSpec) (usecase.Rule, error) {
	if rs.Name == "" || rs.Pattern == "" {
		return usecase.Rule{}, fmt.Errorf("ruleset rule needs name and pattern")
	}

	var scope usecase.RuleScope
	switch strings.ToLower(rs.Scope) {
	case "document":
		scope = usecase.ScopeDocument
	case "paragraph", "":
		scope = usecase.ScopeParagraph
	default:
		return usecase.Rule{}, fmt.Errorf("rule %s: unknown scope %q", rs.Name, rs.Scope)
	}

	pattern, err := regexp.Compile("(?i)" + rs.Pattern)
	if err != nil {
		return usecase.Rule{}, fmt.Errorf("rule %s: compile pattern: %w", rs.Name, err)
	}

	evidenceK := rs.EvidenceK
	if evidenceK <= 0 {
		evidenceK = 1
	}

	return usecase.Rule{
		Name:          rs.Name,
		Scope:         scope,
		Pattern:       pattern,
		Negate:        rs.Negate,
		Severity:      domain.NormalizeSeverity(rs.Severity),
		Message:       rs.Message,
		Suggestion:    rs.Suggestion,
		Note:          rs.Note,
		EvidenceQuery: rs.EvidenceQuery,
		EvidenceK:     evidenceK,
	}, nil
}
