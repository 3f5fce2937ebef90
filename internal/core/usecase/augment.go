package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
	"github.com/complykit/adgm-corporate-agent/internal/core/ports"
	"github.com/complykit/adgm-corporate-agent/internal/infrastructure/resilience"
	"github.com/complykit/adgm-corporate-agent/internal/observability/logging"
)

// defaultExcerptLimit bounds the document text sent to the language model.
const defaultExcerptLimit = 20000

// AugmentedIssue is one validated issue surfaced by the language model.
type AugmentedIssue struct {
	Section    string
	Issue      string
	Severity   domain.Severity
	Suggestion string
}

// Augmenter asks the language model for a second opinion on the document and
// parses a structured issue list out of its free-text response. Augmentation
// is best-effort: after retries are exhausted it yields an empty list, never
// an error.
type Augmenter struct {
	llm          ports.CompletionClient
	exec         *resilience.Executor
	logger       *slog.Logger
	excerptLimit int
}

func NewAugmenter(llm ports.CompletionClient, exec *resilience.Executor, logger *slog.Logger) *Augmenter {
	return &Augmenter{
		llm:          llm,
		exec:         exec,
		logger:       logging.ForComponent(logger, "augmenter"),
		excerptLimit: defaultExcerptLimit,
	}
}

// Issues returns the validated issue list for the given document text and
// classified type. The same prompt is re-issued on every retry attempt.
func (a *Augmenter) Issues(ctx context.Context, docText, docType string) []AugmentedIssue {
	if a.llm == nil {
		return nil
	}

	excerpt := docText
	if runes := []rune(excerpt); len(runes) > a.excerptLimit {
		excerpt = string(runes[:a.excerptLimit])
	}
	prompt := buildAugmentPrompt(excerpt, docType)

	var issues []AugmentedIssue
	err := a.exec.Execute(ctx, "llm_augment", func(callCtx context.Context) error {
		response, err := a.llm.Complete(callCtx, prompt, 0)
		if err != nil {
			return fmt.Errorf("llm completion: %w", err)
		}
		if strings.TrimSpace(response) == "" {
			issues = nil
			return nil
		}
		parsed, err := parseIssueList(response)
		if err != nil {
			return err
		}
		issues = parsed
		return nil
	}, augmentErrorClassifier)

	if err != nil {
		a.logger.Warn("augmentation degraded to empty issue list",
			"error", domain.WrapError(domain.ErrAugmentation, "analyze with llm", err),
		)
		return nil
	}
	return issues
}

func augmentErrorClassifier(err error) resilience.ErrorClassification {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
}

func buildAugmentPrompt(excerpt, docType string) string {
	return fmt.Sprintf(`You are an expert in ADGM corporate compliance.
Given the following document type: %s
Analyze the text below for possible compliance issues, ambiguities, or missing required clauses.

Document Text:
"""%s"""

Return the issues as a JSON array, each issue containing:
- issue (string)
- severity (High/Medium/Low)
- suggestion (string)

Important:
Return ONLY a JSON array. Do not include any explanatory text or headers.`, docType, excerpt)
}

// parseIssueList parses the model response: a direct JSON parse first, then
// the first balanced array literal in the raw text, then the first balanced
// object literal. Only object entries carrying an "issue" key are kept. A
// payload that parses but is not an array carries no issue list and yields an
// empty result rather than an error.
func parseIssueList(raw string) ([]AugmentedIssue, error) {
	payload, err := extractJSONPayload(raw)
	if err != nil {
		return nil, err
	}

	var entries []any
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		// A lone object, string, or number.
		return nil, nil
	}

	out := make([]AugmentedIssue, 0, len(entries))
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		issue, ok := entry["issue"].(string)
		if !ok || issue == "" {
			continue
		}
		severity, _ := entry["severity"].(string)
		suggestion, _ := entry["suggestion"].(string)
		section, _ := entry["section"].(string)
		out = append(out, AugmentedIssue{
			Section:    section,
			Issue:      issue,
			Severity:   domain.NormalizeSeverity(severity),
			Suggestion: suggestion,
		})
	}
	return out, nil
}

func extractJSONPayload(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}
	if s := firstBalanced(raw, '[', ']'); s != "" && json.Valid([]byte(s)) {
		return s, nil
	}
	if s := firstBalanced(raw, '{', '}'); s != "" && json.Valid([]byte(s)) {
		return s, nil
	}
	return "", errors.New("no json payload found in llm response")
}

// firstBalanced returns the first balanced open..close literal in raw,
// skipping over string literals and their escapes.
func firstBalanced(raw string, open, close byte) string {
	start := strings.IndexByte(raw, open)
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return ""
}
