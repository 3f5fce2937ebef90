package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
	"github.com/complykit/adgm-corporate-agent/internal/core/ports"
	"github.com/complykit/adgm-corporate-agent/internal/observability/logging"
)

// TypeKeywords associates one candidate document type with its keyword
// phrases. The classifier scores types in slice order, so the first type
// reaching the maximum count wins ties.
type TypeKeywords struct {
	Type     string
	Keywords []string
}

// DefaultTypeKeywords covers the ADGM corporate document set.
func DefaultTypeKeywords() []TypeKeywords {
	return []TypeKeywords{
		{Type: "Articles of Association", Keywords: []string{"articles of association", "aoa", "company articles"}},
		{Type: "Memorandum of Association", Keywords: []string{"memorandum of association", "moa", "memorandum"}},
		{Type: "UBO Declaration Form", Keywords: []string{"ultimate beneficial owner", "ubo declaration", "ubo form"}},
		{Type: "Register of Members and Directors", Keywords: []string{"register of members", "register of directors"}},
		{Type: "Board Resolution", Keywords: []string{"board resolution", "resolution of the board", "written resolution"}},
		{Type: "Employment Contract", Keywords: []string{"employment contract", "employee agreement", "terms of employment"}},
	}
}

const (
	fallbackSuccessConfidence = 0.8
	fallbackFailureConfidence = 0.35
	defaultClassifierSnippet  = 4000
)

// Classifier assigns a document type by keyword scoring, optionally falling
// back to the language model when no keyword matches. Classification never
// fails hard: every degraded path yields Unknown with a fixed confidence.
type Classifier struct {
	types        []TypeKeywords
	llm          ports.CompletionClient
	useFallback  bool
	snippetLimit int
	logger       *slog.Logger
}

func NewClassifier(types []TypeKeywords, llm ports.CompletionClient, useFallback bool, logger *slog.Logger) *Classifier {
	if len(types) == 0 {
		types = DefaultTypeKeywords()
	}
	return &Classifier{
		types:        types,
		llm:          llm,
		useFallback:  useFallback,
		snippetLimit: defaultClassifierSnippet,
		logger:       logging.ForComponent(logger, "classifier"),
	}
}

func (c *Classifier) Classify(ctx context.Context, text string) domain.Classification {
	if strings.TrimSpace(text) == "" {
		return domain.Classification{DocType: domain.DocTypeUnknown, Confidence: 0.0}
	}

	lower := strings.ToLower(text)

	bestType := ""
	bestCount := 0
	bestTotal := 1
	for _, tk := range c.types {
		count := 0
		for _, kw := range tk.Keywords {
			if strings.Contains(lower, kw) {
				count++
			}
		}
		if count > bestCount {
			bestType = tk.Type
			bestCount = count
			bestTotal = len(tk.Keywords)
		}
	}

	if bestCount > 0 {
		confidence := float64(bestCount) / float64(bestTotal)
		if confidence > 1.0 {
			confidence = 1.0
		}
		confidence = math.Round(confidence*100) / 100
		c.logger.Info("keyword classification", "doc_type", bestType, "confidence", confidence)
		return domain.Classification{DocType: bestType, Confidence: confidence}
	}

	if !c.useFallback || c.llm == nil {
		return domain.Classification{DocType: domain.DocTypeUnknown, Confidence: 0.0}
	}
	return c.classifyWithFallback(ctx, text)
}

func (c *Classifier) classifyWithFallback(ctx context.Context, text string) domain.Classification {
	response, err := c.llm.Complete(ctx, c.fallbackPrompt(text), 0)
	if err != nil {
		c.logger.Warn("classification fallback degraded to Unknown",
			"error", domain.WrapError(domain.ErrClassification, "llm fallback", err),
		)
		return domain.Classification{DocType: domain.DocTypeUnknown, Confidence: fallbackFailureConfidence}
	}

	lowerResp := strings.ToLower(response)
	for _, tk := range c.types {
		if strings.Contains(lowerResp, strings.ToLower(tk.Type)) {
			c.logger.Info("fallback classification", "doc_type", tk.Type, "confidence", fallbackSuccessConfidence)
			return domain.Classification{DocType: tk.Type, Confidence: fallbackSuccessConfidence}
		}
	}
	return domain.Classification{DocType: domain.DocTypeUnknown, Confidence: fallbackFailureConfidence}
}

func (c *Classifier) fallbackPrompt(text string) string {
	snippet := text
	if runes := []rune(snippet); len(runes) > c.snippetLimit {
		snippet = string(runes[:c.snippetLimit])
	}

	names := make([]string, 0, len(c.types))
	for _, tk := range c.types {
		names = append(names, tk.Type)
	}

	return fmt.Sprintf(`You are an ADGM compliance assistant. Classify the following document into one of these categories:
%s.
Return ONLY the single category name (exactly), or 'Unknown'.

Document content:
%s`, strings.Join(names, ", "), snippet)
}
