package usecase

import (
	"context"
	"log/slog"
	"math"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
	"github.com/complykit/adgm-corporate-agent/internal/core/ports"
	"github.com/complykit/adgm-corporate-agent/internal/observability/logging"
)

// evidenceDisplayLimit bounds snippet text in findings and annotations.
const evidenceDisplayLimit = 1000

// EvidenceSource is the retrieval contract the rule engine depends on.
// Retrieval is strictly best-effort: implementations never return an error
// and an empty result means "no evidence", not failure.
type EvidenceSource interface {
	Retrieve(ctx context.Context, query string, k int) []domain.EvidenceSnippet
}

// EvidenceRetriever ranks stored corpus chunks against a query and converts
// store distances into normalized similarity scores.
type EvidenceRetriever struct {
	store     ports.VectorStore
	logger    *slog.Logger
	onFailure func()
}

func NewEvidenceRetriever(store ports.VectorStore, logger *slog.Logger) *EvidenceRetriever {
	return &EvidenceRetriever{
		store:  store,
		logger: logging.ForComponent(logger, "retriever"),
	}
}

// OnFailure registers a callback invoked once per failed store query.
func (r *EvidenceRetriever) OnFailure(fn func()) {
	r.onFailure = fn
}

func (r *EvidenceRetriever) Retrieve(ctx context.Context, query string, k int) []domain.EvidenceSnippet {
	if r.store == nil || k <= 0 {
		return nil
	}

	matches, err := r.store.Query(ctx, query, k)
	if err != nil {
		r.logger.Warn("evidence retrieval degraded to empty",
			"query", query,
			"error", domain.WrapError(domain.ErrRetrieval, "query store", err),
		)
		if r.onFailure != nil {
			r.onFailure()
		}
		return nil
	}

	out := make([]domain.EvidenceSnippet, 0, len(matches))
	for _, m := range matches {
		meta := m.Meta
		if meta == nil {
			meta = map[string]any{}
		}
		out = append(out, domain.EvidenceSnippet{
			Text:  truncateForDisplay(m.Text, evidenceDisplayLimit),
			Meta:  meta,
			Score: similarityScore(m.Distance),
		})
	}
	return out
}

// similarityScore converts a distance into clamp(1-distance, 0, 1) rounded to
// 4 decimals. A missing distance yields a nil score.
func similarityScore(distance *float64) *float64 {
	if distance == nil {
		return nil
	}
	score := 1.0 - *distance
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	score = math.Round(score*10000) / 10000
	return &score
}

func truncateForDisplay(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
