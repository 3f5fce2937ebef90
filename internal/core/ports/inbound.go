package ports

import (
	"context"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
)

// DocumentAnalyzer is the inbound contract for single-document analysis.
type DocumentAnalyzer interface {
	AnalyzeFile(ctx context.Context, path string) (*domain.Report, error)
}

// CorpusIngestor is the inbound contract for reference-corpus ingestion.
type CorpusIngestor interface {
	IngestDir(ctx context.Context, dir string) (domain.IngestStats, error)
}
