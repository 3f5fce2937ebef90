package ports

import (
	"context"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
)

// CompletionClient is the opaque external language model.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// VectorStore is the opaque similarity-search store. Metadata values must be
// scalars (bool/int/float/string); the store owns embedding computation.
type VectorStore interface {
	Add(ctx context.Context, id, text string, metadata map[string]any) error
	Query(ctx context.Context, text string, k int) ([]domain.SimilarityMatch, error)
	FileHashes(ctx context.Context) (map[string]bool, error)
}

// ParagraphSource extracts ordered, indexed, non-empty paragraphs from a
// source document.
type ParagraphSource interface {
	ReadParagraphs(ctx context.Context, path string) ([]domain.Paragraph, error)
}

// CorpusReader extracts page- or paragraph-oriented units from one reference
// corpus file format.
type CorpusReader interface {
	Supports(path string) bool
	ReadUnits(ctx context.Context, path string) ([]domain.SourceUnit, error)
}

// Chunker splits text into overlapping windows for storage.
type Chunker interface {
	Split(text string) []string
}

// DocumentAnnotator writes the annotated artifact: the source document with
// inline advisory markers and a trailing notes section.
type DocumentAnnotator interface {
	Annotate(ctx context.Context, srcPath string, notes []domain.Annotation, outPath string) error
	CopyOriginal(ctx context.Context, srcPath, outPath string) error
}

// ArtifactStore persists output artifacts under the outputs directory.
type ArtifactStore interface {
	Path(name string) string
	WriteFile(ctx context.Context, name string, data []byte) (string, error)
}

// AnalysisHistory records completed analysis runs.
type AnalysisHistory interface {
	RecordRun(ctx context.Context, rec domain.AnalysisRecord) error
}

// AnalysisEvents publishes best-effort notifications about completed runs.
type AnalysisEvents interface {
	PublishDocumentAnalyzed(ctx context.Context, file string, issueCount int) error
}
