package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
	"github.com/complykit/adgm-corporate-agent/internal/core/ports"
	"github.com/complykit/adgm-corporate-agent/internal/observability/logging"
)

const (
	sectionLLMAnalysis = "LLM Analysis"
	timestampLayout    = "20060102T150405Z"
	safeNameMaxLen     = 120
)

// AnalyzeDocumentUseCase runs the full pipeline for one document: extraction,
// classification, rule evaluation with evidence, optional language-model
// augmentation, annotation, and artifact persistence. Only an unreadable
// source document is fatal; every other failure degrades the report.
type AnalyzeDocumentUseCase struct {
	source     ports.ParagraphSource
	classifier *Classifier
	engine     *RuleEngine
	augmenter  *Augmenter
	annotator  ports.DocumentAnnotator
	artifacts  ports.ArtifactStore
	history    ports.AnalysisHistory
	events     ports.AnalysisEvents
	logger     *slog.Logger
	now        func() time.Time
}

func NewAnalyzeDocumentUseCase(
	source ports.ParagraphSource,
	classifier *Classifier,
	engine *RuleEngine,
	augmenter *Augmenter,
	annotator ports.DocumentAnnotator,
	artifacts ports.ArtifactStore,
	logger *slog.Logger,
) *AnalyzeDocumentUseCase {
	return &AnalyzeDocumentUseCase{
		source:     source,
		classifier: classifier,
		engine:     engine,
		augmenter:  augmenter,
		annotator:  annotator,
		artifacts:  artifacts,
		logger:     logging.ForComponent(logger, "analyzer"),
		now:        time.Now,
	}
}

// WithHistory attaches the optional analysis-run ledger.
func (uc *AnalyzeDocumentUseCase) WithHistory(history ports.AnalysisHistory) *AnalyzeDocumentUseCase {
	uc.history = history
	return uc
}

// WithEvents attaches the optional best-effort event publisher.
func (uc *AnalyzeDocumentUseCase) WithEvents(events ports.AnalysisEvents) *AnalyzeDocumentUseCase {
	uc.events = events
	return uc
}

func (uc *AnalyzeDocumentUseCase) AnalyzeFile(ctx context.Context, path string) (*domain.Report, error) {
	basename := filepath.Base(path)
	safeName := sanitizeBaseName(basename)
	analyzedAt := uc.now().UTC()
	timestamp := analyzedAt.Format(timestampLayout)

	paras, err := uc.source.ReadParagraphs(ctx, path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrDocumentRead, "read paragraphs", err)
	}

	texts := make([]string, 0, len(paras))
	for _, p := range paras {
		texts = append(texts, p.Text)
	}
	wholeText := strings.Join(texts, "\n")

	classification := uc.classifier.Classify(ctx, wholeText)

	findings, notes := uc.engine.Evaluate(ctx, basename, classification.DocType, paras, wholeText)
	findings = append(findings, uc.augmentedFindings(ctx, basename, classification.DocType, wholeText)...)

	report := &domain.Report{
		FileAnalyzed:             basename,
		DocType:                  classification.DocType,
		ClassificationConfidence: classification.Confidence,
		NumParagraphs:            len(paras),
		IssuesFound:              findings,
		AnalyzedAt:               timestamp,
	}

	uc.persistAnnotated(ctx, path, notes, safeName, report)
	uc.persistReport(ctx, safeName, timestamp, report)
	uc.recordRun(ctx, report, analyzedAt)

	return report, nil
}

func (uc *AnalyzeDocumentUseCase) augmentedFindings(ctx context.Context, document, docType, wholeText string) []domain.IssueFinding {
	if uc.augmenter == nil {
		return nil
	}

	issues := uc.augmenter.Issues(ctx, wholeText, docType)
	findings := make([]domain.IssueFinding, 0, len(issues))
	for _, issue := range issues {
		section := issue.Section
		if section == "" {
			section = sectionLLMAnalysis
		}
		findings = append(findings, domain.IssueFinding{
			Document:   document,
			DocType:    docType,
			Section:    section,
			Issue:      issue.Issue,
			Severity:   issue.Severity,
			Suggestion: issue.Suggestion,
			Evidence:   []domain.EvidenceSnippet{},
			Origin:     domain.OriginLanguageModel,
		})
	}
	return findings
}

// persistAnnotated writes the annotated artifact, or a verbatim copy of the
// source when there is nothing to annotate. Failure leaves a nil reference.
func (uc *AnalyzeDocumentUseCase) persistAnnotated(
	ctx context.Context,
	srcPath string,
	notes []domain.Annotation,
	safeName string,
	report *domain.Report,
) {
	outPath := uc.artifacts.Path("annotated_" + safeName + ".docx")

	var err error
	if len(notes) > 0 {
		err = uc.annotator.Annotate(ctx, srcPath, notes, outPath)
	} else {
		err = uc.annotator.CopyOriginal(ctx, srcPath, outPath)
	}
	if err != nil {
		uc.logger.Error("annotated artifact not persisted",
			"file", report.FileAnalyzed,
			"error", domain.WrapError(domain.ErrAnnotation, "write annotated document", err),
		)
		return
	}
	report.AnnotatedFile = &outPath
}

// persistReport serializes the report JSON. The persisted payload carries a
// null report_file reference; the in-memory report is updated after the
// write succeeds.
func (uc *AnalyzeDocumentUseCase) persistReport(ctx context.Context, safeName, timestamp string, report *domain.Report) {
	name := fmt.Sprintf("report_%s_%s.json", safeName, timestamp)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		uc.logger.Error("report artifact not persisted",
			"file", report.FileAnalyzed,
			"error", domain.WrapError(domain.ErrPersistence, "marshal report", err),
		)
		return
	}

	path, err := uc.artifacts.WriteFile(ctx, name, data)
	if err != nil {
		uc.logger.Error("report artifact not persisted",
			"file", report.FileAnalyzed,
			"error", domain.WrapError(domain.ErrPersistence, "write report", err),
		)
		return
	}
	report.ReportFile = &path
}

func (uc *AnalyzeDocumentUseCase) recordRun(ctx context.Context, report *domain.Report, analyzedAt time.Time) {
	if uc.history != nil {
		rec := domain.AnalysisRecord{
			ID:                       uuid.NewString(),
			FileAnalyzed:             report.FileAnalyzed,
			DocType:                  report.DocType,
			ClassificationConfidence: report.ClassificationConfidence,
			IssueCount:               len(report.IssuesFound),
			AnnotatedFile:            report.AnnotatedFile,
			ReportFile:               report.ReportFile,
			AnalyzedAt:               analyzedAt,
		}
		if err := uc.history.RecordRun(ctx, rec); err != nil {
			uc.logger.Warn("analysis history record failed", "file", report.FileAnalyzed, "error", err)
		}
	}

	if uc.events != nil {
		if err := uc.events.PublishDocumentAnalyzed(ctx, report.FileAnalyzed, len(report.IssuesFound)); err != nil {
			uc.logger.Warn("analysis event publish failed", "file", report.FileAnalyzed, "error", err)
		}
	}
}

// sanitizeBaseName strips the extension and anything outside [A-Za-z0-9_.-],
// capping length so artifact names stay filesystem-safe and collision-free
// once the timestamp is appended.
func sanitizeBaseName(basename string) string {
	name := strings.TrimSuffix(basename, filepath.Ext(basename))
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if len(safe) > safeNameMaxLen {
		safe = safe[:safeNameMaxLen]
	}
	if safe == "" {
		return "document"
	}
	return safe
}
