package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*HistoryRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &HistoryRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestRecordRunInsertsLedgerRow(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	annotated := "/out/annotated_contract.docx"
	rec := domain.AnalysisRecord{
		ID:                       "run-1",
		FileAnalyzed:             "contract.docx",
		DocType:                  "Articles of Association",
		ClassificationConfidence: 0.8,
		IssueCount:               3,
		AnnotatedFile:            &annotated,
		AnalyzedAt:               time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO analysis_runs").
		WithArgs(rec.ID, rec.FileAnalyzed, rec.DocType, rec.ClassificationConfidence,
			rec.IssueCount, rec.AnnotatedFile, rec.ReportFile, rec.AnalyzedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.RecordRun(context.Background(), rec); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordRunWrapsPersistenceErrors(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO analysis_runs").
		WillReturnError(errors.New("connection reset"))

	err := repo.RecordRun(context.Background(), domain.AnalysisRecord{ID: "run-2"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecentRunsScansRows(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	analyzedAt := time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "file_analyzed", "doc_type", "classification_confidence",
		"issue_count", "annotated_file", "report_file", "analyzed_at",
	}).AddRow("run-9", "moa.docx", "Memorandum of Association", 0.35, 1, nil, nil, analyzedAt)

	mock.ExpectQuery("SELECT id, file_analyzed, doc_type").
		WithArgs(5).
		WillReturnRows(rows)

	recs, err := repo.RecentRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].DocType != "Memorandum of Association" || recs[0].AnnotatedFile != nil {
		t.Fatalf("unexpected record: %+v", recs[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEnsureSchemaAcquiresAdvisoryLock(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS analysis_runs").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
