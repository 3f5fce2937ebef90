// Package postgres keeps the optional analysis-history ledger.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across analyzer/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id TEXT PRIMARY KEY,
	file_analyzed TEXT NOT NULL,
	doc_type TEXT NOT NULL,
	classification_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	issue_count INTEGER NOT NULL DEFAULT 0,
	annotated_file TEXT,
	report_file TEXT,
	analyzed_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analysis_runs_analyzed_at ON analysis_runs(analyzed_at DESC);
CREATE INDEX IF NOT EXISTS idx_analysis_runs_doc_type ON analysis_runs(doc_type);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *HistoryRepository) RecordRun(ctx context.Context, rec domain.AnalysisRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO analysis_runs (
	id, file_analyzed, doc_type, classification_confidence, issue_count, annotated_file, report_file, analyzed_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		rec.ID, rec.FileAnalyzed, rec.DocType, rec.ClassificationConfidence,
		rec.IssueCount, rec.AnnotatedFile, rec.ReportFile, rec.AnalyzedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrPersistence, "record analysis run", err)
	}
	return nil
}

// RecentRuns lists the newest ledger rows, most recent first.
func (r *HistoryRepository) RecentRuns(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, file_analyzed, doc_type, classification_confidence, issue_count, annotated_file, report_file, analyzed_at
FROM analysis_runs
ORDER BY analyzed_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrPersistence, "list analysis runs", err)
	}
	defer rows.Close()

	var recs []domain.AnalysisRecord
	for rows.Next() {
		var rec domain.AnalysisRecord
		if err := rows.Scan(
			&rec.ID, &rec.FileAnalyzed, &rec.DocType, &rec.ClassificationConfidence,
			&rec.IssueCount, &rec.AnnotatedFile, &rec.ReportFile, &rec.AnalyzedAt,
		); err != nil {
			return nil, domain.WrapError(domain.ErrPersistence, "scan analysis run", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrPersistence, "iterate analysis runs", err)
	}
	return recs, nil
}
