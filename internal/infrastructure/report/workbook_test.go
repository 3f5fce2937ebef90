package report

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
)

func TestWriteSummaryWorkbook(t *testing.T) {
	annotated := "/out/annotated_contract.docx"
	reports := []*domain.Report{
		{
			FileAnalyzed:             "contract.docx",
			DocType:                  "Articles of Association",
			ClassificationConfidence: 0.8,
			NumParagraphs:            12,
			IssuesFound:              make([]domain.IssueFinding, 3),
			AnnotatedFile:            &annotated,
			AnalyzedAt:               "20260830T120000Z",
		},
		{
			FileAnalyzed: "empty.docx",
			DocType:      "Unknown",
			AnalyzedAt:   "20260830T120500Z",
		},
	}

	path := filepath.Join(t.TempDir(), "summary.xlsx")
	if err := WriteSummaryWorkbook(path, reports); err != nil {
		t.Fatalf("WriteSummaryWorkbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(summarySheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "File" || rows[0][4] != "Issues" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}
	if rows[1][0] != "contract.docx" || rows[1][4] != "3" {
		t.Fatalf("unexpected first data row: %v", rows[1])
	}
	if rows[2][1] != "Unknown" {
		t.Fatalf("unexpected second data row: %v", rows[2])
	}
}
