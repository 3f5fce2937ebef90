// Package report renders batch-level summaries of analysis runs.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
)

const summarySheet = "Analysis Summary"

var summaryHeader = []string{
	"File", "Document Type", "Confidence", "Paragraphs", "Issues",
	"Annotated File", "Report File", "Analyzed At",
}

// WriteSummaryWorkbook renders one row per analyzed document into an xlsx
// workbook at path.
func WriteSummaryWorkbook(path string, reports []*domain.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(summarySheet)
	if err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	if err := writeRow(f, 1, headerCells()); err != nil {
		return err
	}
	for i, rep := range reports {
		if err := writeRow(f, i+2, reportCells(rep)); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save summary workbook: %w", err)
	}
	return nil
}

func headerCells() []any {
	cells := make([]any, len(summaryHeader))
	for i, h := range summaryHeader {
		cells[i] = h
	}
	return cells
}

func reportCells(rep *domain.Report) []any {
	annotated := ""
	if rep.AnnotatedFile != nil {
		annotated = *rep.AnnotatedFile
	}
	reportFile := ""
	if rep.ReportFile != nil {
		reportFile = *rep.ReportFile
	}
	return []any{
		rep.FileAnalyzed,
		rep.DocType,
		rep.ClassificationConfidence,
		rep.NumParagraphs,
		len(rep.IssuesFound),
		annotated,
		reportFile,
		rep.AnalyzedAt,
	}
}

func writeRow(f *excelize.File, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("resolve row %d: %w", row, err)
	}
	if err := f.SetSheetRow(summarySheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
