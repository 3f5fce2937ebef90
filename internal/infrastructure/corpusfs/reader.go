// Package corpusfs turns reference corpus files into ordered source units for
// chunking and ingestion.
package corpusfs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
	"github.com/complykit/adgm-corporate-agent/internal/infrastructure/docx"
)

// PDFReader extracts per-page text from .pdf files.
type PDFReader struct{}

func NewPDFReader() *PDFReader {
	return &PDFReader{}
}

func (r *PDFReader) Supports(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

func (r *PDFReader) ReadUnits(_ context.Context, path string) ([]domain.SourceUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var units []domain.SourceUnit
	for pageNum := 1; pageNum <= doc.NumPage(); pageNum++ {
		page := doc.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single malformed page must not sink the whole file.
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		units = append(units, domain.SourceUnit{Page: pageNum, Text: text})
	}
	return units, nil
}

// DocxReader extracts paragraph units from .docx files, reusing the document
// paragraph extractor so corpus and analysis see the same text.
type DocxReader struct {
	inner *docx.Reader
}

func NewDocxReader() *DocxReader {
	return &DocxReader{inner: docx.NewReader()}
}

func (r *DocxReader) Supports(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".docx")
}

func (r *DocxReader) ReadUnits(ctx context.Context, path string) ([]domain.SourceUnit, error) {
	paras, err := r.inner.ReadParagraphs(ctx, path)
	if err != nil {
		return nil, err
	}

	units := make([]domain.SourceUnit, 0, len(paras))
	for _, para := range paras {
		idx := para.Index
		units = append(units, domain.SourceUnit{Page: 1, ParaIndex: &idx, Text: para.Text})
	}
	return units, nil
}
