// Package docx reads and rewrites Office Open XML word documents using the
// standard archive/zip and encoding/xml packages.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
)

const documentEntry = "word/document.xml"

var errNoDocumentXML = errors.New("archive has no " + documentEntry)

// Reader extracts ordered paragraphs from a .docx file.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// ReadParagraphs returns the non-empty paragraphs of the document with their
// original paragraph indices. Indices are positions among all <w:p> elements,
// so the returned sequence may contain gaps where empty paragraphs were
// skipped.
func (r *Reader) ReadParagraphs(_ context.Context, path string) ([]domain.Paragraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}

	docXML, err := readArchiveEntry(zr, documentEntry)
	if err != nil {
		return nil, err
	}

	texts, err := paragraphTexts(bytes.NewReader(docXML))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", documentEntry, err)
	}

	paras := make([]domain.Paragraph, 0, len(texts))
	for i, text := range texts {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		paras = append(paras, domain.Paragraph{Index: i, Text: trimmed})
	}
	return paras, nil
}

// paragraphTexts walks the document XML and collects the text of every
// top-level <w:p> element, empty ones included so indices stay stable.
func paragraphTexts(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var texts []string
	var current strings.Builder
	depth := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				depth++
				if depth == 1 {
					current.Reset()
				}
			case "t", "instrText":
				if depth > 0 {
					var text string
					if err := dec.DecodeElement(&text, &t); err == nil {
						current.WriteString(text)
					}
				}
			case "tab":
				if depth > 0 {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if depth > 0 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Local == "p" && depth > 0 {
				depth--
				if depth == 0 {
					texts = append(texts, current.String())
				}
			}
		}
	}
	return texts, nil
}

func readArchiveEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if !strings.EqualFold(f.Name, name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, errNoDocumentXML
}
