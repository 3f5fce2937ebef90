package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
)

// Annotator rewrites word/document.xml in place: flagged paragraphs get an
// inline highlighted "[AI NOTE #n: ...]" run and an "AI NOTES" section is
// appended listing every note with its paragraph locator.
type Annotator struct{}

func NewAnnotator() *Annotator {
	return &Annotator{}
}

type placedNote struct {
	id        int
	paraIndex int
	message   string
}

func (a *Annotator) Annotate(_ context.Context, srcPath string, notes []domain.Annotation, outPath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read source document: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open docx archive: %w", err)
	}

	docXML, err := readArchiveEntry(zr, documentEntry)
	if err != nil {
		return err
	}

	annotated, err := annotateDocumentXML(string(docXML), notes)
	if err != nil {
		return err
	}

	return writeArchive(zr, outPath, map[string][]byte{documentEntry: []byte(annotated)})
}

// CopyOriginal persists a verbatim copy of the source document, used when a
// run produced no annotations so the output set stays traceable.
func (a *Annotator) CopyOriginal(_ context.Context, srcPath, outPath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read source document: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write document copy: %w", err)
	}
	return nil
}

func annotateDocumentXML(docXML string, notes []domain.Annotation) (string, error) {
	spans := paragraphSpans(docXML)

	placed := make([]placedNote, 0, len(notes))
	inline := map[int][]placedNote{}
	for _, note := range notes {
		if note.ParagraphIndex < 0 || note.ParagraphIndex >= len(spans) {
			continue
		}
		n := placedNote{id: len(placed) + 1, paraIndex: note.ParagraphIndex, message: note.Message}
		placed = append(placed, n)
		inline[note.ParagraphIndex] = append(inline[note.ParagraphIndex], n)
	}
	if len(placed) == 0 {
		return docXML, nil
	}

	// Insert inline runs back to front so earlier offsets stay valid.
	out := docXML
	for i := len(spans) - 1; i >= 0; i-- {
		paraNotes, ok := inline[i]
		if !ok {
			continue
		}
		closeAt := strings.Index(out[spans[i]:], "</w:p>")
		if closeAt < 0 {
			continue
		}
		var runs strings.Builder
		for _, n := range paraNotes {
			runs.WriteString(inlineNoteRun(n))
		}
		at := spans[i] + closeAt
		out = out[:at] + runs.String() + out[at:]
	}

	return insertNotesSection(out, placed), nil
}

// paragraphSpans returns the byte offset of every <w:p> open tag in document
// order; the slice index is the paragraph index the extractor reports.
func paragraphSpans(docXML string) []int {
	var spans []int
	for i := 0; i+4 < len(docXML); i++ {
		if docXML[i] != '<' || docXML[i+1] != 'w' || docXML[i+2] != ':' || docXML[i+3] != 'p' {
			continue
		}
		switch docXML[i+4] {
		case '>', ' ', '/':
			spans = append(spans, i)
		}
	}
	return spans
}

func inlineNoteRun(n placedNote) string {
	text := fmt.Sprintf(" [AI NOTE #%d: %s]", n.id, n.message)
	return `<w:r><w:rPr><w:highlight w:val="yellow"/></w:rPr>` +
		`<w:t xml:space="preserve">` + escapeXML(text) + `</w:t></w:r>`
}

// insertNotesSection appends the "AI NOTES" listing before the body's section
// properties (or before </w:body> when absent).
func insertNotesSection(docXML string, notes []placedNote) string {
	var b strings.Builder
	b.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
	b.WriteString(`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>AI NOTES</w:t></w:r></w:p>`)
	for _, n := range notes {
		b.WriteString(`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">`)
		b.WriteString(escapeXML(fmt.Sprintf("[AI NOTE #%d] ", n.id)))
		b.WriteString(`</w:t></w:r><w:r><w:t xml:space="preserve">`)
		b.WriteString(escapeXML(fmt.Sprintf("Paragraph index: %d. %s", n.paraIndex, n.message)))
		b.WriteString(`</w:t></w:r></w:p>`)
	}

	at := strings.LastIndex(docXML, "<w:sectPr")
	if at < 0 {
		at = strings.LastIndex(docXML, "</w:body>")
	}
	if at < 0 {
		return docXML + b.String()
	}
	return docXML[:at] + b.String() + docXML[at:]
}

func writeArchive(zr *zip.Reader, outPath string, replace map[string][]byte) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create annotated document: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, entry := range zr.File {
		w, err := zw.Create(entry.Name)
		if err != nil {
			zw.Close()
			return fmt.Errorf("create archive entry %s: %w", entry.Name, err)
		}

		if data, ok := replace[entry.Name]; ok {
			if _, err := w.Write(data); err != nil {
				zw.Close()
				return fmt.Errorf("write archive entry %s: %w", entry.Name, err)
			}
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			zw.Close()
			return fmt.Errorf("open archive entry %s: %w", entry.Name, err)
		}
		_, err = io.Copy(w, rc)
		rc.Close()
		if err != nil {
			zw.Close()
			return fmt.Errorf("copy archive entry %s: %w", entry.Name, err)
		}
	}
	return zw.Close()
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
