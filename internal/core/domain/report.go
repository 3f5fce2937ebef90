package domain

import "time"

// Report is the persisted outcome of analyzing one document. IssuesFound is
// ordered: document-level findings first, then paragraph findings ascending
// by paragraph index, then language-model findings last. AnnotatedFile and
// ReportFile are nil when the corresponding artifact could not be persisted.
type Report struct {
	FileAnalyzed             string         `json:"file_analyzed"`
	DocType                  string         `json:"doc_type"`
	ClassificationConfidence float64        `json:"classification_confidence"`
	NumParagraphs            int            `json:"num_paragraphs"`
	IssuesFound              []IssueFinding `json:"issues_found"`
	AnnotatedFile            *string        `json:"annotated_file"`
	ReportFile               *string        `json:"report_file"`
	AnalyzedAt               string         `json:"analyzed_at"`
}

// AnalysisRecord is one row of the optional analysis-history ledger.
type AnalysisRecord struct {
	ID                       string
	FileAnalyzed             string
	DocType                  string
	ClassificationConfidence float64
	IssueCount               int
	AnnotatedFile            *string
	ReportFile               *string
	AnalyzedAt               time.Time
}
