package domain

// Paragraph is a non-empty text unit of a source document. Index is the
// paragraph's position in the original document, so extracted sequences may
// contain gaps where empty paragraphs were dropped.
type Paragraph struct {
	Index int
	Text  string
}

// Classification is the document-type verdict of the classifier.
// Confidence is always within [0, 1].
type Classification struct {
	DocType    string
	Confidence float64
}

const DocTypeUnknown = "Unknown"
