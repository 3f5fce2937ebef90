package domain

// SourceUnit is one extraction unit of a reference corpus file: a PDF page or
// a DOCX paragraph. ParaIndex is nil for page-oriented sources.
type SourceUnit struct {
	Page      int
	ParaIndex *int
	Text      string
}

// CorpusChunk is an append-only windowed fragment of a reference source,
// stored in the similarity-search store. Chunks are never mutated; a source
// file whose hash is already present in the store is not re-chunked.
type CorpusChunk struct {
	ID           string
	Text         string
	SourceFile   string
	FileHash     string
	Page         int
	ParaIndex    *int
	SegmentIndex int
	ChunkIndex   int
	CharCount    int
}

// Metadata flattens chunk provenance for storage. Nil-valued fields are
// omitted entirely so that the store only ever sees scalar values.
func (c CorpusChunk) Metadata() map[string]any {
	meta := map[string]any{
		"source_file":   c.SourceFile,
		"page":          c.Page,
		"segment_index": c.SegmentIndex,
		"chunk_index":   c.ChunkIndex,
		"char_count":    c.CharCount,
		"file_hash":     c.FileHash,
	}
	if c.ParaIndex != nil {
		meta["para_index"] = *c.ParaIndex
	}
	return meta
}

// SimilarityMatch is a raw ranked result from the similarity-search store.
// Distance is nil when the store returned no usable distance for the match.
type SimilarityMatch struct {
	Text     string
	Meta     map[string]any
	Distance *float64
}

// IngestStats summarizes one corpus ingestion run.
type IngestStats struct {
	FilesSeen     int
	FilesSkipped  int
	FilesFailed   int
	ChunksAdded   int
	ChunkFailures int
}
