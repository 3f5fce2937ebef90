package chunking

import "strings"

// Splitter emits overlapping sliding windows over text. Each window is
// text[start : start+ChunkSize] stripped of surrounding whitespace; the next
// window starts Overlap characters before the previous end. Emission stops
// when the window start no longer advances, so the final fragment may be
// shorter than ChunkSize.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1200
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var out []string
	start := 0
	for start < len(runes) {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			out = append(out, chunk)
		}

		next := end - s.Overlap
		if next < 0 {
			next = 0
		}
		if next <= start {
			break
		}
		start = next
	}
	return out
}
