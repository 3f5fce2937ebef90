package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
)

type fakeVectorStore struct {
	matches  []domain.SimilarityMatch
	queryErr error
	addErr   error
	hashes   map[string]bool
	hashErr  error

	added   []addedChunk
	queries []string
}

type addedChunk struct {
	id   string
	text string
	meta map[string]any
}

func (f *fakeVectorStore) Add(_ context.Context, id, text string, metadata map[string]any) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, addedChunk{id: id, text: text, meta: metadata})
	return nil
}

func (f *fakeVectorStore) Query(_ context.Context, text string, _ int) ([]domain.SimilarityMatch, error) {
	f.queries = append(f.queries, text)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.matches, nil
}

func (f *fakeVectorStore) FileHashes(_ context.Context) (map[string]bool, error) {
	if f.hashErr != nil {
		return nil, f.hashErr
	}
	return f.hashes, nil
}

func floatPtr(v float64) *float64 { return &v }

func TestRetrieveConvertsDistancesToScores(t *testing.T) {
	store := &fakeVectorStore{matches: []domain.SimilarityMatch{
		{Text: "snippet a", Meta: map[string]any{"source_file": "a.pdf"}, Distance: floatPtr(0.25)},
		{Text: "snippet b", Distance: floatPtr(1.8)},
		{Text: "snippet c"},
	}}
	r := NewEvidenceRetriever(store, nil)

	got := r.Retrieve(context.Background(), "jurisdiction", 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 snippets, got %d", len(got))
	}

	if got[0].Score == nil || *got[0].Score != 0.75 {
		t.Errorf("score[0] = %v, want 0.75", got[0].Score)
	}
	// Scores clamp into [0, 1].
	if got[1].Score == nil || *got[1].Score != 0 {
		t.Errorf("score[1] = %v, want 0", got[1].Score)
	}
	if got[2].Score != nil {
		t.Errorf("missing distance must yield nil score, got %v", got[2].Score)
	}
	if got[1].Meta == nil || got[2].Meta == nil {
		t.Error("metadata must never be nil")
	}
}

func TestRetrieveTruncatesLongSnippets(t *testing.T) {
	store := &fakeVectorStore{matches: []domain.SimilarityMatch{
		{Text: strings.Repeat("x", 1500)},
	}}
	r := NewEvidenceRetriever(store, nil)

	got := r.Retrieve(context.Background(), "q", 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 snippet, got %d", len(got))
	}
	if len([]rune(got[0].Text)) != 1003 || !strings.HasSuffix(got[0].Text, "...") {
		t.Fatalf("snippet not truncated to limit+ellipsis: len=%d", len(got[0].Text))
	}
}

func TestRetrieveDegradesToEmptyOnStoreFailure(t *testing.T) {
	store := &fakeVectorStore{queryErr: errors.New("store down")}
	r := NewEvidenceRetriever(store, nil)

	failures := 0
	r.OnFailure(func() { failures++ })

	got := r.Retrieve(context.Background(), "q", 2)
	if got != nil {
		t.Fatalf("expected nil on failure, got %+v", got)
	}
	if failures != 1 {
		t.Fatalf("failure callback invoked %d times, want 1", failures)
	}
}

func TestRetrieveSkipsNonPositiveK(t *testing.T) {
	store := &fakeVectorStore{}
	r := NewEvidenceRetriever(store, nil)

	if got := r.Retrieve(context.Background(), "q", 0); got != nil {
		t.Fatalf("expected nil for k=0, got %+v", got)
	}
	if len(store.queries) != 0 {
		t.Fatal("store must not be queried for k=0")
	}
}
