package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
	"github.com/complykit/adgm-corporate-agent/internal/infrastructure/resilience"
)

func newTestExecutor() *resilience.Executor {
	cfg := resilience.DefaultConfig()
	cfg.BreakerEnabled = false
	cfg.Sleep = func(context.Context, time.Duration) error { return nil }
	return resilience.NewExecutor(cfg)
}

type scriptedCompletion struct {
	responses []string
	errs      []error
	calls     int
}

func (s *scriptedCompletion) Complete(_ context.Context, _ string, _ float64) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", errors.New("script exhausted")
}

func TestIssuesParsesCleanJSONArray(t *testing.T) {
	llm := &scriptedCompletion{responses: []string{
		`[{"issue":"Missing quorum clause","severity":"High","suggestion":"Add quorum requirements."},
		  {"issue":"No notice period","severity":"medium","suggestion":"Define notice period."}]`,
	}}
	a := NewAugmenter(llm, newTestExecutor(), nil)

	issues := a.Issues(context.Background(), "document text", "Board Resolution")
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}
	if issues[0].Issue != "Missing quorum clause" || issues[0].Severity != domain.SeverityHigh {
		t.Errorf("unexpected first issue: %+v", issues[0])
	}
	if issues[1].Severity != domain.SeverityMedium {
		t.Errorf("severity must normalize, got %s", issues[1].Severity)
	}
}

func TestIssuesExtractsArrayFromProse(t *testing.T) {
	llm := &scriptedCompletion{responses: []string{
		"Here are the issues I found:\n" +
			`[{"issue":"Ambiguous term \"may\"","severity":"Low"}]` +
			"\nLet me know if you need more detail.",
	}}
	a := NewAugmenter(llm, newTestExecutor(), nil)

	issues := a.Issues(context.Background(), "text", "Unknown")
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if !strings.Contains(issues[0].Issue, `"may"`) {
		t.Errorf("escaped quotes must survive extraction: %q", issues[0].Issue)
	}
}

func TestIssuesDropsEntriesWithoutIssueKey(t *testing.T) {
	llm := &scriptedCompletion{responses: []string{
		`[{"issue":"Real issue","severity":"High"}, {"severity":"High"}, "loose string", 42]`,
	}}
	a := NewAugmenter(llm, newTestExecutor(), nil)

	issues := a.Issues(context.Background(), "text", "Unknown")
	if len(issues) != 1 || issues[0].Issue != "Real issue" {
		t.Fatalf("expected only the dict entry with an issue key, got %+v", issues)
	}
}

func TestIssuesLoneObjectYieldsEmptyList(t *testing.T) {
	llm := &scriptedCompletion{responses: []string{`{"issue":"not a list"}`}}
	a := NewAugmenter(llm, newTestExecutor(), nil)

	issues := a.Issues(context.Background(), "text", "Unknown")
	if issues != nil {
		t.Fatalf("lone object must yield nil, got %+v", issues)
	}
	if llm.calls != 1 {
		t.Fatalf("lone object is a success, not a retry: %d calls", llm.calls)
	}
}

func TestIssuesEmptyResponseIsSuccess(t *testing.T) {
	llm := &scriptedCompletion{responses: []string{"   "}}
	a := NewAugmenter(llm, newTestExecutor(), nil)

	if issues := a.Issues(context.Background(), "text", "Unknown"); issues != nil {
		t.Fatalf("expected nil for empty response, got %+v", issues)
	}
	if llm.calls != 1 {
		t.Fatalf("empty response must not retry: %d calls", llm.calls)
	}
}

func TestIssuesRetriesTransportErrors(t *testing.T) {
	llm := &scriptedCompletion{
		errs:      []error{errors.New("timeout"), nil},
		responses: []string{"", `[{"issue":"Recovered","severity":"Low"}]`},
	}
	a := NewAugmenter(llm, newTestExecutor(), nil)

	issues := a.Issues(context.Background(), "text", "Unknown")
	if len(issues) != 1 || issues[0].Issue != "Recovered" {
		t.Fatalf("expected recovery after retry, got %+v", issues)
	}
	if llm.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", llm.calls)
	}
}

func TestIssuesDegradesToEmptyAfterExhaustedRetries(t *testing.T) {
	llm := &scriptedCompletion{errs: []error{
		errors.New("down"), errors.New("down"), errors.New("down"),
	}}
	a := NewAugmenter(llm, newTestExecutor(), nil)

	if issues := a.Issues(context.Background(), "text", "Unknown"); issues != nil {
		t.Fatalf("expected nil after exhausted retries, got %+v", issues)
	}
	if llm.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", llm.calls)
	}
}

func TestIssuesRetriesMalformedJSON(t *testing.T) {
	llm := &scriptedCompletion{responses: []string{
		"no json here at all",
		`[{"issue":"Second try","severity":"High"}]`,
	}}
	a := NewAugmenter(llm, newTestExecutor(), nil)

	issues := a.Issues(context.Background(), "text", "Unknown")
	if len(issues) != 1 || issues[0].Issue != "Second try" {
		t.Fatalf("malformed payload must retry, got %+v", issues)
	}
}

func TestIssuesScalarPayloadYieldsEmptyList(t *testing.T) {
	for _, resp := range []string{`"no issues"`, `42`, `true`} {
		llm := &scriptedCompletion{responses: []string{resp}}
		a := NewAugmenter(llm, newTestExecutor(), nil)

		if issues := a.Issues(context.Background(), "text", "Unknown"); issues != nil {
			t.Fatalf("scalar %s must yield nil, got %+v", resp, issues)
		}
		if llm.calls != 1 {
			t.Fatalf("scalar %s is a success, not a retry: %d calls", resp, llm.calls)
		}
	}
}

func TestIssuesTruncatesExcerpt(t *testing.T) {
	var seen string
	llm := &promptCapture{callback: func(prompt string) { seen = prompt }}
	a := NewAugmenter(llm, newTestExecutor(), nil)

	a.Issues(context.Background(), strings.Repeat("y", 30000), "Unknown")
	if len(seen) == 0 || len(seen) > 21000 {
		t.Fatalf("prompt excerpt not truncated: len=%d", len(seen))
	}
}

func TestIssuesExcerptCutsOnRuneBoundary(t *testing.T) {
	var seen string
	llm := &promptCapture{callback: func(prompt string) { seen = prompt }}
	a := NewAugmenter(llm, newTestExecutor(), nil)

	a.Issues(context.Background(), strings.Repeat("é", 25000), "Unknown")
	if !utf8.ValidString(seen) {
		t.Fatal("prompt contains invalid UTF-8 after excerpt truncation")
	}
	if got := strings.Count(seen, "é"); got != 20000 {
		t.Fatalf("expected excerpt of 20000 characters, got %d", got)
	}
}

type promptCapture struct {
	callback func(string)
}

func (p *promptCapture) Complete(_ context.Context, prompt string, _ float64) (string, error) {
	p.callback(prompt)
	return "[]", nil
}
