package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewJSONLoggerToEmitsServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := ForComponent(NewJSONLoggerTo(&buf, "analyzer", "info"), "classifier")

	logger.Info("keyword classification", "doc_type", "Board Resolution")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not one JSON record: %v", err)
	}
	if rec["service"] != "analyzer" || rec["component"] != "classifier" {
		t.Fatalf("missing service/component attrs: %v", rec)
	}
	if rec["doc_type"] != "Board Resolution" {
		t.Fatalf("missing call attrs: %v", rec)
	}
}

func TestNewJSONLoggerToFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLoggerTo(&buf, "analyzer", "warn")

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info record must be filtered at warn level: %s", buf.String())
	}
	logger.Warn("kept")
	if buf.Len() == 0 {
		t.Fatal("warn record must pass at warn level")
	}
}

func TestForComponentNilLoggerUsesDefault(t *testing.T) {
	if ForComponent(nil, "ingest") == (*slog.Logger)(nil) {
		t.Fatal("nil logger must fall back to slog.Default")
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
