package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaCompleteSendsPromptAndTemperature(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "  Articles of Association  "})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama3.1:8b")
	got, err := client.Complete(context.Background(), "classify this", 0.2)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "Articles of Association" {
		t.Fatalf("response not trimmed: %q", got)
	}

	if captured["model"] != "llama3.1:8b" {
		t.Errorf("model = %v", captured["model"])
	}
	if captured["prompt"] != "classify this" {
		t.Errorf("prompt = %v", captured["prompt"])
	}
	if captured["stream"] != false {
		t.Errorf("stream = %v", captured["stream"])
	}
	opts, _ := captured["options"].(map[string]any)
	if opts["temperature"] != 0.2 {
		t.Errorf("temperature = %v", opts["temperature"])
	}
}

func TestOllamaCompleteSurfacesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "missing")
	if _, err := client.Complete(context.Background(), "hi", 0); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestNewClientRejectsUnknownProvider(t *testing.T) {
	if _, err := NewClient(Options{Provider: "bedrock"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewClientRequiresOpenAIKey(t *testing.T) {
	if _, err := NewClient(Options{Provider: ProviderOpenAI}); err == nil {
		t.Fatal("expected error when api key missing")
	}
}
