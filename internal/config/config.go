package config

import (
	"os"
	"strconv"
)

type Config struct {
	LogLevel string

	DocsDir        string
	OutputsDir     string
	DataSourcesDir string

	ChromaURL        string
	ChromaCollection string

	ChunkSize       int
	ChunkOverlap    int
	MaxSegmentChars int

	LLMProvider string
	LLMEnabled  bool

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	OllamaURL      string
	OllamaGenModel string

	ClassifierFallbackEnabled bool
	LLMMaxRetries             int
	LLMRateLimitRPS           float64

	PostgresDSN string

	NATSURL             string
	NATSAnalyzedSubject string
	NATSRequestSubject  string

	WorkerMetricsPort string

	RulesetPath string
}

func Load() Config {
	return Config{
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		DocsDir:        mustEnv("DOCS_DIR", "./docs"),
		OutputsDir:     mustEnv("OUTPUTS_DIR", "./outputs"),
		DataSourcesDir: mustEnv("DATA_SOURCES_DIR", "./data_sources"),

		ChromaURL:        mustEnv("CHROMA_URL", "http://localhost:8000"),
		ChromaCollection: mustEnv("CHROMA_COLLECTION", "adgm_refs"),

		ChunkSize:       mustEnvInt("CHUNK_SIZE", 1200),
		ChunkOverlap:    mustEnvInt("CHUNK_OVERLAP", 200),
		MaxSegmentChars: mustEnvInt("MAX_SEGMENT_CHARS", 6000),

		LLMProvider: mustEnv("LLM_PROVIDER", "openai"),
		LLMEnabled:  mustEnvBool("LLM_ENABLED", true),

		OpenAIAPIKey:  mustEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   mustEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: mustEnv("OPENAI_BASE_URL", ""),

		OllamaURL:      mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaGenModel: mustEnv("OLLAMA_GEN_MODEL", "llama3.1:8b"),

		ClassifierFallbackEnabled: mustEnvBool("CLASSIFIER_FALLBACK_ENABLED", true),
		LLMMaxRetries:             mustEnvInt("LLM_MAX_RETRIES", 2),
		LLMRateLimitRPS:           mustEnvFloat("LLM_RATE_LIMIT_RPS", 0),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		NATSURL:             mustEnv("NATS_URL", ""),
		NATSAnalyzedSubject: mustEnv("NATS_ANALYZED_SUBJECT", "documents.analyzed"),
		NATSRequestSubject:  mustEnv("NATS_REQUEST_SUBJECT", "documents.analyze"),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),

		RulesetPath: mustEnv("RULESET_PATH", ""),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
