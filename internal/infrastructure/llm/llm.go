// Package llm provides text completion clients for the analysis pipeline.
package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Options selects and configures a completion provider.
type Options struct {
	Provider string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	OllamaURL   string
	OllamaModel string

	// RateLimitRPS caps outgoing completion calls per second; zero disables
	// the limiter.
	RateLimitRPS float64
}

// Client issues a single prompt completion at a given sampling temperature.
type Client interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

func NewClient(opts Options) (Client, error) {
	var client Client
	switch opts.Provider {
	case ProviderOllama:
		client = NewOllamaClient(opts.OllamaURL, opts.OllamaModel)
	case ProviderOpenAI:
		if opts.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider selected but OPENAI_API_KEY not set")
		}
		client = NewOpenAIClient(opts)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", opts.Provider)
	}

	if opts.RateLimitRPS > 0 {
		client = &rateLimitedClient{
			inner:   client,
			limiter: rate.NewLimiter(rate.Limit(opts.RateLimitRPS), 1),
		}
	}
	return client, nil
}

type rateLimitedClient struct {
	inner   Client
	limiter *rate.Limiter
}

func (c *rateLimitedClient) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("await completion slot: %w", err)
	}
	return c.inner.Complete(ctx, prompt, temperature)
}
