package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers.
type Client interface {
	// Complete sends a system+user prompt pair and returns the raw
	// completion text. The model is instructed to reply with a single
	// JSON object.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// Close releases provider resources.
	Close()
}

// Config holds provider configuration.
type Config struct {
	Provider          string
	APIKey            string
	Model             string
	BaseURL           string
	Temperature       float64
	MaxTokens         int
	RequestsPerMinute int
	// AnalyzeTimeout bounds a single-message analysis call.
	AnalyzeTimeout time.Duration
	// BatchTimeout bounds a batch insight generation call.
	BatchTimeout time.Duration
}

// Defaults for the hard timeouts. The pipeline proceeds to the next
// classification tier the moment either elapses.
const (
	DefaultAnalyzeTimeout = 30 * time.Second
	DefaultBatchTimeout   = 45 * time.Second
)

func (c Config) analyzeTimeout() time.Duration {
	if c.AnalyzeTimeout > 0 {
		return c.AnalyzeTimeout
	}
	return DefaultAnalyzeTimeout
}

func (c Config) batchTimeout() time.Duration {
	if c.BatchTimeout > 0 {
		return c.BatchTimeout
	}
	return DefaultBatchTimeout
}
