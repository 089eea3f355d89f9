package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/karanvs/fintrail/internal/model"
)

// Analyzer is the external analysis adapter. Every failure mode — timeout,
// malformed JSON, non-2xx status, rate limit, auth — is a soft failure
// returning nil, and the pipeline falls through to the next classification
// tier. It never retries within a pipeline pass; bounding cost and latency
// is a caller-level concern.
type Analyzer struct {
	client Client
	cfg    Config
}

// NewAnalyzer creates an analyzer over the configured provider. A missing
// API key yields a disabled analyzer rather than an error, so wiring stays
// unconditional.
func NewAnalyzer(cfg Config) *Analyzer {
	if cfg.APIKey == "" {
		return &Analyzer{cfg: cfg}
	}

	client, err := NewClient(cfg)
	if err != nil {
		slog.Warn("External analysis disabled", "error", err)
		return &Analyzer{cfg: cfg}
	}

	return &Analyzer{client: client, cfg: cfg}
}

// NewAnalyzerWithClient wires an explicit client; used by tests and by
// callers that manage provider construction themselves.
func NewAnalyzerWithClient(client Client, cfg Config) *Analyzer {
	return &Analyzer{client: client, cfg: cfg}
}

// Enabled reports whether a provider is configured.
func (a *Analyzer) Enabled() bool {
	return a != nil && a.client != nil
}

// AnalyzeMessage analyzes one raw notification. It returns nil whenever a
// result could not be obtained; it never returns an error because no
// failure here is fatal to the pipeline.
func (a *Analyzer) AnalyzeMessage(ctx context.Context, raw string) *MessageAnalysis {
	if !a.Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.analyzeTimeout())
	defer cancel()

	content, err := a.client.Complete(ctx, analyzeSystemPrompt, buildAnalyzePrompt(raw))
	if err != nil {
		slog.Warn("External message analysis failed", "error", err)
		return nil
	}

	analysis, err := parseMessageAnalysis(content)
	if err != nil {
		slog.Warn("External message analysis unparseable", "error", err)
		return nil
	}

	return analysis
}

// AnalyzeBatch generates an insight summary over a transaction slice.
// Same soft-failure semantics as AnalyzeMessage.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, txns []model.Transaction) *model.InsightsSummary {
	if !a.Enabled() || len(txns) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.batchTimeout())
	defer cancel()

	content, err := a.client.Complete(ctx, batchSystemPrompt, buildBatchPrompt(txns))
	if err != nil {
		slog.Warn("External batch analysis failed", "error", err)
		return nil
	}

	batch, err := parseBatchAnalysis(content)
	if err != nil {
		slog.Warn("External batch analysis unparseable", "error", err)
		return nil
	}

	return batch.toInsightsSummary(time.Now())
}

// Close releases the underlying provider.
func (a *Analyzer) Close() {
	if a != nil && a.client != nil {
		a.client.Close()
	}
}
