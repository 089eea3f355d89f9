// Package engine assembles raw bank notification text into persisted
// transaction records via the tiered classification cascade.
package engine

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karanvs/fintrail/internal/analytics"
	"github.com/karanvs/fintrail/internal/classify"
	"github.com/karanvs/fintrail/internal/common"
	"github.com/karanvs/fintrail/internal/ensemble"
	"github.com/karanvs/fintrail/internal/extract"
	"github.com/karanvs/fintrail/internal/llm"
	"github.com/karanvs/fintrail/internal/model"
	"github.com/karanvs/fintrail/internal/normalize"
	"github.com/karanvs/fintrail/internal/service"
)

// DefaultDuplicateWindow bounds how far apart two deliveries of the same
// transaction may arrive.
const DefaultDuplicateWindow = 2 * time.Minute

// lockStripes sizes the striped mutex table serializing duplicate checks
// per (amount, bank) key.
const lockStripes = 64

// financialMarkers is the minimal gate a message must pass before any
// classification work happens. Checked against normalized text.
var financialMarkers = []string{
	"debited", "credited", "rs.", "rs ", "inr", "account",
	"transaction", "payment", "paid", "withdrawn", "spent",
	"balance", "upi", "transfer", "received", "purchase",
}

// Stats holds the assembler's diagnostic counters.
type Stats struct {
	Processed    int64
	NonFinancial int64
	Duplicates   int64
	ExternalHits int64
	EnsembleHits int64
	PatternHits  int64
}

// Assembler runs the classification cascade and persists the result. The
// external tier is consulted first when configured, then the ensemble
// scorer, then the pattern heuristics; the first answer wins.
type Assembler struct {
	store     service.Storage
	analyzer  *llm.Analyzer
	ensemble  *ensemble.Classifier
	pattern   *classify.PatternClassifier
	analytics *analytics.Engine
	window    time.Duration

	dupLocks [lockStripes]sync.Mutex

	idMu    sync.Mutex
	idLocks map[string]*sync.Mutex

	processed    atomic.Int64
	nonFinancial atomic.Int64
	duplicates   atomic.Int64
	externalHits atomic.Int64
	ensembleHits atomic.Int64
	patternHits  atomic.Int64
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithAnalyzer wires the external analysis tier.
func WithAnalyzer(analyzer *llm.Analyzer) Option {
	return func(a *Assembler) { a.analyzer = analyzer }
}

// WithEnsemble wires the ensemble scoring tier.
func WithEnsemble(classifier *ensemble.Classifier) Option {
	return func(a *Assembler) { a.ensemble = classifier }
}

// WithAnalytics wires the live-update evaluation after each persist.
func WithAnalytics(engine *analytics.Engine) Option {
	return func(a *Assembler) { a.analytics = engine }
}

// WithDuplicateWindow overrides the duplicate suppression window.
func WithDuplicateWindow(window time.Duration) Option {
	return func(a *Assembler) { a.window = window }
}

// NewAssembler creates an assembler over the given store. The pattern
// tier is always present; the other tiers attach through options.
func NewAssembler(store service.Storage, opts ...Option) *Assembler {
	a := &Assembler{
		store:   store,
		pattern: classify.NewPatternClassifier(),
		window:  DefaultDuplicateWindow,
		idLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble turns one raw notification into a persisted transaction. It
// returns (nil, nil) for non-financial messages and suppressed
// duplicates; a storage failure is the only hard error.
func (a *Assembler) Assemble(ctx context.Context, raw, sender string, ts time.Time) (*model.Transaction, error) {
	norm := normalize.Message(raw)
	if !looksFinancial(norm) {
		a.nonFinancial.Add(1)
		slog.Debug("Skipping non-financial message", "sender", sender)
		return nil, nil
	}

	fields := extract.Message(raw, sender)
	direction := classify.DetermineDirection(norm)

	result, analysis := a.classify(ctx, raw, norm, fields, direction, ts)

	amount := fields.Amount
	hasAmount := fields.HasAmount
	if !hasAmount && analysis != nil {
		amount, hasAmount = analysis.ExtractedAmount()
	}
	if !hasAmount || !amount.IsPositive() {
		// Passed the keyword gate but carries no recoverable amount.
		a.nonFinancial.Add(1)
		slog.Debug("Skipping message without an amount", "sender", sender)
		return nil, nil
	}

	txn := a.buildTransaction(raw, fields, analysis, result, amount, ts)

	// Serialize the duplicate check per (amount, bank) key so two
	// near-simultaneous deliveries cannot both pass it.
	lock := &a.dupLocks[stripeFor(txn.DuplicateKey())]
	lock.Lock()
	defer lock.Unlock()

	dup, err := a.store.FindDuplicate(ctx, txn, a.window)
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}
	if dup != nil {
		a.duplicates.Add(1)
		slog.Debug("Suppressed duplicate", "existing", dup.ID, "amount", txn.Amount)
		return nil, nil
	}

	if err := a.store.SaveTransaction(ctx, txn); err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			// Identical content raced in under another key variant.
			a.duplicates.Add(1)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to persist transaction: %w", err)
	}

	a.processed.Add(1)
	if a.analytics != nil {
		a.analytics.Record(ctx, txn)
	}

	slog.Info("Assembled transaction",
		"id", txn.ID,
		"category", txn.CategoryID,
		"direction", txn.Direction,
		"amount", txn.Amount,
		"method", result.Method)
	return txn, nil
}

// classify runs the cascade and returns the winning result plus the raw
// external analysis when that tier answered.
func (a *Assembler) classify(ctx context.Context, raw, norm string, fields extract.Fields, direction model.Direction, ts time.Time) (model.ClassificationResult, *llm.MessageAnalysis) {
	if a.analyzer != nil && a.analyzer.Enabled() {
		if analysis := a.analyzer.AnalyzeMessage(ctx, raw); analysis != nil {
			if result := analysis.ToClassificationResult(); result != nil {
				a.externalHits.Add(1)
				return *result, analysis
			}
		}
	}

	if a.ensemble != nil && a.ensemble.Len() > 0 {
		result, err := a.ensemble.Score(ctx, norm, ensemble.Context{
			OccurredAt: ts,
			Direction:  direction,
			Amount:     fields.Amount,
		})
		if err != nil {
			slog.Warn("Ensemble scoring failed", "error", err)
		} else if result != nil {
			a.ensembleHits.Add(1)
			return *result, nil
		}
	}

	a.patternHits.Add(1)
	return a.pattern.Classify(classify.Input{
		OccurredAt: ts,
		Text:       norm,
		Direction:  direction,
		Amount:     fields.Amount,
	}), nil
}

func (a *Assembler) buildTransaction(raw string, fields extract.Fields, analysis *llm.MessageAnalysis, result model.ClassificationResult, amount decimal.Decimal, ts time.Time) *model.Transaction {
	txn := &model.Transaction{
		ID:          uuid.NewString(),
		OccurredAt:  ts.UTC(),
		Direction:   result.Direction,
		TimeOfDay:   fields.TimeOfDay,
		CategoryID:  result.CategoryID,
		Subcategory: result.Subcategory,
		Merchant:    result.Merchant,
		BankName:    fields.BankName,
		AccountTail: fields.AccountTail,
		SourceText:  raw,
		Amount:      amount,
		Confidence:  result.Confidence,
	}

	if analysis != nil {
		if txn.BankName == "" {
			txn.BankName = analysis.BankName
		}
		if txn.AccountTail == "" {
			txn.AccountTail = analysis.AccountTail()
		}
		txn.ModelInsight = analysis.Insights
		txn.AnomalyTags = analysis.AnomalyFlags
	}

	if txn.CategoryID == "" {
		txn.CategoryID = model.CategoryOther
	}
	if txn.Direction == "" {
		txn.Direction = model.DirectionExpense
	}
	return txn
}

// Reanalyze re-runs the external tier over a stored transaction's source
// text and applies the enrichment in place. Calls for the same id are
// serialized.
func (a *Assembler) Reanalyze(ctx context.Context, id string) error {
	if a.analyzer == nil || !a.analyzer.Enabled() {
		return fmt.Errorf("%w: no analysis provider configured", common.ErrAnalysisUnavailable)
	}

	lock := a.lockForID(id)
	lock.Lock()
	defer lock.Unlock()

	txn, err := a.store.GetTransactionByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load transaction: %w", err)
	}

	analysis := a.analyzer.AnalyzeMessage(ctx, txn.SourceText)
	if analysis == nil {
		return fmt.Errorf("%w: no usable analysis for transaction %s", common.ErrMalformedResponse, id)
	}

	patch := service.EnrichmentPatch{
		Confidence:  analysis.ConfidenceScore,
		AnomalyTags: analysis.AnomalyFlags,
	}
	if analysis.Insights != "" {
		insight := analysis.Insights
		patch.ModelInsight = &insight
	}
	if patch.AnomalyTags == nil {
		patch.AnomalyTags = []string{}
	}

	if err := a.store.UpdateEnrichment(ctx, id, patch); err != nil {
		return fmt.Errorf("failed to apply enrichment: %w", err)
	}

	slog.Info("Re-analyzed transaction", "id", id)
	return nil
}

// Stats returns a snapshot of the diagnostic counters.
func (a *Assembler) Stats() Stats {
	return Stats{
		Processed:    a.processed.Load(),
		NonFinancial: a.nonFinancial.Load(),
		Duplicates:   a.duplicates.Load(),
		ExternalHits: a.externalHits.Load(),
		EnsembleHits: a.ensembleHits.Load(),
		PatternHits:  a.patternHits.Load(),
	}
}

// LogStats writes the counters through the structured logger.
func (a *Assembler) LogStats() {
	stats := a.Stats()
	slog.Info("Assembler statistics",
		"processed", stats.Processed,
		"non_financial", stats.NonFinancial,
		"duplicates", stats.Duplicates,
		"external_hits", stats.ExternalHits,
		"ensemble_hits", stats.EnsembleHits,
		"pattern_hits", stats.PatternHits)
}

func (a *Assembler) lockForID(id string) *sync.Mutex {
	a.idMu.Lock()
	defer a.idMu.Unlock()

	lock, ok := a.idLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		a.idLocks[id] = lock
	}
	return lock
}

func looksFinancial(norm string) bool {
	for _, marker := range financialMarkers {
		if strings.Contains(norm, marker) {
			return true
		}
	}
	return false
}

func stripeFor(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % lockStripes
}
