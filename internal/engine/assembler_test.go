package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karanvs/fintrail/internal/common"
	"github.com/karanvs/fintrail/internal/llm"
	"github.com/karanvs/fintrail/internal/model"
	"github.com/karanvs/fintrail/internal/storage"
)

const sampleMessage = "Rs.1500.00 debited from A/c XX1234 on 14-Jun-25 at Amazon. Avl Bal Rs.20000.00"

func newTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func newTestAnalyzer(t *testing.T, handler http.HandlerFunc) *llm.Analyzer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := llm.NewClient(llm.Config{
		Provider: "openai",
		APIKey:   "test-key",
		BaseURL:  server.URL,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return llm.NewAnalyzerWithClient(client, llm.Config{})
}

func TestAssembleEndToEnd(t *testing.T) {
	store := newTestStore(t)
	assembler := NewAssembler(store)
	ctx := context.Background()

	ts := time.Date(2025, 6, 14, 13, 45, 0, 0, time.UTC)
	txn, err := assembler.Assemble(ctx, sampleMessage, "AD-ICICIB", ts)
	require.NoError(t, err)
	require.NotNil(t, txn)

	assert.Equal(t, model.DirectionExpense, txn.Direction)
	assert.True(t, txn.Amount.Equal(decimal.NewFromFloat(1500.00)), "got %s", txn.Amount)
	assert.Equal(t, model.CategoryShopping, txn.CategoryID)
	assert.Equal(t, "Amazon", txn.Merchant)
	assert.Equal(t, "ICICI Bank", txn.BankName)
	assert.Equal(t, "1234", txn.AccountTail)
	assert.Equal(t, sampleMessage, txn.SourceText)
	assert.NotEmpty(t, txn.ID)

	// The record is queryable straight back.
	stored, err := store.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.CategoryID, stored.CategoryID)

	stats := assembler.Stats()
	assert.Equal(t, int64(1), stats.Processed)
	assert.Equal(t, int64(1), stats.PatternHits)
	assert.Zero(t, stats.ExternalHits)
}

func TestAssembleNonFinancialMessage(t *testing.T) {
	store := newTestStore(t)
	assembler := NewAssembler(store)
	ctx := context.Background()

	txn, err := assembler.Assemble(ctx, "Your OTP is 123456. Do not share it.", "VM-OTPSMS", time.Now())
	require.NoError(t, err)
	assert.Nil(t, txn)

	count, err := store.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, int64(1), assembler.Stats().NonFinancial)
}

func TestAssembleMessageWithoutAmount(t *testing.T) {
	store := newTestStore(t)
	assembler := NewAssembler(store)

	txn, err := assembler.Assemble(context.Background(),
		"Your account statement for June is ready for download.", "AD-ICICIB", time.Now())
	require.NoError(t, err)
	assert.Nil(t, txn)
	assert.Equal(t, int64(1), assembler.Stats().NonFinancial)
}

func TestAssembleSuppressesDuplicates(t *testing.T) {
	store := newTestStore(t)
	assembler := NewAssembler(store)
	ctx := context.Background()

	ts := time.Date(2025, 6, 14, 13, 45, 0, 0, time.UTC)
	first, err := assembler.Assemble(ctx, sampleMessage, "AD-ICICIB", ts)
	require.NoError(t, err)
	require.NotNil(t, first)

	// Re-delivery 90 seconds later is inside the window.
	second, err := assembler.Assemble(ctx, sampleMessage, "AD-ICICIB", ts.Add(90*time.Second))
	require.NoError(t, err)
	assert.Nil(t, second)

	count, err := store.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, int64(1), assembler.Stats().Duplicates)

	// Outside the window it counts as a fresh transaction.
	third, err := assembler.Assemble(ctx, sampleMessage, "AD-ICICIB", ts.Add(5*time.Minute))
	require.NoError(t, err)
	assert.NotNil(t, third)
}

func TestAssembleConcurrentDuplicateDeliveries(t *testing.T) {
	store := newTestStore(t)
	assembler := NewAssembler(store)
	ctx := context.Background()
	ts := time.Date(2025, 6, 14, 13, 45, 0, 0, time.UTC)

	var wg sync.WaitGroup
	results := make([]*model.Transaction, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			txn, err := assembler.Assemble(ctx, sampleMessage, "AD-ICICIB", ts)
			assert.NoError(t, err)
			results[i] = txn
		}(i)
	}
	wg.Wait()

	persisted := 0
	for _, txn := range results {
		if txn != nil {
			persisted++
		}
	}
	assert.Equal(t, 1, persisted, "exactly one delivery may win")

	count, err := store.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAssembleExternalTierWins(t *testing.T) {
	store := newTestStore(t)
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":
			"{\"transaction_type\":\"debit\",\"amount\":1500,\"bank_name\":\"ICICI Bank\",\"category\":\"Entertainment\",\"merchant_name\":\"BookMyShow\",\"confidence_score\":0.92,\"insights\":\"weekend movie\"}"}}]}`))
	})

	assembler := NewAssembler(store, WithAnalyzer(analyzer))
	txn, err := assembler.Assemble(context.Background(), sampleMessage, "AD-ICICIB",
		time.Date(2025, 6, 14, 13, 45, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, txn)

	// External answer overrides the pattern tier's Amazon match.
	assert.Equal(t, model.CategoryEntertainment, txn.CategoryID)
	assert.Equal(t, "BookMyShow", txn.Merchant)
	assert.InDelta(t, 0.92, txn.Confidence, 1e-9)
	assert.Equal(t, "weekend movie", txn.ModelInsight)
	assert.Equal(t, int64(1), assembler.Stats().ExternalHits)
}

func TestAssembleFallsBackWhenExternalFails(t *testing.T) {
	store := newTestStore(t)
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	assembler := NewAssembler(store, WithAnalyzer(analyzer))
	txn, err := assembler.Assemble(context.Background(), sampleMessage, "AD-ICICIB",
		time.Date(2025, 6, 14, 13, 45, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, txn)

	assert.Equal(t, model.CategoryShopping, txn.CategoryID, "pattern tier answers when the external tier soft-fails")
	assert.Equal(t, int64(1), assembler.Stats().PatternHits)
	assert.Zero(t, assembler.Stats().ExternalHits)
}

func TestReanalyze(t *testing.T) {
	store := newTestStore(t)
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":
			"{\"transaction_type\":\"debit\",\"amount\":1500,\"category\":\"Shopping\",\"confidence_score\":0.97,\"anomaly_flags\":[\"unusual_amount\"],\"insights\":\"larger than usual order\"}"}}]}`))
	})

	assembler := NewAssembler(store, WithAnalyzer(analyzer))
	ctx := context.Background()

	txn, err := assembler.Assemble(ctx, sampleMessage, "AD-ICICIB",
		time.Date(2025, 6, 14, 13, 45, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, txn)

	require.NoError(t, assembler.Reanalyze(ctx, txn.ID))

	enriched, err := store.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.97, enriched.Confidence, 1e-9)
	assert.Equal(t, []string{"unusual_amount"}, enriched.AnomalyTags)
	assert.Equal(t, "larger than usual order", enriched.ModelInsight)
}

func TestReanalyzeWithoutAnalyzer(t *testing.T) {
	store := newTestStore(t)
	assembler := NewAssembler(store)

	err := assembler.Reanalyze(context.Background(), "any-id")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAnalysisUnavailable)
}

func TestReanalyzeUnknownTransaction(t *testing.T) {
	store := newTestStore(t)
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	assembler := NewAssembler(store, WithAnalyzer(analyzer))
	err := assembler.Reanalyze(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
