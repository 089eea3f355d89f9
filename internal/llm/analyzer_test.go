package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karanvs/fintrail/internal/model"
)

func chatResponse(content string) string {
	body := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
	data, _ := json.Marshal(body)
	return string(data)
}

func newTestAnalyzer(t *testing.T, handler http.HandlerFunc, cfg Config) *Analyzer {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.Provider = "openai"
	cfg.APIKey = "test-key"
	cfg.BaseURL = server.URL

	client, err := NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return NewAnalyzerWithClient(client, cfg)
}

func TestAnalyzeMessageSuccess(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		format, ok := req["response_format"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "json_object", format["type"])

		_, _ = w.Write([]byte(chatResponse(`{
			"transaction_type": "debit",
			"amount": 1500,
			"bank_name": "ICICI Bank",
			"category": "Shopping",
			"merchant_name": "Amazon",
			"confidence_score": 0.95
		}`)))
	}, Config{})

	analysis := analyzer.AnalyzeMessage(context.Background(), "Rs.1500 debited for Amazon")
	require.NotNil(t, analysis)

	res := analysis.ToClassificationResult()
	assert.Equal(t, model.CategoryShopping, res.CategoryID)
	assert.InDelta(t, 0.95, res.Confidence, 1e-9)
}

func TestAnalyzeMessageSoftFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "auth failure",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not json at all"))
			},
		},
		{
			name: "schema violating content",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(chatResponse(`{"amount": -10}`)))
			},
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"choices": []}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := newTestAnalyzer(t, tt.handler, Config{})
			assert.Nil(t, analyzer.AnalyzeMessage(context.Background(), "Rs.100 debited"))
		})
	}
}

func TestAnalyzeMessageTimeout(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(chatResponse(`{"amount": 10}`)))
	}, Config{AnalyzeTimeout: 20 * time.Millisecond})

	start := time.Now()
	analysis := analyzer.AnalyzeMessage(context.Background(), "Rs.100 debited")
	assert.Nil(t, analysis)
	assert.Less(t, time.Since(start), 150*time.Millisecond, "timeout must be enforced")
}

func TestAnalyzeMessageDisabledAnalyzer(t *testing.T) {
	analyzer := NewAnalyzer(Config{})
	assert.False(t, analyzer.Enabled())
	assert.Nil(t, analyzer.AnalyzeMessage(context.Background(), "Rs.100 debited"))
	assert.Nil(t, analyzer.AnalyzeBatch(context.Background(), nil))
}

func TestAnalyzeBatch(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(chatResponse(`{
			"financial_health_score": 64,
			"recommendations": ["Track dining spend weekly"],
			"trends": {"overall": "stable"}
		}`)))
	}, Config{})

	txns := []model.Transaction{
		{
			Amount:     decimal.NewFromInt(500),
			Direction:  model.DirectionExpense,
			CategoryID: model.CategoryFood,
		},
	}

	summary := analyzer.AnalyzeBatch(context.Background(), txns)
	require.NotNil(t, summary)
	assert.InDelta(t, 64, summary.FinancialHealthScore, 1e-9)
	assert.Len(t, summary.Recommendations, 1)
}

func TestAnalyzeBatchEmptyTransactions(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for an empty batch")
	}, Config{})

	assert.Nil(t, analyzer.AnalyzeBatch(context.Background(), nil))
}
