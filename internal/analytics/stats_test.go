package analytics

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karanvs/fintrail/internal/model"
)

func points(amounts ...float64) []model.MonthlyPoint {
	pts := make([]model.MonthlyPoint, len(amounts))
	for i, a := range amounts {
		pts[i] = model.MonthlyPoint{Month: fmt.Sprintf("2025-%02d", i+1), Amount: a}
	}
	return pts
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name   string
		series []model.MonthlyPoint
		want   model.TrendDirection
	}{
		{name: "rising past threshold", series: points(1000, 1200), want: model.TrendIncreasing},
		{name: "falling past threshold", series: points(1200, 1000), want: model.TrendDecreasing},
		{name: "small movement is stable", series: points(1000, 1010), want: model.TrendStable},
		{name: "exactly five percent is stable", series: points(1000, 1050), want: model.TrendStable},
		{name: "single point", series: points(1000), want: model.TrendUnknown},
		{name: "empty series", series: nil, want: model.TrendUnknown},
		{name: "only recent pair matters", series: points(5000, 100, 1000, 1200), want: model.TrendIncreasing},
		{name: "zero previous month", series: points(0, 500), want: model.TrendIncreasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTrend(tt.series))
		})
	}
}

func TestPredictNextMonth(t *testing.T) {
	t.Run("too few points", func(t *testing.T) {
		got := PredictNextMonth(points(100, 200))
		assert.Equal(t, model.TrendUnknown, got.Direction)
		assert.Zero(t, got.Confidence)
	})

	t.Run("steep linear series", func(t *testing.T) {
		got := PredictNextMonth(points(100, 200, 300))
		assert.InDelta(t, 100, got.Slope, 1e-9)
		assert.InDelta(t, 400, got.NextAmount, 1e-9)
		assert.Equal(t, model.TrendIncreasing, got.Direction)
		// Variance dwarfs the mean, so confidence sits at the floor.
		assert.InDelta(t, 0.5, got.Confidence, 1e-9)
	})

	t.Run("flat series hits the confidence ceiling", func(t *testing.T) {
		got := PredictNextMonth(points(1000, 1005, 1010))
		assert.InDelta(t, 5, got.Slope, 1e-9)
		assert.InDelta(t, 1015, got.NextAmount, 1e-9)
		assert.Equal(t, model.TrendStable, got.Direction)
		assert.InDelta(t, 0.95, got.Confidence, 1e-9)
	})
}

func expenseSeries(amounts ...float64) []model.Transaction {
	txns := make([]model.Transaction, len(amounts))
	for i, a := range amounts {
		txns[i] = model.Transaction{
			ID:         fmt.Sprintf("txn-%d", i),
			Direction:  model.DirectionExpense,
			CategoryID: model.CategoryFood,
			Merchant:   "Swiggy",
			Amount:     decimal.NewFromFloat(a),
		}
	}
	return txns
}

func TestDetectAmountAnomalies(t *testing.T) {
	t.Run("too few samples", func(t *testing.T) {
		assert.Nil(t, DetectAmountAnomalies(expenseSeries(100, 200, 5000)))
	})

	t.Run("uniform amounts produce nothing", func(t *testing.T) {
		amounts := make([]float64, 12)
		for i := range amounts {
			amounts[i] = 500
		}
		assert.Nil(t, DetectAmountAnomalies(expenseSeries(amounts...)))
	})

	t.Run("outlier flagged with capped severity", func(t *testing.T) {
		// Baseline of 15 values spread around 1000, plus one outlier.
		amounts := []float64{
			800, 900, 1000, 1100, 1200,
			800, 900, 1000, 1100, 1200,
			800, 900, 1000, 1100, 1200,
			5000,
		}
		anomalies := DetectAmountAnomalies(expenseSeries(amounts...))
		require.Len(t, anomalies, 1)

		got := anomalies[0]
		assert.Equal(t, model.AnomalyUnusualAmount, got.Kind)
		assert.Equal(t, "txn-15", idSourceOf(t, got))
		assert.InDelta(t, 1.0, got.Severity, 1e-9)
		assert.True(t, got.Amount.Equal(decimal.NewFromInt(5000)))
		assert.InDelta(t, 1250, got.Metadata["mean"], 1e-6)
		assert.Greater(t, got.Metadata["threshold"], 3000.0)
	})

	t.Run("moderate spend stays unflagged", func(t *testing.T) {
		amounts := []float64{
			900, 1100, 900, 1100, 900, 1100,
			900, 1100, 900, 1100, 900, 1100,
			1050,
		}
		assert.Empty(t, DetectAmountAnomalies(expenseSeries(amounts...)))
	})

	t.Run("ids are deterministic across runs", func(t *testing.T) {
		amounts := []float64{
			800, 900, 1000, 1100, 1200,
			800, 900, 1000, 1100, 1200,
			5000,
		}
		first := DetectAmountAnomalies(expenseSeries(amounts...))
		second := DetectAmountAnomalies(expenseSeries(amounts...))
		require.Len(t, first, 1)
		require.Len(t, second, 1)
		assert.Equal(t, first[0].ID, second[0].ID)
	})
}

// idSourceOf matches an anomaly ID back to the seeded transaction IDs.
func idSourceOf(t *testing.T, anomaly model.SpendingAnomaly) string {
	t.Helper()
	for i := 0; i < 32; i++ {
		id := fmt.Sprintf("txn-%d", i)
		if deriveID(id, string(anomaly.Kind)) == anomaly.ID {
			return id
		}
	}
	t.Fatalf("anomaly %s does not map to a seeded transaction", anomaly.ID)
	return ""
}

func TestBudgetRecommendations(t *testing.T) {
	t.Run("overspent categories only", func(t *testing.T) {
		totals := map[string]float64{
			model.CategoryFood:      9000, // over 8000
			model.CategoryTransport: 1000, // under 3000
			model.CategoryShopping:  12000,
		}
		recs := BudgetRecommendations(totals, nil)
		require.Len(t, recs, 2)

		// Sorted by category id for stable output.
		assert.Equal(t, []string{model.CategoryFood}, recs[0].Categories)
		assert.Equal(t, []string{model.CategoryShopping}, recs[1].Categories)

		food := recs[0]
		assert.Equal(t, model.RecommendationBudgeting, food.Kind)
		assert.Equal(t, model.PriorityHigh, food.Priority)
		assert.True(t, food.Actionable)
		assert.True(t, food.PotentialSavings.Equal(decimal.NewFromFloat(1350)),
			"savings must be 15%% of the category total, got %s", food.PotentialSavings)
	})

	t.Run("income has no budget", func(t *testing.T) {
		recs := BudgetRecommendations(map[string]float64{model.CategoryIncome: 99999}, nil)
		assert.Empty(t, recs)
	})

	t.Run("custom budget table", func(t *testing.T) {
		recs := BudgetRecommendations(
			map[string]float64{model.CategoryFood: 600},
			map[string]float64{model.CategoryFood: 500},
		)
		require.Len(t, recs, 1)
		assert.True(t, recs[0].PotentialSavings.Equal(decimal.NewFromFloat(90)))
	})
}
