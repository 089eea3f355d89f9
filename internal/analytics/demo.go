package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/karanvs/fintrail/internal/model"
)

// DemoInsights returns the fixed illustrative snapshot served while the
// transaction set is empty. It is clearly labeled via the Demo flag so
// downstream consumers can badge it.
func DemoInsights() *model.SpendingInsights {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	return &model.SpendingInsights{
		Demo:         true,
		GeneratedAt:  now,
		PeriodStart:  monthStart,
		PeriodEnd:    monthStart.AddDate(0, 1, 0),
		TotalIncome:  52000,
		TotalExpense: 31450,
		Net:          20550,
		CategoryBreakdown: map[string]float64{
			model.CategoryFood:          7200,
			model.CategoryTransport:     2800,
			model.CategoryShopping:      9500,
			model.CategoryEntertainment: 1950,
			model.CategoryUtilities:     4300,
			model.CategoryHealthcare:    1200,
			model.CategoryFinancial:     4500,
		},
		MonthlyTrend: []model.MonthlyPoint{
			{Month: monthStart.AddDate(0, -3, 0).Format("2006-01"), Amount: 27100},
			{Month: monthStart.AddDate(0, -2, 0).Format("2006-01"), Amount: 29800},
			{Month: monthStart.AddDate(0, -1, 0).Format("2006-01"), Amount: 28400},
			{Month: monthStart.Format("2006-01"), Amount: 31450},
		},
		Trend: model.TrendIncreasing,
		Prediction: model.TrendPrediction{
			Direction:  model.TrendIncreasing,
			NextAmount: 32600,
			Slope:      1150,
			Confidence: 0.72,
		},
		TopCategories: []model.RankedEntry{
			{Name: "Shopping", Amount: 9500},
			{Name: "Food & Dining", Amount: 7200},
			{Name: "Financial Services", Amount: 4500},
		},
		TopMerchants: []model.RankedEntry{
			{Name: "Amazon", Amount: 6200},
			{Name: "Swiggy", Amount: 3900},
			{Name: "Uber", Amount: 1750},
		},
		Anomalies: []model.SpendingAnomaly{
			{
				ID:          deriveID("demo-shopping", string(model.AnomalyUnusualAmount)),
				Kind:        model.AnomalyUnusualAmount,
				Severity:    0.8,
				Amount:      decimal.NewFromInt(6200),
				Merchant:    "Amazon",
				CategoryID:  model.CategoryShopping,
				DetectedAt:  now,
				Description: "Spend of 6200.00 is well above your typical 1400.00",
			},
		},
		Recommendations: []model.FinancialRecommendation{
			{
				ID:               deriveID(model.CategoryShopping, string(model.RecommendationBudgeting)),
				Kind:             model.RecommendationBudgeting,
				Priority:         model.PriorityHigh,
				Title:            "Trim Shopping spending",
				Description:      "Shopping spend of 9500.00 is nearing the 10000.00 budget. Cutting 15% would save 1425.00.",
				PotentialSavings: decimal.NewFromInt(1425),
				Categories:       []string{model.CategoryShopping},
				Actionable:       true,
				CreatedAt:        now,
			},
		},
		DailyAverage:   1048.33,
		WeeklyAverage:  7338.33,
		MonthlyAverage: 31450,
		PeriodDelta:    10.74,
	}
}
