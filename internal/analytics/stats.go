// Package analytics derives the spending read model from the persisted
// transaction set: aggregates, trend classification, next-period
// prediction, amount anomalies and budget recommendations.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karanvs/fintrail/internal/model"
)

// TrendThresholdPercent is the band around zero inside which a
// period-over-period movement counts as stable.
const TrendThresholdPercent = 5.0

// AnomalyMinSamples is the smallest expense sample that supports amount
// anomaly detection. Below it the detector reports nothing.
const AnomalyMinSamples = 10

// anomalyStdDevFactor is how many population standard deviations above
// the mean an amount must sit to be flagged.
const anomalyStdDevFactor = 2.5

// DefaultBudgets is the fixed per-category monthly budget table, in the
// account currency. Income and the sentinel category carry no budget.
var DefaultBudgets = map[string]float64{
	model.CategoryFood:          8000,
	model.CategoryTransport:     3000,
	model.CategoryShopping:      10000,
	model.CategoryEntertainment: 4000,
	model.CategoryHealthcare:    5000,
	model.CategoryUtilities:     6000,
	model.CategoryEducation:     10000,
	model.CategoryFinancial:     15000,
	model.CategoryOther:         5000,
}

// ClassifyTrend compares the two most recent points of a monthly series.
// Fewer than two points yields TrendUnknown.
func ClassifyTrend(points []model.MonthlyPoint) model.TrendDirection {
	if len(points) < 2 {
		return model.TrendUnknown
	}

	prev := points[len(points)-2].Amount
	last := points[len(points)-1].Amount

	if prev == 0 {
		if last > 0 {
			return model.TrendIncreasing
		}
		return model.TrendStable
	}

	change := (last - prev) / prev * 100
	switch {
	case change > TrendThresholdPercent:
		return model.TrendIncreasing
	case change < -TrendThresholdPercent:
		return model.TrendDecreasing
	default:
		return model.TrendStable
	}
}

// PredictNextMonth projects the next point of a monthly series with an
// ordinary least-squares fit. Fewer than three points yields an unknown
// direction with zero confidence.
func PredictNextMonth(points []model.MonthlyPoint) model.TrendPrediction {
	if len(points) < 3 {
		return model.TrendPrediction{Direction: model.TrendUnknown}
	}

	n := float64(len(points))
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range points {
		x := float64(i)
		sumX += x
		sumY += p.Amount
		sumXY += x * p.Amount
		sumXX += x * x
	}

	slope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
	next := points[len(points)-1].Amount + slope

	mean := sumY / n
	var variance float64
	for _, p := range points {
		variance += (p.Amount - mean) * (p.Amount - mean)
	}
	variance /= n

	confidence := 0.5
	if mean > 0 {
		confidence = clamp(1-variance/mean, 0.5, 0.95)
	}

	return model.TrendPrediction{
		Direction:  ClassifyTrend(points),
		NextAmount: next,
		Slope:      slope,
		Confidence: confidence,
	}
}

// DetectAmountAnomalies flags expense transactions whose amount sits more
// than 2.5 population standard deviations above the sample mean. Samples
// smaller than AnomalyMinSamples produce no result.
func DetectAmountAnomalies(expenses []model.Transaction) []model.SpendingAnomaly {
	if len(expenses) < AnomalyMinSamples {
		return nil
	}

	amounts := make([]float64, len(expenses))
	var sum float64
	for i := range expenses {
		amounts[i] = expenses[i].Amount.InexactFloat64()
		sum += amounts[i]
	}
	mean := sum / float64(len(amounts))

	var variance float64
	for _, a := range amounts {
		variance += (a - mean) * (a - mean)
	}
	variance /= float64(len(amounts))
	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		return nil
	}

	threshold := mean + anomalyStdDevFactor*stdDev

	var anomalies []model.SpendingAnomaly
	for i, a := range amounts {
		if a <= threshold {
			continue
		}
		txn := &expenses[i]
		anomalies = append(anomalies, model.SpendingAnomaly{
			ID:          deriveID(txn.ID, string(model.AnomalyUnusualAmount)),
			Kind:        model.AnomalyUnusualAmount,
			Severity:    clamp((a-mean)/stdDev/3, 0, 1),
			Amount:      txn.Amount,
			Merchant:    txn.Merchant,
			CategoryID:  txn.CategoryID,
			DetectedAt:  time.Now().UTC(),
			Description: fmt.Sprintf("Spend of %.2f is well above your typical %.2f", a, mean),
			Metadata: map[string]float64{
				"mean":      mean,
				"std_dev":   stdDev,
				"threshold": threshold,
			},
		})
	}
	return anomalies
}

// BudgetRecommendations emits a budgeting recommendation for every
// category whose total exceeds its monthly budget, proposing a 15% cut.
func BudgetRecommendations(categoryTotals map[string]float64, budgets map[string]float64) []model.FinancialRecommendation {
	if budgets == nil {
		budgets = DefaultBudgets
	}

	overspent := make([]string, 0, len(categoryTotals))
	for categoryID, total := range categoryTotals {
		budget, ok := budgets[categoryID]
		if ok && total > budget {
			overspent = append(overspent, categoryID)
		}
	}
	sort.Strings(overspent)

	recs := make([]model.FinancialRecommendation, 0, len(overspent))
	for _, categoryID := range overspent {
		total := categoryTotals[categoryID]
		savings := 0.15 * total
		recs = append(recs, model.FinancialRecommendation{
			ID:       deriveID(categoryID, string(model.RecommendationBudgeting)),
			Kind:     model.RecommendationBudgeting,
			Priority: model.PriorityHigh,
			Title:    fmt.Sprintf("Trim %s spending", model.CategoryName(categoryID)),
			Description: fmt.Sprintf(
				"You spent %.2f on %s this period, over the %.2f budget. Cutting 15%% would save %.2f.",
				total, model.CategoryName(categoryID), budgets[categoryID], savings),
			PotentialSavings: decimal.NewFromFloat(savings),
			Categories:       []string{categoryID},
			Actionable:       true,
			CreatedAt:        time.Now().UTC(),
		})
	}
	return recs
}

// deriveID builds a deterministic identifier from a source identity and a
// kind, so regenerating the read model yields stable IDs.
func deriveID(source, kind string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(source+":"+kind)).String()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
