package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrendDirection classifies the recent movement of a monthly series.
type TrendDirection string

const (
	// TrendIncreasing indicates spend rose more than 5% period over period.
	TrendIncreasing TrendDirection = "increasing"
	// TrendDecreasing indicates spend fell more than 5% period over period.
	TrendDecreasing TrendDirection = "decreasing"
	// TrendStable indicates movement within the ±5% band.
	TrendStable TrendDirection = "stable"
	// TrendUnknown indicates too few points to classify.
	TrendUnknown TrendDirection = "unknown"
)

// AnomalyKind identifies what made a transaction unusual.
type AnomalyKind string

// Anomaly kinds.
const (
	AnomalyUnusualAmount    AnomalyKind = "unusual_amount"
	AnomalyUnusualFrequency AnomalyKind = "unusual_frequency"
	AnomalyUnusualTime      AnomalyKind = "unusual_time"
	AnomalyUnusualMerchant  AnomalyKind = "unusual_merchant"
)

// SpendingAnomaly describes one statistically unusual transaction. IDs are
// derived deterministically from the source transaction and kind so that
// regeneration is idempotent.
type SpendingAnomaly struct {
	DetectedAt  time.Time
	ID          string
	Kind        AnomalyKind
	Merchant    string
	CategoryID  string
	Description string
	Metadata    map[string]float64
	Amount      decimal.Decimal
	Severity    float64 // in [0,1]
}

// RecommendationKind identifies the area a recommendation targets.
type RecommendationKind string

// Recommendation kinds.
const (
	RecommendationBudgeting    RecommendationKind = "budgeting"
	RecommendationSaving       RecommendationKind = "saving"
	RecommendationInvestment   RecommendationKind = "investment"
	RecommendationOptimization RecommendationKind = "optimization"
	RecommendationCashflow     RecommendationKind = "cashflow"
	RecommendationSpending     RecommendationKind = "spending"
)

// RecommendationPriority orders recommendations for presentation.
type RecommendationPriority string

// Recommendation priorities.
const (
	PriorityLow      RecommendationPriority = "low"
	PriorityMedium   RecommendationPriority = "medium"
	PriorityHigh     RecommendationPriority = "high"
	PriorityCritical RecommendationPriority = "critical"
)

// FinancialRecommendation is one actionable suggestion derived from the
// accumulated transaction set.
type FinancialRecommendation struct {
	CreatedAt        time.Time
	ID               string
	Kind             RecommendationKind
	Title            string
	Description      string
	Priority         RecommendationPriority
	Categories       []string
	PotentialSavings decimal.Decimal
	Actionable       bool
}

// MonthlyPoint is one month of the spend trend series.
type MonthlyPoint struct {
	Month  string // "2006-01"
	Amount float64
}

// RankedEntry is one row of a top-N ranking.
type RankedEntry struct {
	Name   string
	Amount float64
}

// TrendPrediction is the least-squares projection of the next month.
type TrendPrediction struct {
	Direction  TrendDirection
	NextAmount float64
	Slope      float64
	Confidence float64
}

// SpendingInsights is the derived read model over a time window. It is
// never persisted; every call rebuilds it from the transaction set.
type SpendingInsights struct {
	GeneratedAt       time.Time
	PeriodStart       time.Time
	PeriodEnd         time.Time
	CategoryBreakdown map[string]float64
	Trend             TrendDirection
	MonthlyTrend      []MonthlyPoint
	TopCategories     []RankedEntry
	TopMerchants      []RankedEntry
	Anomalies         []SpendingAnomaly
	Recommendations   []FinancialRecommendation
	Prediction        TrendPrediction
	TotalIncome       float64
	TotalExpense      float64
	Net               float64
	DailyAverage      float64
	WeeklyAverage     float64
	MonthlyAverage    float64
	PeriodDelta       float64 // percent change vs the preceding period
	Demo              bool    // true when built from illustrative data
}

// InsightsSummary is the mapped result of a batch analysis by the external
// language model. Fields the model omits keep their zero values.
type InsightsSummary struct {
	GeneratedAt          time.Time
	SpendingPatterns     map[string]string
	BudgetInsights       map[string]string
	Trends               map[string]string
	MerchantInsights     map[string]string
	AnomaliesDetected    []string
	Recommendations      []string
	FinancialHealthScore float64
}
