package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/karanvs/fintrail/internal/model"
	"github.com/karanvs/fintrail/internal/service"
)

// topRankSize caps the ranked top-category and top-merchant lists.
const topRankSize = 5

// Engine builds the SpendingInsights read model and evaluates newly
// assembled transactions for live update events.
type Engine struct {
	store   service.Storage
	broker  *Broker
	budgets map[string]float64
}

// NewEngine creates an analytics engine over the given store using the
// default budget table.
func NewEngine(store service.Storage) *Engine {
	return &Engine{
		store:   store,
		broker:  NewBroker(),
		budgets: DefaultBudgets,
	}
}

// Broker exposes the live update channel for subscribers.
func (e *Engine) Broker() *Broker {
	return e.broker
}

// Close shuts down the live update channel.
func (e *Engine) Close() {
	e.broker.Close()
}

// Insights rebuilds the full spending projection for the window. While
// the transaction set is empty it serves the labeled demo snapshot so
// consumers always receive a well-formed value.
func (e *Engine) Insights(ctx context.Context, window service.DateRange) (*model.SpendingInsights, error) {
	count, err := e.store.CountTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}
	if count == 0 {
		return DemoInsights(), nil
	}

	expenses, err := e.store.GetExpensesByPeriod(ctx, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	income, err := e.store.GetIncomeByPeriod(ctx, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load income: %w", err)
	}

	totalExpense := sumAmounts(expenses)
	totalIncome := sumAmounts(income)

	breakdown := make(map[string]float64)
	for i := range expenses {
		breakdown[expenses[i].CategoryID] += expenses[i].Amount.InexactFloat64()
	}

	categorySummary, err := e.store.GetCategorySummary(ctx, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load category summary: %w", err)
	}
	merchantSummary, err := e.store.GetMerchantSummary(ctx, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load merchant summary: %w", err)
	}

	series := monthlySeries(expenses)

	days := window.End.Sub(window.Start).Hours() / 24
	if days < 1 {
		days = 1
	}
	dailyAverage := totalExpense / days

	return &model.SpendingInsights{
		GeneratedAt:       time.Now().UTC(),
		PeriodStart:       window.Start,
		PeriodEnd:         window.End,
		TotalIncome:       totalIncome,
		TotalExpense:      totalExpense,
		Net:               totalIncome - totalExpense,
		CategoryBreakdown: breakdown,
		MonthlyTrend:      series,
		Trend:             ClassifyTrend(series),
		Prediction:        PredictNextMonth(series),
		TopCategories:     rank(categorySummary),
		TopMerchants:      rank(merchantSummary),
		Anomalies:         DetectAmountAnomalies(expenses),
		Recommendations:   BudgetRecommendations(breakdown, e.budgets),
		DailyAverage:      dailyAverage,
		WeeklyAverage:     dailyAverage * 7,
		MonthlyAverage:    dailyAverage * 30,
		PeriodDelta:       e.periodDelta(ctx, window, totalExpense),
	}, nil
}

// periodDelta compares window spend against the immediately preceding
// window of the same length. Failures degrade to zero rather than
// failing the whole projection.
func (e *Engine) periodDelta(ctx context.Context, window service.DateRange, current float64) float64 {
	length := window.End.Sub(window.Start)
	previous, err := e.store.GetExpensesByPeriod(ctx, window.Start.Add(-length), window.Start)
	if err != nil {
		slog.Warn("Failed to load preceding period", "error", err)
		return 0
	}

	prevTotal := sumAmounts(previous)
	if prevTotal == 0 {
		return 0
	}
	return (current - prevTotal) / prevTotal * 100
}

// Record evaluates one newly persisted transaction and publishes any
// resulting live update events. It never fails: evaluation problems are
// logged and the event is simply not emitted.
func (e *Engine) Record(ctx context.Context, txn *model.Transaction) {
	if txn == nil || txn.Direction != model.DirectionExpense {
		return
	}

	e.checkAmountAnomaly(ctx, txn)
	e.checkBudget(ctx, txn)
	e.checkMerchantPattern(ctx, txn)
}

func (e *Engine) checkAmountAnomaly(ctx context.Context, txn *model.Transaction) {
	start := txn.OccurredAt.AddDate(0, 0, -90)
	end := txn.OccurredAt.Add(time.Second)
	history, err := e.store.GetTransactions(ctx, service.TransactionFilter{
		StartDate:  &start,
		EndDate:    &end,
		CategoryID: txn.CategoryID,
		Direction:  model.DirectionExpense,
	})
	if err != nil {
		slog.Warn("Anomaly evaluation failed", "error", err, "transaction", txn.ID)
		return
	}

	wantID := deriveID(txn.ID, string(model.AnomalyUnusualAmount))
	for _, anomaly := range DetectAmountAnomalies(history) {
		if anomaly.ID != wantID {
			continue
		}
		found := anomaly
		e.broker.Publish(Event{
			Kind:        EventAnomalyDetected,
			Transaction: txn,
			Anomaly:     &found,
			Detail:      found.Description,
		})
		return
	}
}

func (e *Engine) checkBudget(ctx context.Context, txn *model.Transaction) {
	budget, ok := e.budgets[txn.CategoryID]
	if !ok {
		return
	}

	monthStart := time.Date(txn.OccurredAt.Year(), txn.OccurredAt.Month(), 1, 0, 0, 0, 0, txn.OccurredAt.Location())
	end := txn.OccurredAt.Add(time.Second)
	monthToDate, err := e.store.GetTransactions(ctx, service.TransactionFilter{
		StartDate:  &monthStart,
		EndDate:    &end,
		CategoryID: txn.CategoryID,
		Direction:  model.DirectionExpense,
	})
	if err != nil {
		slog.Warn("Budget evaluation failed", "error", err, "transaction", txn.ID)
		return
	}

	total := sumAmounts(monthToDate)
	if total <= budget {
		return
	}

	recs := BudgetRecommendations(map[string]float64{txn.CategoryID: total}, e.budgets)
	event := Event{
		Kind:        EventBudgetAlert,
		Transaction: txn,
		Detail: fmt.Sprintf("%s spending %.2f exceeded the %.2f monthly budget",
			model.CategoryName(txn.CategoryID), total, budget),
	}
	if len(recs) > 0 {
		event.Recommendation = &recs[0]
	}
	e.broker.Publish(event)
}

func (e *Engine) checkMerchantPattern(ctx context.Context, txn *model.Transaction) {
	if txn.Merchant == "" {
		return
	}

	start := txn.OccurredAt.AddDate(0, 0, -30)
	end := txn.OccurredAt.Add(time.Second)
	recent, err := e.store.GetTransactions(ctx, service.TransactionFilter{
		StartDate: &start,
		EndDate:   &end,
		Direction: model.DirectionExpense,
	})
	if err != nil {
		slog.Warn("Pattern evaluation failed", "error", err, "transaction", txn.ID)
		return
	}

	visits := 0
	for i := range recent {
		if strings.EqualFold(recent[i].Merchant, txn.Merchant) {
			visits++
		}
	}
	if visits < 3 {
		return
	}

	e.broker.Publish(Event{
		Kind:        EventPatternRecognized,
		Transaction: txn,
		Detail:      fmt.Sprintf("%d visits to %s in the last 30 days", visits, txn.Merchant),
	})
}

func sumAmounts(txns []model.Transaction) float64 {
	var total float64
	for i := range txns {
		total += txns[i].Amount.InexactFloat64()
	}
	return total
}

// monthlySeries folds transactions into a month-keyed series, oldest
// month first.
func monthlySeries(txns []model.Transaction) []model.MonthlyPoint {
	byMonth := make(map[string]float64)
	for i := range txns {
		byMonth[txns[i].OccurredAt.Format("2006-01")] += txns[i].Amount.InexactFloat64()
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	series := make([]model.MonthlyPoint, 0, len(months))
	for _, month := range months {
		series = append(series, model.MonthlyPoint{Month: month, Amount: byMonth[month]})
	}
	return series
}

// rank converts a name→total summary into a ranked top-N list, largest
// first with name as the tie break.
func rank(summary map[string]float64) []model.RankedEntry {
	entries := make([]model.RankedEntry, 0, len(summary))
	for name, amount := range summary {
		entries = append(entries, model.RankedEntry{Name: name, Amount: amount})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Amount != entries[j].Amount {
			return entries[i].Amount > entries[j].Amount
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > topRankSize {
		entries = entries[:topRankSize]
	}
	return entries
}
