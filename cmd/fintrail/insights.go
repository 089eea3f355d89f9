package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/karanvs/fintrail/internal/analytics"
	"github.com/karanvs/fintrail/internal/model"
	"github.com/karanvs/fintrail/internal/service"
)

func insightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show spending insights for a recent window",
		Long: `Rebuild the spending projection over the trailing window: totals,
category breakdown, monthly trend with a next-month prediction,
anomalies and budget recommendations.`,
		RunE: runInsights,
	}

	cmd.Flags().Int("months", 3, "window length in months, ending now")
	cmd.Flags().Bool("deep", false, "also run external batch analysis over the window")
	return cmd
}

func runInsights(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	months, _ := cmd.Flags().GetInt("months")
	if months < 1 {
		months = 1
	}

	insightsEngine := analytics.NewEngine(store)
	defer insightsEngine.Close()

	now := time.Now().UTC()
	window := service.DateRange{Start: now.AddDate(0, -months, 0), End: now}
	insights, err := insightsEngine.Insights(ctx, window)
	if err != nil {
		return fmt.Errorf("failed to build insights: %w", err)
	}

	printInsights(cmd, insights)

	if deep, _ := cmd.Flags().GetBool("deep"); deep && !insights.Demo {
		if err := runDeepAnalysis(cmd, store, window); err != nil {
			return err
		}
	}
	return nil
}

// runDeepAnalysis sends the window's transactions through the external
// batch analyzer and renders the returned summary.
func runDeepAnalysis(cmd *cobra.Command, store service.Storage, window service.DateRange) error {
	analyzer := createAnalyzer()
	if !analyzer.Enabled() {
		return fmt.Errorf("deep analysis requires a configured API key")
	}
	defer analyzer.Close()

	txns, err := store.GetTransactions(cmd.Context(), service.TransactionFilter{
		StartDate: &window.Start,
		EndDate:   &window.End,
	})
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	summary := analyzer.AnalyzeBatch(cmd.Context(), txns)
	if summary == nil {
		cmd.Println("\nDeep analysis unavailable; see logs for details.")
		return nil
	}

	cmd.Printf("\nDeep analysis (health score %.0f/100):\n", summary.FinancialHealthScore)
	for category, pattern := range summary.SpendingPatterns {
		cmd.Printf("  %-20s %s\n", category, pattern)
	}
	for _, anomaly := range summary.AnomaliesDetected {
		cmd.Printf("  anomaly: %s\n", anomaly)
	}
	for _, rec := range summary.Recommendations {
		cmd.Printf("  suggest: %s\n", rec)
	}
	return nil
}

func printInsights(cmd *cobra.Command, insights *model.SpendingInsights) {
	if insights.Demo {
		cmd.Println("No transactions yet; showing illustrative demo data.")
		cmd.Println()
	}

	cmd.Printf("Spending insights %s to %s\n",
		insights.PeriodStart.Format("2006-01-02"), insights.PeriodEnd.Format("2006-01-02"))
	cmd.Printf("  Income:   %12.2f\n", insights.TotalIncome)
	cmd.Printf("  Expenses: %12.2f\n", insights.TotalExpense)
	cmd.Printf("  Net:      %12.2f\n", insights.Net)
	cmd.Printf("  Daily average %.2f, trend %s", insights.DailyAverage, insights.Trend)
	if insights.PeriodDelta != 0 {
		cmd.Printf(" (%+.1f%% vs previous period)", insights.PeriodDelta)
	}
	cmd.Println()

	if len(insights.MonthlyTrend) > 0 {
		cmd.Println("\nMonthly spend:")
		for _, point := range insights.MonthlyTrend {
			cmd.Printf("  %s  %12.2f\n", point.Month, point.Amount)
		}
		if insights.Prediction.Direction != model.TrendUnknown {
			cmd.Printf("  next   %12.2f (confidence %.0f%%)\n",
				insights.Prediction.NextAmount, insights.Prediction.Confidence*100)
		}
	}

	if len(insights.TopCategories) > 0 {
		cmd.Println("\nTop categories:")
		for _, entry := range insights.TopCategories {
			cmd.Printf("  %-20s %12.2f\n", entry.Name, entry.Amount)
		}
	}

	if len(insights.TopMerchants) > 0 {
		cmd.Println("\nTop merchants:")
		for _, entry := range insights.TopMerchants {
			cmd.Printf("  %-20s %12.2f\n", entry.Name, entry.Amount)
		}
	}

	if len(insights.Anomalies) > 0 {
		cmd.Println("\nAnomalies:")
		for _, anomaly := range insights.Anomalies {
			cmd.Printf("  [%s] %s (severity %.2f)\n", anomaly.Kind, anomaly.Description, anomaly.Severity)
		}
	}

	if len(insights.Recommendations) > 0 {
		cmd.Println("\nRecommendations:")
		for _, rec := range insights.Recommendations {
			cmd.Printf("  [%s] %s\n", rec.Priority, rec.Title)
			cmd.Printf("        %s\n", rec.Description)
		}
	}
}
