package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/karanvs/fintrail/internal/demo"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with a synthetic message corpus",
		Long: `Generate a realistic corpus of bank notification messages and run it
through the full assembly pipeline. Useful for trying the insights
commands without real message access.`,
		RunE: runSeed,
	}

	cmd.Flags().Int("count", 120, "number of messages to generate")
	cmd.Flags().Uint64("seed", 42, "random seed for reproducible corpora")
	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	assembler, insightsEngine, store, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	defer insightsEngine.Close()

	count, _ := cmd.Flags().GetInt("count")
	seed, _ := cmd.Flags().GetUint64("seed")

	generator := demo.NewGenerator(seed, time.Now())
	for _, msg := range generator.Messages(count) {
		if _, err := assembler.Assemble(ctx, msg.Raw, msg.Sender, msg.SentAt); err != nil {
			return err
		}
	}

	assembler.LogStats()
	stats := assembler.Stats()
	cmd.Printf("Seeded %d transactions from %d messages (%d non-financial, %d duplicates)\n",
		stats.Processed, count, stats.NonFinancial, stats.Duplicates)
	return nil
}
