package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/karanvs/fintrail/internal/common"
	"github.com/karanvs/fintrail/internal/engine"
	"github.com/karanvs/fintrail/internal/service"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Ingest bank notification messages",
		Long: `Read notification messages and run them through the classification
pipeline. Messages come from the given file or from stdin, one per
line. A line may carry a sender header as "SENDER|message text";
without one the sender is treated as unknown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().Bool("reanalyze", false, "re-run external analysis over the stored backlog instead of ingesting")
	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	assembler, insightsEngine, store, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	defer insightsEngine.Close()

	if reanalyze, _ := cmd.Flags().GetBool("reanalyze"); reanalyze {
		return runReanalyze(cmd, assembler, store)
	}

	input := os.Stdin
	if len(args) == 1 {
		file, openErr := os.Open(args[0])
		if openErr != nil {
			return fmt.Errorf("failed to open input: %w", openErr)
		}
		defer func() { _ = file.Close() }()
		input = file
	}

	if err := ingestLines(cmd, assembler, input); err != nil {
		return err
	}

	assembler.LogStats()
	stats := assembler.Stats()
	cmd.Printf("Ingested %d transactions (%d non-financial, %d duplicates)\n",
		stats.Processed, stats.NonFinancial, stats.Duplicates)
	return nil
}

func ingestLines(cmd *cobra.Command, assembler *engine.Assembler, input io.Reader) error {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		sender := "UNKNOWN"
		message := line
		if idx := strings.Index(line, "|"); idx > 0 {
			sender = strings.TrimSpace(line[:idx])
			message = strings.TrimSpace(line[idx+1:])
		}

		if _, err := assembler.Assemble(cmd.Context(), message, sender, time.Now()); err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
	}
	return scanner.Err()
}

func runReanalyze(cmd *cobra.Command, assembler *engine.Assembler, store service.Storage) error {
	txns, err := store.GetTransactions(cmd.Context(), service.TransactionFilter{})
	if err != nil {
		return fmt.Errorf("failed to load backlog: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
	}

	enriched := 0
	for _, txn := range txns {
		err := common.WithRetry(cmd.Context(), func() error {
			reErr := assembler.Reanalyze(cmd.Context(), txn.ID)
			if errors.Is(reErr, common.ErrAnalysisUnavailable) {
				// No provider configured; retrying cannot help.
				return &common.RetryableError{Err: reErr, Retryable: false}
			}
			return reErr
		}, retryOpts)
		if errors.Is(err, common.ErrAnalysisUnavailable) {
			return fmt.Errorf("cannot re-analyze backlog: %w", err)
		}
		if err != nil {
			slog.Warn("Re-analysis skipped", "transaction", txn.ID, "error", err)
			continue
		}
		enriched++
	}

	cmd.Printf("Re-analyzed %d of %d transactions\n", enriched, len(txns))
	return nil
}
