package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/karanvs/fintrail/internal/analytics"
	"github.com/karanvs/fintrail/internal/common"
	"github.com/karanvs/fintrail/internal/config"
	"github.com/karanvs/fintrail/internal/engine"
	"github.com/karanvs/fintrail/internal/ensemble"
	"github.com/karanvs/fintrail/internal/llm"
	"github.com/karanvs/fintrail/internal/service"
	"github.com/karanvs/fintrail/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("cannot open database at %s", dbPath), err)
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// createAnalyzer builds the external analysis tier from configuration. A
// missing API key yields a disabled analyzer, not an error; the cascade
// simply starts at the next tier.
func createAnalyzer() *llm.Analyzer {
	apiKey := viper.GetString("llm.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	return llm.NewAnalyzer(llm.Config{
		Provider:          viper.GetString("llm.provider"),
		APIKey:            apiKey,
		Model:             viper.GetString("llm.model"),
		BaseURL:           viper.GetString("llm.base_url"),
		Temperature:       viper.GetFloat64("llm.temperature"),
		MaxTokens:         viper.GetInt("llm.max_tokens"),
		RequestsPerMinute: viper.GetInt("llm.rate_limit"),
		AnalyzeTimeout:    viper.GetDuration("llm.analyze_timeout"),
		BatchTimeout:      viper.GetDuration("llm.batch_timeout"),
	})
}

// buildPipeline wires the full assembly pipeline: storage, the analytics
// engine with its live update channel, and the classification cascade.
func buildPipeline(ctx context.Context) (*engine.Assembler, *analytics.Engine, service.Storage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	insights := analytics.NewEngine(store)
	assembler := engine.NewAssembler(store,
		engine.WithAnalyzer(createAnalyzer()),
		engine.WithEnsemble(ensemble.NewClassifier()),
		engine.WithAnalytics(insights),
	)
	return assembler, insights, store, nil
}
