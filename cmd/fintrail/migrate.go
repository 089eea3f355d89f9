package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/karanvs/fintrail/internal/config"
	"github.com/karanvs/fintrail/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures your local database has all the required
tables and indexes for the application to function properly.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("clear", false, "delete all stored transactions after migrating")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	slog.Info("Starting database migration", "database", dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	cmd.Printf("Database schema at version %d\n", storage.ExpectedSchemaVersion)

	if clear, _ := cmd.Flags().GetBool("clear"); clear {
		removed, clearErr := store.Clear(cmd.Context())
		if clearErr != nil {
			return fmt.Errorf("failed to clear transactions: %w", clearErr)
		}
		cmd.Printf("Cleared %d transactions\n", removed)
	}

	return nil
}
