// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/karanvs/fintrail/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID string
	Direction  model.Direction
	Limit      int
	Offset     int
}

// EnrichmentPatch carries the fields a re-analysis pass may update on an
// existing transaction. Nil pointers leave the stored value untouched.
type EnrichmentPatch struct {
	Confidence   *float64
	ModelInsight *string
	AnomalyTags  []string
}

// Storage defines the contract for the persistence layer. The core never
// assumes a specific engine, only this relational-ish surface.
type Storage interface {
	// Transaction operations
	SaveTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	FindDuplicate(ctx context.Context, candidate *model.Transaction, window time.Duration) (*model.Transaction, error)
	UpdateEnrichment(ctx context.Context, id string, patch EnrichmentPatch) error
	CountTransactions(ctx context.Context) (int, error)
	Clear(ctx context.Context) (int64, error)

	// Aggregation queries
	GetExpensesByPeriod(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	GetIncomeByPeriod(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	GetCategorySummary(ctx context.Context, start, end time.Time) (map[string]float64, error)
	GetMerchantSummary(ctx context.Context, start, end time.Time) (map[string]float64, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range (start inclusive,
// end exclusive).
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}
