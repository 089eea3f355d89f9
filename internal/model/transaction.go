// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates whether money left or entered the user's account.
type Direction string

const (
	// DirectionIncome represents money entering the account.
	DirectionIncome Direction = "income"
	// DirectionExpense represents money leaving the account.
	DirectionExpense Direction = "expense"
)

// Transaction is a structured record assembled from a single bank
// notification message. It is immutable after creation except for the
// enrichment fields (Confidence, AnomalyTags, ModelInsight), which a
// re-analysis pass may update in place.
type Transaction struct {
	OccurredAt   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ID           string
	UserID       string
	Direction    Direction
	TimeOfDay    string // "15:04", empty when the message carried no time
	CategoryID   string
	Subcategory  string
	Merchant     string
	BankName     string
	AccountTail  string // masked account fragment, last 4 digits only
	SourceText   string // raw message, retained for re-analysis
	ModelInsight string
	AnomalyTags  []string
	Amount       decimal.Decimal // always positive; sign lives in Direction
	Confidence   float64
}

// DuplicateKey groups transactions that could be re-deliveries of the same
// real-world event. Duplicate checks for one key must run serialized.
func (t *Transaction) DuplicateKey() string {
	return fmt.Sprintf("%s|%s", t.Amount.String(), t.BankName)
}

// GenerateHash creates a stable content hash used as a secondary identity
// for idempotent derived objects.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s",
		t.OccurredAt.Format("2006-01-02T15:04"),
		t.Amount.String(),
		t.BankName,
		t.AccountTail)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Validate checks the invariants that must hold before persistence.
func (t *Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("transaction missing ID")
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("transaction amount must be positive, got %s", t.Amount)
	}
	if t.Direction != DirectionIncome && t.Direction != DirectionExpense {
		return fmt.Errorf("invalid direction %q", t.Direction)
	}
	if t.CategoryID == "" {
		return fmt.Errorf("transaction missing category")
	}
	if t.OccurredAt.IsZero() {
		return fmt.Errorf("transaction missing occurred-at timestamp")
	}
	return nil
}
