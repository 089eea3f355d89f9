// Package classify implements the layered heuristic classifier for
// normalized bank notification text.
package classify

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karanvs/fintrail/internal/model"
)

// Input carries everything the pattern classifier may consult. Text must
// already be normalized.
type Input struct {
	OccurredAt   time.Time
	Text         string
	MerchantHint string
	Direction    model.Direction
	Amount       decimal.Decimal
}

// PatternClassifier maps normalized text plus context to a classification
// using layered heuristics in strict priority order.
type PatternClassifier struct{}

// NewPatternClassifier creates a pattern classifier.
func NewPatternClassifier() *PatternClassifier {
	return &PatternClassifier{}
}

// Classify resolves a category with the first matching layer:
//  1. merchant table against the merchant hint
//  2. merchant table against the message body
//  3. contextual keyword scoring
//  4. income short-circuit
//  5. amount buckets
//  6. meal-hour fallback
//
// First match wins, no backtracking. It never fails; when nothing matches
// the result is the "Other" sentinel with confidence 0.5.
func (c *PatternClassifier) Classify(in Input) model.ClassificationResult {
	direction := in.Direction
	if direction == "" {
		direction = DetermineDirection(in.Text)
	}

	// Layer 1: direct merchant hint match.
	if hint := strings.ToLower(strings.TrimSpace(in.MerchantHint)); hint != "" {
		if entry := matchMerchant(hint); entry != nil {
			return merchantResult(entry, direction, 0.9)
		}
	}

	// Layer 2: merchant table against the body.
	if entry := matchMerchant(in.Text); entry != nil {
		return merchantResult(entry, direction, 0.85)
	}

	// Layer 3: contextual keyword scoring. Ties break by taxonomy
	// declaration order, so iterate categories in that order.
	bestCategory, bestHits := "", 0
	for _, cat := range model.Categories() {
		hits := 0
		for _, kw := range categoryKeywords[cat.ID] {
			hits += strings.Count(in.Text, kw)
		}
		if hits > bestHits {
			bestCategory, bestHits = cat.ID, hits
		}
	}
	if bestHits >= 1 {
		return model.ClassificationResult{
			CategoryID:  bestCategory,
			Direction:   direction,
			Confidence:  0.7,
			Method:      model.MethodPattern,
			Description: describe(bestCategory, direction),
		}
	}

	// Layer 4: income short-circuits regardless of amount.
	if direction == model.DirectionIncome {
		return model.ClassificationResult{
			CategoryID:  model.CategoryIncome,
			Direction:   direction,
			Confidence:  0.75,
			Method:      model.MethodPattern,
			Description: describe(model.CategoryIncome, direction),
		}
	}

	// Layer 5: amount buckets for expenses with no textual signal.
	if category, ok := amountBucket(in.Amount, in.Text); ok {
		return model.ClassificationResult{
			CategoryID:  category,
			Direction:   direction,
			Confidence:  0.6,
			Method:      model.MethodPattern,
			Description: describe(category, direction),
		}
	}

	// Layer 6: meal-hour fallback for small amounts. Unreachable while
	// the amount ladder ends in a default bucket; retained so the ladder
	// can be loosened without reordering the layers.
	if isMealHour(in.OccurredAt) && in.Amount.LessThan(decimal.NewFromInt(500)) {
		return model.ClassificationResult{
			CategoryID:  model.CategoryFood,
			Direction:   direction,
			Confidence:  0.55,
			Method:      model.MethodPattern,
			Description: describe(model.CategoryFood, direction),
		}
	}

	return model.ClassificationResult{
		CategoryID:  model.CategoryOther,
		Direction:   direction,
		Confidence:  0.5,
		Method:      model.MethodFallback,
		Description: describe(model.CategoryOther, direction),
	}
}

// amountBucket assigns a category purely from the amount. The final branch
// always resolves, which makes the whole ladder total.
func amountBucket(amount decimal.Decimal, text string) (string, bool) {
	if !amount.IsPositive() {
		return "", false
	}

	switch {
	case amount.GreaterThan(decimal.NewFromInt(50000)):
		return model.CategoryFinancial, true
	case amount.GreaterThan(decimal.NewFromInt(10000)):
		return model.CategoryShopping, true
	case amount.GreaterThan(decimal.NewFromInt(5000)):
		if containsAny(text, billKeywords) {
			return model.CategoryUtilities, true
		}
		return model.CategoryShopping, true
	case amount.GreaterThan(decimal.NewFromInt(1000)):
		if containsAny(text, categoryKeywords[model.CategoryHealthcare]) {
			return model.CategoryHealthcare, true
		}
		if containsAny(text, categoryKeywords[model.CategoryEducation]) {
			return model.CategoryEducation, true
		}
		return model.CategoryTransport, true
	case amount.LessThan(decimal.NewFromInt(500)):
		return model.CategoryFood, true
	default:
		return model.CategoryOther, true
	}
}

func matchMerchant(text string) *merchantEntry {
	for i := range merchantTable {
		if strings.Contains(text, merchantTable[i].keyword) {
			return &merchantTable[i]
		}
	}
	return nil
}

func merchantResult(entry *merchantEntry, direction model.Direction, confidence float64) model.ClassificationResult {
	return model.ClassificationResult{
		CategoryID:  entry.category,
		Direction:   direction,
		Confidence:  confidence,
		Method:      model.MethodPattern,
		Merchant:    entry.display,
		Description: fmt.Sprintf("Payment to %s", entry.display),
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func isMealHour(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	h := t.Hour()
	return (h >= 7 && h <= 10) || (h >= 12 && h <= 14) || (h >= 19 && h <= 22)
}

func describe(categoryID string, direction model.Direction) string {
	if direction == model.DirectionIncome {
		return fmt.Sprintf("%s received", model.CategoryName(categoryID))
	}
	return fmt.Sprintf("%s expense", model.CategoryName(categoryID))
}
