// Package ensemble implements the weighted-vote scoring classifier shell.
// The combining contract is real; scorer implementations are pluggable and
// are expected to be replaced with trained models.
package ensemble

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/karanvs/fintrail/internal/model"
)

// Feature vector indices. The vector length is fixed so scorers can be
// trained against a stable layout.
const (
	// Lexical group.
	FeatTextLength = iota
	FeatWordCount
	FeatDigitCount
	FeatCurrencyCount
	FeatTFIDFBucket // placeholder until a corpus model exists

	// Temporal group.
	FeatHour
	FeatDayOfWeek
	FeatMonth
	FeatWeekend
	FeatBusinessHours

	// Financial pattern group.
	FeatHasAmountPattern
	FeatHasAccountPattern
	FeatHasDatePattern
	FeatHasBankCode
	FeatAmountMagnitude
	FeatDirectionSign

	// Contextual group (placeholder scores).
	FeatMerchantScore
	FeatLocationScore
	FeatPaymentMethodScore
	FeatUrgencyScore

	// VectorLen is the fixed feature vector length.
	VectorLen
)

// FeatureVector is a fixed-length numeric view of one message.
type FeatureVector [VectorLen]float64

// Context carries the non-textual inputs to feature extraction.
type Context struct {
	OccurredAt time.Time
	Merchant   string
	Direction  model.Direction
	Amount     decimal.Decimal
}

var (
	amountPattern  = regexp.MustCompile(`(?i)(?:rs\.?|inr)\s*[\d,]+`)
	accountPattern = regexp.MustCompile(`(?i)account\s*(?:no\.?\s*)?[x*\d]{4,}`)
	datePattern    = regexp.MustCompile(`\b\d{1,2}[-/][a-z0-9]{2,3}[-/]\d{2,4}\b`)
	bankPattern    = regexp.MustCompile(`(?i)\b(?:icici|hdfc|sbi|axis|kotak|pnb|idfc|canara)\b`)
)

// BuildFeatures converts normalized text plus context into the fixed
// feature vector. All features are scaled into small ranges so scorer
// weights stay comparable across groups.
func BuildFeatures(text string, ctx Context) FeatureVector {
	var v FeatureVector

	words := strings.Fields(text)
	digits := 0
	currency := 0
	for _, r := range text {
		if unicode.IsDigit(r) {
			digits++
		}
		if r == '₹' || r == '$' {
			currency++
		}
	}
	currency += strings.Count(text, "rs.") + strings.Count(text, "inr")

	v[FeatTextLength] = math.Min(float64(len(text))/500.0, 1.0)
	v[FeatWordCount] = math.Min(float64(len(words))/50.0, 1.0)
	v[FeatDigitCount] = math.Min(float64(digits)/30.0, 1.0)
	v[FeatCurrencyCount] = math.Min(float64(currency)/5.0, 1.0)
	v[FeatTFIDFBucket] = 0

	if !ctx.OccurredAt.IsZero() {
		t := ctx.OccurredAt
		v[FeatHour] = float64(t.Hour()) / 23.0
		v[FeatDayOfWeek] = float64(t.Weekday()) / 6.0
		v[FeatMonth] = float64(t.Month()-1) / 11.0
		if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
			v[FeatWeekend] = 1
		}
		if t.Hour() >= 9 && t.Hour() < 18 {
			v[FeatBusinessHours] = 1
		}
	}

	if amountPattern.MatchString(text) {
		v[FeatHasAmountPattern] = 1
	}
	if accountPattern.MatchString(text) {
		v[FeatHasAccountPattern] = 1
	}
	if datePattern.MatchString(text) {
		v[FeatHasDatePattern] = 1
	}
	if bankPattern.MatchString(text) {
		v[FeatHasBankCode] = 1
	}
	if ctx.Amount.IsPositive() {
		// log10 keeps lakhs and chai money on one scale.
		f, _ := ctx.Amount.Float64()
		v[FeatAmountMagnitude] = math.Min(math.Log10(f+1)/7.0, 1.0)
	}
	switch ctx.Direction {
	case model.DirectionExpense:
		v[FeatDirectionSign] = -1
	case model.DirectionIncome:
		v[FeatDirectionSign] = 1
	}

	if ctx.Merchant != "" {
		v[FeatMerchantScore] = 1
	}
	// Location, payment method and urgency scores stay zero until their
	// extractors exist.

	return v
}
