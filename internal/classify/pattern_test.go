package classify

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/karanvs/fintrail/internal/model"
	"github.com/karanvs/fintrail/internal/normalize"
)

func TestClassifyMerchantHint(t *testing.T) {
	c := NewPatternClassifier()

	tests := []struct {
		name         string
		hint         string
		wantCategory string
		wantMerchant string
	}{
		{"swiggy maps to food", "SWIGGY", model.CategoryFood, "Swiggy"},
		{"zomato maps to food", "zomato bangalore", model.CategoryFood, "Zomato"},
		{"uber maps to transport", "Uber India", model.CategoryTransport, "Uber"},
		{"ola maps to transport", "OLACABS", model.CategoryTransport, "Ola"},
		{"amazon maps to shopping", "AMAZON PAY", model.CategoryShopping, "Amazon"},
		{"netflix maps to entertainment", "Netflix.com", model.CategoryEntertainment, "Netflix"},
		{"pharmeasy maps to healthcare", "PHARMEASY", model.CategoryHealthcare, "PharmEasy"},
		{"airtel maps to utilities", "airtel payments", model.CategoryUtilities, "Airtel"},
		{"zerodha maps to financial", "ZERODHA BROKING", model.CategoryFinancial, "Zerodha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A merchant match wins regardless of the amount.
			for _, amount := range []int64{5, 700, 99999} {
				res := c.Classify(Input{
					Text:         "payment done",
					MerchantHint: tt.hint,
					Direction:    model.DirectionExpense,
					Amount:       decimal.NewFromInt(amount),
				})
				assert.Equal(t, tt.wantCategory, res.CategoryID)
				assert.Equal(t, tt.wantMerchant, res.Merchant)
				assert.Equal(t, model.MethodPattern, res.Method)
			}
		})
	}
}

func TestClassifyBodyMatchBeatsKeywords(t *testing.T) {
	c := NewPatternClassifier()

	// "flight" is a transport keyword, but the merchant table match on
	// "makemytrip" has higher priority and happens to agree; "amazon"
	// with a food keyword must still resolve to Shopping.
	res := c.Classify(Input{
		Text:      normalize.Message("Rs.899 spent at AMAZON for lunch order"),
		Direction: model.DirectionExpense,
		Amount:    decimal.NewFromInt(899),
	})
	assert.Equal(t, model.CategoryShopping, res.CategoryID)
	assert.Equal(t, "Amazon", res.Merchant)
}

func TestClassifyKeywordScoring(t *testing.T) {
	c := NewPatternClassifier()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"fuel resolves transport", "fuel purchase at pump petrol", model.CategoryTransport},
		{"electricity bill resolves utilities", "electricity bill payment", model.CategoryUtilities},
		{"hospital resolves healthcare", "paid at city hospital pharmacy", model.CategoryHealthcare},
		{"tuition resolves education", "school tuition fees paid", model.CategoryEducation},
		{"emi resolves financial", "emi deducted for loan", model.CategoryFinancial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(Input{
				Text:      tt.text,
				Direction: model.DirectionExpense,
				Amount:    decimal.NewFromInt(2000),
			})
			assert.Equal(t, tt.want, res.CategoryID)
			assert.Equal(t, model.MethodPattern, res.Method)
		})
	}
}

func TestClassifyKeywordTieBreaksByDeclarationOrder(t *testing.T) {
	c := NewPatternClassifier()

	// One food keyword and one transport keyword: Food & Dining is
	// declared first in the taxonomy, so it wins the tie.
	res := c.Classify(Input{
		Text:      "meal during travel",
		Direction: model.DirectionExpense,
		Amount:    decimal.NewFromInt(300),
	})
	assert.Equal(t, model.CategoryFood, res.CategoryID)
}

func TestClassifyIncomeShortCircuit(t *testing.T) {
	c := NewPatternClassifier()

	for _, amount := range []int64{100, 60000} {
		res := c.Classify(Input{
			Text:      "neft from employer",
			Direction: model.DirectionIncome,
			Amount:    decimal.NewFromInt(amount),
		})
		assert.Equal(t, model.CategoryIncome, res.CategoryID)
		assert.Equal(t, model.DirectionIncome, res.Direction)
	}
}

func TestClassifyAmountBuckets(t *testing.T) {
	c := NewPatternClassifier()

	tests := []struct {
		name   string
		amount string
		text   string
		want   string
	}{
		{"above 50k is financial", "50001", "", model.CategoryFinancial},
		{"above 10k is shopping", "10500", "", model.CategoryShopping},
		{"above 5k with bill keyword is utilities", "6000", "postpaid bill due", model.CategoryUtilities},
		{"above 5k without bill keyword is shopping", "6000", "", model.CategoryShopping},
		{"above 1k with health keyword is healthcare", "1500", "clinic visit", model.CategoryHealthcare},
		{"above 1k with education keyword is education", "1500", "exam entry", model.CategoryEducation},
		{"above 1k default is transport", "1500", "", model.CategoryTransport},
		{"below 500 is food", "120", "", model.CategoryFood},
		{"between 500 and 1000 is other", "750", "", model.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, _ := decimal.NewFromString(tt.amount)
			res := c.Classify(Input{
				Text:      tt.text,
				Direction: model.DirectionExpense,
				Amount:    amount,
			})
			assert.Equal(t, tt.want, res.CategoryID)

			// Deterministic: same input, same output.
			again := c.Classify(Input{
				Text:      tt.text,
				Direction: model.DirectionExpense,
				Amount:    amount,
			})
			assert.Equal(t, res, again)
		})
	}
}

func TestClassifyNoSignalFallsBack(t *testing.T) {
	c := NewPatternClassifier()

	res := c.Classify(Input{
		Text:      "debited",
		Direction: model.DirectionExpense,
	})
	assert.Equal(t, model.CategoryOther, res.CategoryID)
	assert.Equal(t, model.MethodFallback, res.Method)
	assert.InDelta(t, 0.5, res.Confidence, 1e-9)
}

func TestClassifyMealHourFallbackUnreachableWithAmount(t *testing.T) {
	c := NewPatternClassifier()

	// The amount ladder resolves every positive amount, so a lunchtime
	// timestamp never reaches the meal-hour layer when an amount exists.
	lunch := time.Date(2025, 3, 3, 13, 0, 0, 0, time.UTC)
	res := c.Classify(Input{
		OccurredAt: lunch,
		Text:       "",
		Direction:  model.DirectionExpense,
		Amount:     decimal.NewFromInt(750),
	})
	assert.Equal(t, model.CategoryOther, res.CategoryID)
}

func TestClassifyMealHourFallbackWithoutAmount(t *testing.T) {
	c := NewPatternClassifier()

	lunch := time.Date(2025, 3, 3, 13, 0, 0, 0, time.UTC)
	res := c.Classify(Input{
		OccurredAt: lunch,
		Text:       "debited",
		Direction:  model.DirectionExpense,
	})
	assert.Equal(t, model.CategoryFood, res.CategoryID)
}
