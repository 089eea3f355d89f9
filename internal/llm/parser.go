package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/karanvs/fintrail/internal/model"
)

// MessageAnalysis is the strict typed form of the single-message analysis
// response. Unknown fields in the body are ignored; missing fields map to
// documented defaults rather than failing the parse.
type MessageAnalysis struct {
	TransactionType   string   `json:"transaction_type" validate:"omitempty,oneof=debit credit expense income"`
	Amount            float64  `json:"amount" validate:"gte=0"`
	Date              string   `json:"date"`
	Time              string   `json:"time"`
	BankName          string   `json:"bank_name"`
	Counterparty      string   `json:"recipient_or_sender"`
	AccountNumber     string   `json:"account_number"`
	AvailableBalance  float64  `json:"available_balance" validate:"gte=0"`
	Category          string   `json:"category"`
	Subcategory       string   `json:"subcategory"`
	MerchantName      string   `json:"merchant_name"`
	TransactionMethod string   `json:"transaction_method"`
	Location          string   `json:"location"`
	ReferenceNumber   string   `json:"reference_number"`
	Description       string   `json:"description"`
	ConfidenceScore   *float64 `json:"confidence_score" validate:"omitempty,gte=0,lte=1"`
	AnomalyFlags      []string `json:"anomaly_flags"`
	Insights          string   `json:"insights"`
}

// BatchAnalysis is the strict typed form of the batch insight response.
type BatchAnalysis struct {
	FinancialHealthScore float64           `json:"financial_health_score" validate:"gte=0,lte=100"`
	SpendingPatterns     map[string]string `json:"spending_patterns"`
	AnomaliesDetected    []string          `json:"anomalies_detected"`
	BudgetInsights       map[string]string `json:"budget_insights"`
	Recommendations      []string          `json:"recommendations"`
	Trends               map[string]string `json:"trends"`
	MerchantInsights     map[string]string `json:"merchant_insights"`
}

var validate = validator.New()

// cleanMarkdownWrapper strips a markdown code fence around a JSON body.
// Models occasionally wrap their output despite being told not to.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx >= 0 {
			content = content[idx+1:]
		} else {
			content = strings.TrimPrefix(content, "```json")
			content = strings.TrimPrefix(content, "```")
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	return strings.TrimSpace(content)
}

// parseMessageAnalysis parses and validates a single-message analysis body.
func parseMessageAnalysis(content string) (*MessageAnalysis, error) {
	content = cleanMarkdownWrapper(content)

	var analysis MessageAnalysis
	if err := json.Unmarshal([]byte(content), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := validate.Struct(&analysis); err != nil {
		return nil, fmt.Errorf("analysis response failed validation: %w", err)
	}

	applyMessageDefaults(&analysis)

	return &analysis, nil
}

// parseBatchAnalysis parses and validates a batch insight body.
func parseBatchAnalysis(content string) (*BatchAnalysis, error) {
	content = cleanMarkdownWrapper(content)

	var analysis BatchAnalysis
	if err := json.Unmarshal([]byte(content), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := validate.Struct(&analysis); err != nil {
		return nil, fmt.Errorf("batch response failed validation: %w", err)
	}

	return &analysis, nil
}

// applyMessageDefaults fills documented defaults for absent fields.
func applyMessageDefaults(a *MessageAnalysis) {
	if a.Category == "" {
		a.Category = "Others"
	}
	if a.ConfidenceScore == nil {
		def := 0.8
		a.ConfidenceScore = &def
	}
	if a.AnomalyFlags == nil {
		a.AnomalyFlags = []string{}
	}
}

// categoryAliases maps model-reported category names onto the taxonomy.
var categoryAliases = map[string]string{
	"food":               model.CategoryFood,
	"food & dining":      model.CategoryFood,
	"dining":             model.CategoryFood,
	"groceries":          model.CategoryFood,
	"transport":          model.CategoryTransport,
	"transportation":     model.CategoryTransport,
	"travel":             model.CategoryTransport,
	"shopping":           model.CategoryShopping,
	"retail":             model.CategoryShopping,
	"entertainment":      model.CategoryEntertainment,
	"healthcare":         model.CategoryHealthcare,
	"health":             model.CategoryHealthcare,
	"medical":            model.CategoryHealthcare,
	"utilities":          model.CategoryUtilities,
	"bills":              model.CategoryUtilities,
	"education":          model.CategoryEducation,
	"financial services": model.CategoryFinancial,
	"finance":            model.CategoryFinancial,
	"investment":         model.CategoryFinancial,
	"income":             model.CategoryIncome,
	"salary":             model.CategoryIncome,
	"other":              model.CategoryOther,
	"others":             model.CategoryOther,
}

// resolveCategory maps a reported category name to a taxonomy ID,
// defaulting to the "Other" sentinel.
func resolveCategory(name string) string {
	if id, ok := categoryAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return id
	}
	return model.CategoryOther
}

// ToClassificationResult maps a parsed analysis into the common result
// shape the record assembler consumes.
func (a *MessageAnalysis) ToClassificationResult() *model.ClassificationResult {
	direction := model.DirectionExpense
	switch strings.ToLower(a.TransactionType) {
	case "credit", "income":
		direction = model.DirectionIncome
	}

	categoryID := resolveCategory(a.Category)
	if categoryID == model.CategoryIncome {
		direction = model.DirectionIncome
	}

	return &model.ClassificationResult{
		CategoryID:  categoryID,
		Subcategory: a.Subcategory,
		Direction:   direction,
		Confidence:  *a.ConfidenceScore,
		Method:      model.MethodExternal,
		Merchant:    a.MerchantName,
		Description: a.Description,
	}
}

// ExtractedAmount returns the model-reported amount as a decimal, with a
// flag for presence.
func (a *MessageAnalysis) ExtractedAmount() (decimal.Decimal, bool) {
	if a.Amount <= 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(a.Amount), true
}

// AccountTail reduces the reported account number to its masked last four
// digits; records never hold more than that.
func (a *MessageAnalysis) AccountTail() string {
	digits := make([]rune, 0, len(a.AccountNumber))
	for _, r := range a.AccountNumber {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return ""
	}
	return string(digits[len(digits)-4:])
}

// toInsightsSummary maps a parsed batch analysis into the domain shape.
func (b *BatchAnalysis) toInsightsSummary(now time.Time) *model.InsightsSummary {
	return &model.InsightsSummary{
		GeneratedAt:          now,
		FinancialHealthScore: b.FinancialHealthScore,
		SpendingPatterns:     b.SpendingPatterns,
		BudgetInsights:       b.BudgetInsights,
		Trends:               b.Trends,
		MerchantInsights:     b.MerchantInsights,
		AnomaliesDetected:    b.AnomaliesDetected,
		Recommendations:      b.Recommendations,
	}
}
