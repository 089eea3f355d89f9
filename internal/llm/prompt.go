package llm

import (
	"fmt"
	"strings"

	"github.com/karanvs/fintrail/internal/model"
)

const analyzeSystemPrompt = `You are a financial transaction analyst for Indian bank notifications. You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, or commentary before or after the JSON. Start your response directly with { and end with }.`

const batchSystemPrompt = `You are a personal finance analyst. You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, or commentary before or after the JSON. Start your response directly with { and end with }.`

// buildAnalyzePrompt describes the required JSON schema for a single
// message analysis.
func buildAnalyzePrompt(raw string) string {
	var b strings.Builder

	b.WriteString("Analyze this bank notification message and extract the transaction details.\n\n")
	b.WriteString("Message: ")
	b.WriteString(raw)
	b.WriteString("\n\nRespond with a JSON object with exactly these fields:\n")
	b.WriteString(`{
  "transaction_type": "debit or credit",
  "amount": 0.0,
  "date": "YYYY-MM-DD or empty",
  "time": "HH:MM or empty",
  "bank_name": "",
  "recipient_or_sender": "",
  "account_number": "masked account digits or empty",
  "available_balance": 0.0,
  "category": "one of: Food & Dining, Transport, Shopping, Entertainment, Healthcare, Utilities, Education, Financial Services, Income, Others",
  "subcategory": "",
  "merchant_name": "",
  "transaction_method": "UPI, card, NEFT, IMPS, ATM or empty",
  "location": "",
  "reference_number": "",
  "description": "short human-readable summary",
  "confidence_score": 0.0,
  "anomaly_flags": [],
  "insights": "one sentence about this spend, or empty"
}`)
	b.WriteString("\nUse 0, empty strings or empty lists for anything the message does not state.")

	return b.String()
}

// buildBatchPrompt summarizes a transaction slice for batch insight
// generation. Amounts are pre-aggregated so the prompt stays small even
// for large histories.
func buildBatchPrompt(txns []model.Transaction) string {
	var totalIncome, totalExpense float64
	byCategory := make(map[string]float64)

	for i := range txns {
		amount, _ := txns[i].Amount.Float64()
		if txns[i].Direction == model.DirectionIncome {
			totalIncome += amount
			continue
		}
		totalExpense += amount
		byCategory[model.CategoryName(txns[i].CategoryID)] += amount
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this spending history of %d transactions.\n", len(txns))
	fmt.Fprintf(&b, "Total income: %.2f, total expenses: %.2f.\n", totalIncome, totalExpense)
	b.WriteString("Expenses by category:\n")
	for _, cat := range model.Categories() {
		if amount, ok := byCategory[cat.Name]; ok {
			fmt.Fprintf(&b, "- %s: %.2f\n", cat.Name, amount)
		}
	}

	b.WriteString("\nRespond with a JSON object with exactly these fields:\n")
	b.WriteString(`{
  "financial_health_score": 0.0,
  "spending_patterns": {},
  "anomalies_detected": [],
  "budget_insights": {},
  "recommendations": [],
  "trends": {},
  "merchant_insights": {}
}`)
	b.WriteString("\nScore financial health from 0 to 100. Map values are short strings keyed by topic.")

	return b.String()
}
