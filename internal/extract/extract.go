// Package extract pulls structured fields out of raw bank notification text.
// It works on the raw message, not the normalized form, because amount and
// account formats depend on punctuation the normalizer strips.
package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Fields holds everything the extractor could recover from one message.
type Fields struct {
	AccountTail string
	BankName    string
	Reference   string
	TimeOfDay   string
	Amount      decimal.Decimal
	Balance     decimal.Decimal
	HasAmount   bool
	HasBalance  bool
}

var (
	amountRe  = regexp.MustCompile(`(?i)(?:rs\.?|inr|₹)\s*([\d,]+(?:\.\d{1,2})?)`)
	balanceRe = regexp.MustCompile(`(?i)(?:available balance|avl\s*bal|bal)\s*[:\s]\s*(?:rs\.?|inr|₹)?\s*([\d,]+(?:\.\d{1,2})?)`)
	accountRe = regexp.MustCompile(`(?i)(?:a/c|account|acct)\s*(?:no\.?\s*)?[x*]*(\d{4})\b`)
	refRe     = regexp.MustCompile(`(?i)(?:ref(?:erence)?|utr|txn\s*id)\s*[:.]?\s*(?:no\.?\s*)?:?\s*([a-z0-9]{6,})`)
	timeRe    = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
)

// bankCodes maps sender-header and in-message markers to display names.
// Sender IDs look like "AD-ICICIB" or "VM-HDFCBK".
var bankCodes = []struct {
	code string
	name string
}{
	{"ICICI", "ICICI Bank"},
	{"HDFC", "HDFC Bank"},
	{"SBI", "State Bank of India"},
	{"AXIS", "Axis Bank"},
	{"KOTAK", "Kotak Mahindra Bank"},
	{"PNB", "Punjab National Bank"},
	{"BOB", "Bank of Baroda"},
	{"IDFC", "IDFC First Bank"},
	{"YESBNK", "Yes Bank"},
	{"CANARA", "Canara Bank"},
	{"INDUS", "IndusInd Bank"},
	{"FEDERAL", "Federal Bank"},
}

// Message extracts structured fields from a raw notification and its sender
// header. Missing fields are left at their zero values.
func Message(raw, sender string) Fields {
	var f Fields

	// Balance first: its amount must not be mistaken for the
	// transaction amount, so it is cut out of the text before the
	// amount scan.
	remaining := raw
	if m := balanceRe.FindStringSubmatchIndex(raw); m != nil {
		f.Balance, f.HasBalance = parseAmount(raw[m[2]:m[3]])
		remaining = raw[:m[0]] + raw[m[1]:]
	}

	if m := amountRe.FindStringSubmatch(remaining); m != nil {
		f.Amount, f.HasAmount = parseAmount(m[1])
	}

	if m := accountRe.FindStringSubmatch(raw); m != nil {
		f.AccountTail = m[1]
	}

	if m := refRe.FindStringSubmatch(raw); m != nil {
		f.Reference = strings.ToUpper(m[1])
	}

	if m := timeRe.FindStringSubmatch(raw); m != nil {
		f.TimeOfDay = m[0]
		if len(m[1]) == 1 {
			f.TimeOfDay = "0" + f.TimeOfDay
		}
	}

	f.BankName = bankName(sender, raw)

	return f
}

func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

func bankName(sender, raw string) string {
	haystack := strings.ToUpper(sender + " " + raw)
	for _, b := range bankCodes {
		if strings.Contains(haystack, b.code) {
			return b.name
		}
	}
	return ""
}
