// Package normalize prepares raw bank notification text for classification.
package normalize

import (
	"regexp"
	"strings"
)

// abbreviations maps common banking shorthand to the full word. Expansion
// happens before punctuation stripping so forms like "a/c" still match.
var abbreviations = []struct {
	from string
	to   string
}{
	{"a/c", "account"},
	{"acct", "account"},
	{"txn", "transaction"},
	{"amt", "amount"},
	{"avl bal", "available balance"},
	{"avl", "available"},
	{"bal", "balance"},
	{"pymt", "payment"},
	{"recd", "received"},
	{"wdl", "withdrawal"},
	{"dep", "deposit"},
	{"intl", "international"},
}

var (
	wordBoundary = func(word string) *regexp.Regexp {
		return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}

	abbreviationPatterns = func() []*regexp.Regexp {
		patterns := make([]*regexp.Regexp, len(abbreviations))
		for i, a := range abbreviations {
			patterns[i] = wordBoundary(a.from)
		}
		return patterns
	}()

	// Keep word characters, whitespace and periods; periods preserve
	// decimal amounts like "rs.1500.50".
	punctuation = regexp.MustCompile(`[^\w\s.]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// Message normalizes a raw bank notification: lowercases, expands banking
// abbreviations, strips punctuation noise, and collapses whitespace.
// Pure function; an empty string passes through unchanged.
func Message(raw string) string {
	if raw == "" {
		return raw
	}

	text := strings.ToLower(raw)

	for i, pattern := range abbreviationPatterns {
		text = pattern.ReplaceAllString(text, abbreviations[i].to)
	}

	text = punctuation.ReplaceAllString(text, " ")
	text = whitespace.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
