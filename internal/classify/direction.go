package classify

import (
	"strings"

	"github.com/karanvs/fintrail/internal/model"
)

// DetermineDirection resolves whether normalized text describes money
// leaving or entering the account. Every matched keyword adds its fixed
// weight to the matching accumulator, compound patterns add their bonus
// when both fragments appear, and the higher total wins. Income is the
// tie-break default.
//
// This is a standalone operation: the analytics re-classification pass
// calls it without running category classification.
func DetermineDirection(text string) model.Direction {
	var expenseScore, incomeScore int

	for _, dk := range directionKeywords {
		if strings.Contains(text, dk.keyword) {
			if dk.direction == model.DirectionExpense {
				expenseScore += dk.weight
			} else {
				incomeScore += dk.weight
			}
		}
	}

	for _, dc := range directionCompounds {
		if strings.Contains(text, dc.first) && strings.Contains(text, dc.second) {
			if dc.direction == model.DirectionExpense {
				expenseScore += dc.weight
			} else {
				incomeScore += dc.weight
			}
		}
	}

	if expenseScore > incomeScore {
		return model.DirectionExpense
	}
	return model.DirectionIncome
}
