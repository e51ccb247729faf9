package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCredits renders ledger credits (cents) as euro, e.g. "€3.90".
func FormatCredits(credits int64) string {
	sign := ""
	if credits < 0 {
		sign = "-"
		credits = -credits
	}
	return sign + "€" + decimal.NewFromInt(credits).Shift(-2).StringFixed(2)
}

// ParseEuroToCredits parses "3.90", "3,90" or "€ 3.90" into credits.
// More than two decimals is rejected rather than rounded.
func ParseEuroToCredits(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "€"))
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, fmt.Errorf("invalid euro amount")
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid euro amount %q: %w", s, err)
	}
	cents := amount.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("invalid euro amount %q: too many decimals", s)
	}
	return cents.IntPart(), nil
}
