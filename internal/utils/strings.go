package utils

import (
	"strings"
)

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeCode turns a user typed promo code into its stored form.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), ""))
}

// DefaultLocale falls back to "en" for empty or malformed locales.
func DefaultLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if len(locale) < 2 {
		return "en"
	}
	return strings.ToLower(locale[:2])
}
