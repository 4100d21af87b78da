package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses user-formatted money strings from config files.
// Accepts common variants like:
// - "1,500.00"
// - "EUR 1500"
// - "€ -200,50" (comma decimals when exactly one comma with 1-2 trailing digits)
//
// Keeps digits, '.', and a leading '-' only.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	s = strings.ReplaceAll(s, "EUR", "")
	s = strings.ReplaceAll(s, "eur", "")
	s = strings.ReplaceAll(s, "€", "")
	s = strings.TrimSpace(s)

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	}

	// Italian-style "200,50" means a decimal comma; "1,500.00" means a
	// thousands separator.
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		if frac := s[strings.Index(s, ",")+1:]; len(frac) <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		}
	}
	s = strings.ReplaceAll(s, ",", "")

	var b strings.Builder
	b.Grow(len(s) + 1)
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	if neg {
		clean = "-" + clean
	}
	return decimal.NewFromString(clean)
}

// FormatAmount renders an amount with two decimal places for export.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
