package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/theirongolddev/fintrack/internal/model"
)

// ParseAmount parses a user-entered amount. A leading "$" and thousands
// separators are accepted. The result must be positive.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := parseMoney(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s must be greater than zero", ErrInvalidAmount, s)
	}
	return d, nil
}

// ParseInitialAmount parses a wallet's starting amount, which may be zero.
func ParseInitialAmount(s string) (decimal.Decimal, error) {
	d, err := parseMoney(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, s)
	}
	return d, nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "$")
	clean = strings.ReplaceAll(clean, ",", "")
	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d.Round(2), nil
}

// NormalizeCategory maps user input such as "food" onto a known category.
func NormalizeCategory(s string) (string, error) {
	c := cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(s)))
	if !model.IsCategory(c) {
		return "", fmt.Errorf("%w: %q (want one of %s)", ErrInvalidCategory, s, strings.Join(model.Categories, ", "))
	}
	return c, nil
}

func validName(s string) (string, error) {
	n := strings.TrimSpace(s)
	if n == "" {
		return "", ErrInvalidName
	}
	return n, nil
}
