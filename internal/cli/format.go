// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"sync/atomic"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currency atomic.Value

func init() {
	currency.Store(money.USD)
}

// SetCurrency selects the ISO 4217 code used by FormatMoney.
// Unknown codes are rejected and the current currency is kept.
func SetCurrency(code string) error {
	if money.GetCurrency(code) == nil {
		return fmt.Errorf("unknown currency %q", code)
	}
	currency.Store(code)
	return nil
}

// Currency returns the code used by FormatMoney.
func Currency() string {
	return currency.Load().(string)
}

// FormatMoney formats an amount in the configured currency.
// e.g., 1234.5 -> "$1,234.50", -3 -> "-$3.00"
func FormatMoney(d decimal.Decimal) string {
	cents := d.Shift(2).Round(0).IntPart()
	return money.New(cents, Currency()).Display()
}

// FormatSigned formats an amount with "+" for income and "-" for expenses.
func FormatSigned(d decimal.Decimal, isIncome bool) string {
	abs := FormatMoney(d.Abs())
	if isIncome {
		return "+" + abs
	}
	return "-" + abs
}

// FormatNumber adds thousands separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%d", n)
}

// FormatPercent formats a 0-100 value with one decimal.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatDelta formats the change from previous to current with a sign.
func FormatDelta(current, previous decimal.Decimal) string {
	delta := current.Sub(previous)
	if delta.IsNegative() {
		return "-" + FormatMoney(delta.Neg())
	}
	return "+" + FormatMoney(delta)
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}
