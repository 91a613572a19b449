package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single income or expense entry inside a wallet.
type Transaction struct {
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	IsIncome  bool            `json:"isIncome"`
	Category  string          `json:"category"`
	Date      string          `json:"date"`
	Timestamp int64           `json:"timestamp"`

	// Populated on load, never persisted.
	Wallet string    `json:"-"`
	At     time.Time `json:"-"`
}

// Matches reports whether two entries describe the same booking.
// Entries carry no id, so name, amount, date and category identify them.
func (t Transaction) Matches(o Transaction) bool {
	return t.Name == o.Name &&
		t.Amount.Equal(o.Amount) &&
		t.Date == o.Date &&
		t.Category == o.Category
}

// Kind returns "Income" or "Expense".
func (t Transaction) Kind() string {
	if t.IsIncome {
		return "Income"
	}
	return "Expense"
}

// MonthlyTransaction is a template booked once per calendar month.
type MonthlyTransaction struct {
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	IsIncome      bool            `json:"isIncome"`
	Category      string          `json:"category"`
	Wallet        string          `json:"wallet"`
	DayOfMonth    int             `json:"dayOfMonth"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     int64           `json:"createdAt"`
	LastProcessed int64           `json:"lastProcessed,omitempty"`
}

// MonthlySuffix is appended to the name of every materialized template.
const MonthlySuffix = " (Monthly)"

// Categories lists the accepted transaction categories in display order.
var Categories = []string{
	"Essentials",
	"Savings",
	"Pets",
	"Health",
	"Donations",
	"Entertainment",
	"Food",
}

// IsCategory reports whether name is one of Categories.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// MillisTime converts epoch milliseconds to local time. Zero stays zero.
func MillisTime(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
