package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period selects the analytics window.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYear    Period = "year"
	PeriodCustom  Period = "custom"
)

// Range is a period plus the bounds used by PeriodCustom.
type Range struct {
	Period Period
	Start  time.Time
	End    time.Time
}

// Series holds income and expense totals per chart bucket.
type Series struct {
	Labels  []string
	Income  []decimal.Decimal
	Expense []decimal.Decimal
}

// CategorySlice is one legend entry of the category breakdown.
type CategorySlice struct {
	Name    string
	Amount  decimal.Decimal
	Percent float64
	Color   string
}

// TopCategory is one of the highest-spend categories.
type TopCategory struct {
	Name    string
	Amount  decimal.Decimal
	Percent int
	Color   string
}

// CategoryBreakdown groups expenses by category.
type CategoryBreakdown struct {
	Total  decimal.Decimal
	Slices []CategorySlice
	Top    []TopCategory
}

// DayTotals holds income and expense for one day of the home chart.
type DayTotals struct {
	Date    time.Time
	Label   string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// WalletShare is a wallet's part of the week's expenses.
type WalletShare struct {
	Wallet  string
	Expense decimal.Decimal
	Percent float64
	Band    string // "high", "medium" or "low"
	Color   string
}

// WeekOverview is the home screen summary for the current Sunday-Saturday week.
type WeekOverview struct {
	Days          [7]DayTotals
	MaxExpenseDay int // -1 when the week has no expenses
	TotalExpense  decimal.Decimal
	TotalIncome   decimal.Decimal
	TotalBalance  decimal.Decimal
	WalletCount   int
	Shares        []WalletShare
}

// SummaryStats is the aggregate over a time window.
type SummaryStats struct {
	Transactions int
	IncomeCount  int
	ExpenseCount int
	ActiveDays   int

	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Net          decimal.Decimal

	ExpensePerDay decimal.Decimal
	LargestSpend  decimal.Decimal
}

// DailyStats holds totals for a single calendar day.
type DailyStats struct {
	Date         time.Time
	Transactions int
	Income       decimal.Decimal
	Expense      decimal.Decimal
	ByCategory   map[string]decimal.Decimal
}
