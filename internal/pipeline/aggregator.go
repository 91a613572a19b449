// Package pipeline loads ledger data and aggregates it into chart and summary shapes.
package pipeline

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/model"
)

var hundred = decimal.NewFromInt(100)

// CategoryColors are the legend colors, assigned in descending spend order.
var CategoryColors = []string{
	"#FFAABB",
	"#FFDD77",
	"#AA88FF",
	"#66DDFF",
	"#88FFAA",
	"#FFAA77",
	"#AADDEE",
}

const (
	// NoDataLabel marks the placeholder slice of an empty breakdown.
	NoDataLabel = "No Data"
	// NoDataColor is the placeholder slice color.
	NoDataColor = "#AAAAAA"

	bandHighColor   = "#E57373"
	bandMediumColor = "#FFB74D"
	bandLowColor    = "#4CAF50"
)

// TopCategoryCount is how many categories the top list shows.
const TopCategoryCount = 4

// MonthLabels are the monthly series bucket labels.
var MonthLabels = []string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// WeekdayLabels are the home chart labels, Sunday first.
var WeekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// startOfDay returns local midnight of t's day.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Second)
}

// daysBetween counts calendar days from a to b, ignoring clock time.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// FilterByTime returns transactions whose time falls within [since, until).
// Zero bounds are open.
func FilterByTime(txs []model.Transaction, since, until time.Time) []model.Transaction {
	if since.IsZero() && until.IsZero() {
		return txs
	}

	var result []model.Transaction
	for _, t := range txs {
		if t.At.IsZero() {
			continue
		}
		if !since.IsZero() && t.At.Before(since) {
			continue
		}
		if !until.IsZero() && !t.At.Before(until) {
			continue
		}
		result = append(result, t)
	}
	return result
}

// FilterByWallet returns transactions of the named wallet. Empty keeps all.
func FilterByWallet(txs []model.Transaction, wallet string) []model.Transaction {
	if wallet == "" {
		return txs
	}
	var result []model.Transaction
	for _, t := range txs {
		if t.Wallet == wallet {
			result = append(result, t)
		}
	}
	return result
}

// FilterByName returns transactions whose name contains substr, ignoring case.
func FilterByName(txs []model.Transaction, substr string) []model.Transaction {
	if substr == "" {
		return txs
	}
	var result []model.Transaction
	for _, t := range txs {
		if containsIgnoreCase(t.Name, substr) {
			result = append(result, t)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// FilterByPeriod keeps the transactions inside the analytics window:
// the last 7 days, the current calendar month, the last 5 years, or the
// inclusive custom day range. Transactions without a time are dropped.
func FilterByPeriod(txs []model.Transaction, rng model.Range, now time.Time) []model.Transaction {
	var keep func(time.Time) bool
	switch rng.Period {
	case model.PeriodWeekly:
		from := now.AddDate(0, 0, -7)
		keep = func(at time.Time) bool { return !at.Before(from) }
	case model.PeriodMonthly:
		keep = func(at time.Time) bool {
			return at.Year() == now.Year() && at.Month() == now.Month()
		}
	case model.PeriodYear:
		from := now.AddDate(-5, 0, 0)
		keep = func(at time.Time) bool { return !at.Before(from) }
	case model.PeriodCustom:
		from, to := customBounds(rng)
		keep = func(at time.Time) bool {
			if !from.IsZero() && at.Before(from) {
				return false
			}
			if !to.IsZero() && at.After(to) {
				return false
			}
			return true
		}
	default:
		return txs
	}

	var result []model.Transaction
	for _, t := range txs {
		if t.At.IsZero() {
			continue
		}
		if keep(t.At.In(now.Location())) {
			result = append(result, t)
		}
	}
	return result
}

// customBounds widens a custom range to whole days.
func customBounds(rng model.Range) (time.Time, time.Time) {
	var from, to time.Time
	if !rng.Start.IsZero() {
		from = startOfDay(rng.Start)
	}
	if !rng.End.IsZero() {
		to = endOfDay(rng.End)
	}
	return from, to
}

// BuildSeries buckets income and expense for the chart of rng.
//
//   - weekly: 7 days ending today, labelled with the day of month
//   - monthly: JAN..DEC of the current year
//   - year: the current year and the 4 before it
//   - custom: one bucket per day of the range, labelled with the day of month
//
// A custom range without both bounds yields an empty series.
func BuildSeries(txs []model.Transaction, rng model.Range, now time.Time) model.Series {
	var (
		labels []string
		index  func(at time.Time) int
	)

	switch rng.Period {
	case model.PeriodWeekly:
		first := startOfDay(now).AddDate(0, 0, -6)
		for i := 0; i < 7; i++ {
			labels = append(labels, strconv.Itoa(first.AddDate(0, 0, i).Day()))
		}
		index = func(at time.Time) int { return daysBetween(first, at) }
	case model.PeriodMonthly:
		labels = append(labels, MonthLabels...)
		index = func(at time.Time) int {
			if at.Year() != now.Year() {
				return -1
			}
			return int(at.Month()) - 1
		}
	case model.PeriodYear:
		firstYear := now.Year() - 4
		for i := 0; i < 5; i++ {
			labels = append(labels, strconv.Itoa(firstYear+i))
		}
		index = func(at time.Time) int { return at.Year() - firstYear }
	case model.PeriodCustom:
		if rng.Start.IsZero() || rng.End.IsZero() || rng.End.Before(rng.Start) {
			return model.Series{}
		}
		first := startOfDay(rng.Start)
		n := daysBetween(rng.Start, rng.End) + 1
		for i := 0; i < n; i++ {
			labels = append(labels, strconv.Itoa(first.AddDate(0, 0, i).Day()))
		}
		index = func(at time.Time) int { return daysBetween(first, at) }
	default:
		return model.Series{}
	}

	s := model.Series{
		Labels:  labels,
		Income:  zeros(len(labels)),
		Expense: zeros(len(labels)),
	}
	for _, t := range txs {
		if t.At.IsZero() {
			continue
		}
		i := index(t.At.In(now.Location()))
		if i < 0 || i >= len(labels) {
			continue
		}
		if t.IsIncome {
			s.Income[i] = s.Income[i].Add(t.Amount)
		} else {
			s.Expense[i] = s.Expense[i].Add(t.Amount)
		}
	}
	return s
}

func zeros(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.Zero
	}
	return out
}

// CategoryBreakdown totals expenses per category, largest first.
func CategoryBreakdown(txs []model.Transaction) model.CategoryBreakdown {
	totals := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, t := range txs {
		if t.IsIncome {
			continue
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
		total = total.Add(t.Amount)
	}

	if !total.IsPositive() {
		return model.CategoryBreakdown{
			Total:  decimal.Zero,
			Slices: []model.CategorySlice{{Name: NoDataLabel, Amount: decimal.Zero, Percent: 100, Color: NoDataColor}},
			Top:    []model.TopCategory{{Name: NoDataLabel, Amount: decimal.Zero, Percent: 0, Color: NoDataColor}},
		}
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if c := totals[names[i]].Cmp(totals[names[j]]); c != 0 {
			return c > 0
		}
		return names[i] < names[j]
	})

	b := model.CategoryBreakdown{Total: total}
	for i, name := range names {
		amt := totals[name]
		pct := amt.Div(total).Mul(hundred)
		color := CategoryColors[i%len(CategoryColors)]
		b.Slices = append(b.Slices, model.CategorySlice{
			Name:    name,
			Amount:  amt,
			Percent: pct.InexactFloat64(),
			Color:   color,
		})
		if i < TopCategoryCount {
			b.Top = append(b.Top, model.TopCategory{
				Name:    name,
				Amount:  amt,
				Percent: int(pct.IntPart()),
				Color:   color,
			})
		}
	}
	return b
}

// WeekOverview builds the home summary for the Sunday-Saturday week
// containing now. wallets supplies balances and the wallet order.
func WeekOverview(wallets []model.Wallet, txs []model.Transaction, now time.Time) model.WeekOverview {
	sunday := startOfDay(now).AddDate(0, 0, -int(now.Weekday()))
	saturdayEnd := endOfDay(sunday.AddDate(0, 0, 6))

	o := model.WeekOverview{
		MaxExpenseDay: -1,
		TotalExpense:  decimal.Zero,
		TotalIncome:   decimal.Zero,
		TotalBalance:  decimal.Zero,
		WalletCount:   len(wallets),
	}
	for i := range o.Days {
		d := sunday.AddDate(0, 0, i)
		o.Days[i] = model.DayTotals{Date: d, Label: WeekdayLabels[i], Income: decimal.Zero, Expense: decimal.Zero}
	}
	for _, w := range wallets {
		o.TotalBalance = o.TotalBalance.Add(w.Remaining)
	}

	perWallet := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if t.At.IsZero() {
			continue
		}
		at := t.At.In(now.Location())
		if at.Before(sunday) || at.After(saturdayEnd) {
			continue
		}
		i := int(at.Weekday())
		if t.IsIncome {
			o.Days[i].Income = o.Days[i].Income.Add(t.Amount)
			o.TotalIncome = o.TotalIncome.Add(t.Amount)
			continue
		}
		o.Days[i].Expense = o.Days[i].Expense.Add(t.Amount)
		o.TotalExpense = o.TotalExpense.Add(t.Amount)
		perWallet[t.Wallet] = perWallet[t.Wallet].Add(t.Amount)
	}

	maxExpense := decimal.Zero
	for i, d := range o.Days {
		if d.Expense.GreaterThan(maxExpense) {
			maxExpense = d.Expense
			o.MaxExpenseDay = i
		}
	}

	if o.TotalExpense.IsPositive() {
		for _, w := range wallets {
			amt, ok := perWallet[w.Name]
			if !ok || !amt.IsPositive() {
				continue
			}
			pct := amt.Div(o.TotalExpense).Mul(hundred).InexactFloat64()
			band, color := ShareBand(pct)
			o.Shares = append(o.Shares, model.WalletShare{
				Wallet:  w.Name,
				Expense: amt,
				Percent: pct,
				Band:    band,
				Color:   color,
			})
		}
		sort.SliceStable(o.Shares, func(i, j int) bool {
			return o.Shares[i].Expense.GreaterThan(o.Shares[j].Expense)
		})
	}
	return o
}

// ShareBand classifies a wallet's share of weekly spend.
func ShareBand(pct float64) (band, color string) {
	switch {
	case pct >= 70:
		return "high", bandHighColor
	case pct >= 40:
		return "medium", bandMediumColor
	default:
		return "low", bandLowColor
	}
}

// Aggregate computes summary statistics for transactions within [since, until).
func Aggregate(txs []model.Transaction, since, until time.Time) model.SummaryStats {
	filtered := FilterByTime(txs, since, until)

	stats := model.SummaryStats{
		TotalIncome:   decimal.Zero,
		TotalExpense:  decimal.Zero,
		Net:           decimal.Zero,
		ExpensePerDay: decimal.Zero,
		LargestSpend:  decimal.Zero,
	}
	activeDays := make(map[string]struct{})

	for _, t := range filtered {
		stats.Transactions++
		if t.IsIncome {
			stats.IncomeCount++
			stats.TotalIncome = stats.TotalIncome.Add(t.Amount)
		} else {
			stats.ExpenseCount++
			stats.TotalExpense = stats.TotalExpense.Add(t.Amount)
			if t.Amount.GreaterThan(stats.LargestSpend) {
				stats.LargestSpend = t.Amount
			}
		}
		if !t.At.IsZero() {
			activeDays[t.At.Local().Format("2006-01-02")] = struct{}{}
		}
	}

	stats.ActiveDays = len(activeDays)
	stats.Net = stats.TotalIncome.Sub(stats.TotalExpense)
	if stats.ActiveDays > 0 {
		stats.ExpensePerDay = stats.TotalExpense.Div(decimal.NewFromInt(int64(stats.ActiveDays))).Round(2)
	}
	return stats
}

// AggregateDays computes per-day totals, filling gaps so every day in
// [since, until] appears. Most recent day first.
func AggregateDays(txs []model.Transaction, since, until time.Time) []model.DailyStats {
	filtered := FilterByTime(txs, since, until)

	dayMap := make(map[string]*model.DailyStats)
	for _, t := range filtered {
		local := t.At.Local()
		key := local.Format("2006-01-02")
		ds, ok := dayMap[key]
		if !ok {
			ds = newDailyStats(startOfDay(local))
			dayMap[key] = ds
		}
		addToDay(ds, t)
	}

	if !since.IsZero() && !until.IsZero() {
		day := startOfDay(since.Local())
		end := until.Local()
		for day.Before(end) {
			key := day.Format("2006-01-02")
			if _, ok := dayMap[key]; !ok {
				dayMap[key] = newDailyStats(day)
			}
			day = day.AddDate(0, 0, 1)
		}
	}

	days := make([]model.DailyStats, 0, len(dayMap))
	for _, ds := range dayMap {
		days = append(days, *ds)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})
	return days
}

func newDailyStats(day time.Time) *model.DailyStats {
	return &model.DailyStats{
		Date:       day,
		Income:     decimal.Zero,
		Expense:    decimal.Zero,
		ByCategory: make(map[string]decimal.Decimal),
	}
}

func addToDay(ds *model.DailyStats, t model.Transaction) {
	ds.Transactions++
	if t.IsIncome {
		ds.Income = ds.Income.Add(t.Amount)
		return
	}
	ds.Expense = ds.Expense.Add(t.Amount)
	ds.ByCategory[t.Category] = ds.ByCategory[t.Category].Add(t.Amount)
}

// DaySummary totals one calendar day across the given transactions.
func DaySummary(txs []model.Transaction, day time.Time) model.DailyStats {
	from := startOfDay(day)
	ds := newDailyStats(from)
	for _, t := range FilterByTime(txs, from, from.AddDate(0, 0, 1)) {
		addToDay(ds, t)
	}
	return *ds
}

// CategoryAmount is one category total.
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// TopExpenses returns the n largest expense categories of ds.
func TopExpenses(ds model.DailyStats, n int) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(ds.ByCategory))
	for c, amt := range ds.ByCategory {
		out = append(out, CategoryAmount{Category: c, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Recent returns the n newest transactions.
func Recent(txs []model.Transaction, n int) []model.Transaction {
	sorted := make([]model.Transaction, len(txs))
	copy(sorted, txs)
	SortNewestFirst(sorted)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
