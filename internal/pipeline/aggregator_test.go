package pipeline

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/carlmjohnson/be"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/store"
)

func tx(wallet, name, amount, category string, income bool, at time.Time) model.Transaction {
	return model.Transaction{
		Name:      name,
		Amount:    decimal.RequireFromString(amount),
		IsIncome:  income,
		Category:  category,
		Date:      at.Format("2006-01-02 15:04"),
		Timestamp: at.UnixMilli(),
		Wallet:    wallet,
		At:        at,
	}
}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.Local)
}

func TestLoadAll(t *testing.T) {
	s := seedStore(t, 3, 10)

	var calls atomic.Int32
	res, err := LoadAll(s, func(current, total int) {
		calls.Add(1)
	})
	be.NilErr(t, err)
	be.Equal(t, 3, len(res.Wallets))
	be.Equal(t, 30, len(res.All))
	be.Equal(t, 10, len(res.Transactions("wallet-01")))
	be.Equal(t, int32(3), calls.Load())
	be.Equal(t, 0, res.ParseErrors)
	be.True(t, res.All[0].At.After(res.All[len(res.All)-1].At))
	be.Equal(t, "wallet-01", res.ByWallet["wallet-01"][0].Wallet)
}

func TestLoadAll_Empty(t *testing.T) {
	s := seedStore(t, 0, 0)
	res, err := LoadAll(s, nil)
	be.NilErr(t, err)
	be.Equal(t, 0, len(res.All))
}

func TestLoadAll_CountsBadElements(t *testing.T) {
	s := seedStore(t, 1, 2)
	be.NilErr(t, s.PutString(store.NSWallet, store.TransactionsKey("wallet-00"),
		`[{"name":"ok","amount":1,"isIncome":false,"category":"Food","date":"2025-01-01 10:00","timestamp":0},{"name":""},42]`))

	res, err := LoadAll(s, nil)
	be.NilErr(t, err)
	be.Equal(t, 1, len(res.All))
	be.Equal(t, 2, res.ParseErrors)
}

func TestFilterByPeriod(t *testing.T) {
	now := day(2025, 3, 15, 12)
	txs := []model.Transaction{
		tx("A", "recent", "1", "Food", false, day(2025, 3, 10, 9)),
		tx("A", "last month", "1", "Food", false, day(2025, 2, 20, 9)),
		tx("A", "old", "1", "Food", false, day(2019, 1, 1, 9)),
		tx("A", "four years", "1", "Food", false, day(2021, 6, 1, 9)),
	}

	be.Equal(t, 1, len(FilterByPeriod(txs, model.Range{Period: model.PeriodWeekly}, now)))
	be.Equal(t, 1, len(FilterByPeriod(txs, model.Range{Period: model.PeriodMonthly}, now)))
	be.Equal(t, 3, len(FilterByPeriod(txs, model.Range{Period: model.PeriodYear}, now)))

	custom := model.Range{Period: model.PeriodCustom, Start: day(2025, 2, 20, 15), End: day(2025, 3, 10, 0)}
	got := FilterByPeriod(txs, custom, now)
	be.Equal(t, 2, len(got))

	open := model.Range{Period: model.PeriodCustom}
	be.Equal(t, 4, len(FilterByPeriod(txs, open, now)))
}

func TestBuildSeries_Weekly(t *testing.T) {
	now := day(2025, 3, 15, 12)
	txs := []model.Transaction{
		tx("A", "a", "10", "Food", false, day(2025, 3, 9, 0)),
		tx("A", "b", "5", "Food", false, day(2025, 3, 15, 11)),
		tx("A", "c", "7", "Savings", true, day(2025, 3, 15, 8)),
		tx("A", "too old", "99", "Food", false, day(2025, 3, 8, 23)),
	}
	s := BuildSeries(txs, model.Range{Period: model.PeriodWeekly}, now)
	be.Equal(t, 7, len(s.Labels))
	be.Equal(t, "9", s.Labels[0])
	be.Equal(t, "15", s.Labels[6])
	be.Equal(t, "10", s.Expense[0].String())
	be.Equal(t, "5", s.Expense[6].String())
	be.Equal(t, "7", s.Income[6].String())
}

func TestBuildSeries_MonthlyAndYear(t *testing.T) {
	now := day(2025, 3, 15, 12)
	txs := []model.Transaction{
		tx("A", "jan", "10", "Food", false, day(2025, 1, 9, 0)),
		tx("A", "mar", "5", "Food", false, day(2025, 3, 1, 0)),
		tx("A", "last year", "3", "Food", false, day(2024, 3, 1, 0)),
	}

	m := BuildSeries(txs, model.Range{Period: model.PeriodMonthly}, now)
	be.Equal(t, 12, len(m.Labels))
	be.Equal(t, "JAN", m.Labels[0])
	be.Equal(t, "10", m.Expense[0].String())
	be.Equal(t, "5", m.Expense[2].String())

	y := BuildSeries(txs, model.Range{Period: model.PeriodYear}, now)
	be.Equal(t, 5, len(y.Labels))
	be.Equal(t, "2021", y.Labels[0])
	be.Equal(t, "3", y.Expense[3].String())
	be.Equal(t, "15", y.Expense[4].String())
}

func TestBuildSeries_Custom(t *testing.T) {
	now := day(2025, 3, 15, 12)
	rng := model.Range{Period: model.PeriodCustom, Start: day(2025, 2, 27, 0), End: day(2025, 3, 2, 0)}
	txs := []model.Transaction{
		tx("A", "x", "4", "Food", false, day(2025, 3, 2, 22)),
	}
	s := BuildSeries(txs, rng, now)
	be.Equal(t, 4, len(s.Labels))
	be.Equal(t, "27", s.Labels[0])
	be.Equal(t, "1", s.Labels[2])
	be.Equal(t, "4", s.Expense[3].String())

	empty := BuildSeries(txs, model.Range{Period: model.PeriodCustom}, now)
	be.Equal(t, 0, len(empty.Labels))
}

func TestCategoryBreakdown(t *testing.T) {
	at := day(2025, 3, 1, 9)
	txs := []model.Transaction{
		tx("A", "a", "50", "Food", false, at),
		tx("A", "b", "30", "Health", false, at),
		tx("A", "c", "10", "Pets", false, at),
		tx("A", "d", "5", "Savings", false, at),
		tx("A", "e", "5", "Donations", false, at),
		tx("A", "salary", "1000", "Savings", true, at),
	}
	b := CategoryBreakdown(txs)
	be.Equal(t, "100", b.Total.String())
	be.Equal(t, 5, len(b.Slices))
	be.Equal(t, "Food", b.Slices[0].Name)
	be.Equal(t, 50.0, b.Slices[0].Percent)
	be.Equal(t, "#FFAABB", b.Slices[0].Color)
	be.Equal(t, "#FFDD77", b.Slices[1].Color)

	be.Equal(t, TopCategoryCount, len(b.Top))
	be.Equal(t, 30, b.Top[1].Percent)
	// Ties sort by name.
	be.Equal(t, "Donations", b.Top[3].Name)
}

func TestCategoryBreakdown_NoData(t *testing.T) {
	b := CategoryBreakdown(nil)
	be.Equal(t, 1, len(b.Slices))
	be.Equal(t, NoDataLabel, b.Slices[0].Name)
	be.Equal(t, 100.0, b.Slices[0].Percent)
	be.Equal(t, NoDataColor, b.Slices[0].Color)
	be.Equal(t, 1, len(b.Top))
	be.Equal(t, 0, b.Top[0].Percent)
}

func TestWeekOverview(t *testing.T) {
	// Wednesday.
	now := day(2025, 3, 12, 12)
	wallets := []model.Wallet{
		model.NewWallet("Main", decimal.NewFromInt(100)),
		model.NewWallet("Fun", decimal.NewFromInt(50)),
		model.NewWallet("Idle", decimal.NewFromInt(10)),
	}
	txs := []model.Transaction{
		tx("Main", "sun", "20", "Food", false, day(2025, 3, 9, 10)),
		tx("Main", "tue", "60", "Food", false, day(2025, 3, 11, 10)),
		tx("Fun", "sat", "20", "Entertainment", false, day(2025, 3, 15, 23)),
		tx("Main", "pay", "15", "Savings", true, day(2025, 3, 10, 10)),
		tx("Main", "prev week", "500", "Food", false, day(2025, 3, 8, 23)),
	}
	o := WeekOverview(wallets, txs, now)

	be.Equal(t, "Sun", o.Days[0].Label)
	be.Equal(t, 9, o.Days[0].Date.Day())
	be.Equal(t, 2, o.MaxExpenseDay)
	be.Equal(t, "100", o.TotalExpense.String())
	be.Equal(t, "15", o.TotalIncome.String())
	be.Equal(t, "160", o.TotalBalance.String())
	be.Equal(t, 3, o.WalletCount)

	be.Equal(t, 2, len(o.Shares))
	be.Equal(t, "Main", o.Shares[0].Wallet)
	be.Equal(t, "high", o.Shares[0].Band)
	be.Equal(t, "#E57373", o.Shares[0].Color)
	be.Equal(t, "low", o.Shares[1].Band)
}

func TestWeekOverview_Empty(t *testing.T) {
	o := WeekOverview(nil, nil, day(2025, 3, 12, 12))
	be.Equal(t, -1, o.MaxExpenseDay)
	be.Equal(t, 0, len(o.Shares))
}

func TestShareBand(t *testing.T) {
	band, _ := ShareBand(70)
	be.Equal(t, "high", band)
	band, _ = ShareBand(40)
	be.Equal(t, "medium", band)
	band, color := ShareBand(39.9)
	be.Equal(t, "low", band)
	be.Equal(t, "#4CAF50", color)
}

func TestAggregate(t *testing.T) {
	txs := []model.Transaction{
		tx("A", "a", "10", "Food", false, day(2025, 3, 1, 9)),
		tx("A", "b", "30", "Food", false, day(2025, 3, 2, 9)),
		tx("A", "c", "100", "Savings", true, day(2025, 3, 2, 10)),
		tx("A", "outside", "999", "Food", false, day(2025, 4, 2, 10)),
	}
	s := Aggregate(txs, day(2025, 3, 1, 0), day(2025, 4, 1, 0))
	be.Equal(t, 3, s.Transactions)
	be.Equal(t, 2, s.ExpenseCount)
	be.Equal(t, 1, s.IncomeCount)
	be.Equal(t, 2, s.ActiveDays)
	be.Equal(t, "40", s.TotalExpense.String())
	be.Equal(t, "60", s.Net.String())
	be.Equal(t, "20", s.ExpensePerDay.String())
	be.Equal(t, "30", s.LargestSpend.String())
}

func TestAggregateDays_FillsGaps(t *testing.T) {
	txs := []model.Transaction{
		tx("A", "a", "10", "Food", false, day(2025, 3, 1, 9)),
		tx("A", "b", "5", "Pets", false, day(2025, 3, 3, 9)),
	}
	days := AggregateDays(txs, day(2025, 3, 1, 0), day(2025, 3, 4, 0))
	be.Equal(t, 3, len(days))
	be.Equal(t, 3, days[0].Date.Day())
	be.Equal(t, "5", days[0].Expense.String())
	be.Equal(t, 0, days[1].Transactions)
	be.Equal(t, "10", days[2].ByCategory["Food"].String())
}

func TestDaySummaryAndTopExpenses(t *testing.T) {
	txs := []model.Transaction{
		tx("A", "a", "10", "Food", false, day(2025, 3, 1, 9)),
		tx("B", "b", "25", "Health", false, day(2025, 3, 1, 12)),
		tx("A", "c", "3", "Pets", false, day(2025, 3, 1, 13)),
		tx("A", "d", "1", "Donations", false, day(2025, 3, 1, 14)),
		tx("A", "pay", "40", "Savings", true, day(2025, 3, 1, 15)),
		tx("A", "other day", "99", "Food", false, day(2025, 3, 2, 9)),
	}
	ds := DaySummary(txs, day(2025, 3, 1, 18))
	be.Equal(t, 5, ds.Transactions)
	be.Equal(t, "39", ds.Expense.String())
	be.Equal(t, "40", ds.Income.String())

	top := TopExpenses(ds, 3)
	be.Equal(t, 3, len(top))
	be.Equal(t, "Health", top[0].Category)
	be.Equal(t, "Pets", top[2].Category)
}

func TestRecent(t *testing.T) {
	txs := []model.Transaction{
		tx("A", "old", "1", "Food", false, day(2025, 3, 1, 9)),
		tx("A", "new", "1", "Food", false, day(2025, 3, 5, 9)),
		tx("A", "mid", "1", "Food", false, day(2025, 3, 3, 9)),
	}
	got := Recent(txs, 2)
	be.Equal(t, 2, len(got))
	be.Equal(t, "new", got[0].Name)
	be.Equal(t, "mid", got[1].Name)
	// Input order is untouched.
	be.Equal(t, "old", txs[0].Name)
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("w")
	be.NilErr(t, err)
	be.Equal(t, model.PeriodWeekly, p)
	_, err = ParsePeriod("daily")
	be.Nonzero(t, err)
}

func TestParseRange(t *testing.T) {
	rng, err := ParseRange("custom", "2025-06-01", "2025-06-10")
	be.NilErr(t, err)
	be.Equal(t, model.PeriodCustom, rng.Period)
	be.Equal(t, 1, rng.Start.Day())
	be.Equal(t, 10, rng.End.Day())

	rng, err = ParseRange("monthly", "", "")
	be.NilErr(t, err)
	be.True(t, rng.Start.IsZero())

	_, err = ParseRange("custom", "June", "")
	be.Nonzero(t, err)
	_, err = ParseRange("custom", "2025-06-10", "2025-06-01")
	be.Nonzero(t, err)
}
