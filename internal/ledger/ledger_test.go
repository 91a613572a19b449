package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/carlmjohnson/be"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/store"
)

type recordingAlerter struct {
	added   []string
	checked int
}

func (r *recordingAlerter) WalletAdded(_ context.Context, name string) error {
	r.added = append(r.added, name)
	return nil
}

func (r *recordingAlerter) CheckBudgets(_ context.Context, _ []model.Wallet) error {
	r.checked++
	return nil
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func newTestService(t *testing.T, at time.Time) (*Service, *recordingAlerter, *testClock) {
	t.Helper()
	prefs, err := store.Open(filepath.Join(t.TempDir(), "prefs.db"))
	be.NilErr(t, err)
	t.Cleanup(func() { _ = prefs.Close() })

	a := &recordingAlerter{}
	c := &testClock{t: at}
	return New(prefs, WithAlerter(a), WithClock(c.now)), a, c
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAddWallet(t *testing.T) {
	svc, alerts, _ := newTestService(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local))
	ctx := context.Background()

	w, err := svc.AddWallet(ctx, "  Groceries ", dec("500"))
	be.NilErr(t, err)
	be.Equal(t, "Groceries", w.Name)
	be.Equal(t, "500.00", w.Remaining.StringFixed(2))
	be.Equal(t, 1, len(alerts.added))
	be.Equal(t, "Groceries", alerts.added[0])

	_, err = svc.AddWallet(ctx, "Groceries", dec("1"))
	be.True(t, errors.Is(err, ErrWalletExists))

	_, err = svc.AddWallet(ctx, "Debt", dec("-1"))
	be.True(t, errors.Is(err, ErrInvalidAmount))

	_, err = svc.AddWallet(ctx, " ", dec("1"))
	be.True(t, errors.Is(err, ErrInvalidName))

	// Zero is a valid starting amount.
	_, err = svc.AddWallet(ctx, "Empty", decimal.Zero)
	be.NilErr(t, err)

	ws, err := svc.Wallets()
	be.NilErr(t, err)
	be.Equal(t, 2, len(ws))
}

func TestAddTransactionUpdatesBalance(t *testing.T) {
	at := time.Date(2025, 3, 10, 9, 30, 0, 0, time.Local)
	svc, alerts, _ := newTestService(t, at)
	ctx := context.Background()

	_, err := svc.AddWallet(ctx, "Main", dec("100"))
	be.NilErr(t, err)

	tx, err := svc.AddTransaction(ctx, "Main", Entry{Name: "Lunch", Amount: dec("12.50"), Category: "food"})
	be.NilErr(t, err)
	be.Equal(t, "Food", tx.Category)
	be.Equal(t, "2025-03-10 09:30", tx.Date)
	be.Equal(t, at.UnixMilli(), tx.Timestamp)

	_, err = svc.AddTransaction(ctx, "Main", Entry{Name: "Salary", Amount: dec("40"), IsIncome: true, Category: "Savings"})
	be.NilErr(t, err)

	w, err := svc.Wallet("Main")
	be.NilErr(t, err)
	be.Equal(t, "12.50", w.Expenses.StringFixed(2))
	be.Equal(t, "127.50", w.Remaining.StringFixed(2))
	be.Equal(t, 2, alerts.checked)

	changed, err := svc.Changed()
	be.NilErr(t, err)
	be.True(t, changed)
	last, err := svc.LastUpdate()
	be.NilErr(t, err)
	be.Equal(t, at.UnixMilli(), last.UnixMilli())

	be.NilErr(t, svc.AckChanged())
	changed, _ = svc.Changed()
	be.False(t, changed)
}

func TestAddTransactionValidation(t *testing.T) {
	svc, _, _ := newTestService(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local))
	ctx := context.Background()
	_, err := svc.AddWallet(ctx, "Main", dec("100"))
	be.NilErr(t, err)

	tests := []struct {
		name  string
		entry Entry
		want  error
	}{
		{"empty name", Entry{Amount: dec("1"), Category: "Food"}, ErrInvalidName},
		{"zero amount", Entry{Name: "x", Amount: decimal.Zero, Category: "Food"}, ErrInvalidAmount},
		{"negative amount", Entry{Name: "x", Amount: dec("-3"), Category: "Food"}, ErrInvalidAmount},
		{"unknown category", Entry{Name: "x", Amount: dec("1"), Category: "Travel"}, ErrInvalidCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddTransaction(ctx, "Main", tt.entry)
			be.True(t, errors.Is(err, tt.want))
		})
	}

	_, err = svc.AddTransaction(ctx, "Nope", Entry{Name: "x", Amount: dec("1"), Category: "Food"})
	be.True(t, errors.Is(err, ErrWalletNotFound))
}

func TestTransactionsNewestFirst(t *testing.T) {
	svc, _, clock := newTestService(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local))
	ctx := context.Background()
	_, err := svc.AddWallet(ctx, "Main", dec("100"))
	be.NilErr(t, err)

	for i, name := range []string{"first", "second", "third"} {
		clock.t = clock.t.Add(time.Duration(i+1) * time.Hour)
		_, err := svc.AddTransaction(ctx, "Main", Entry{Name: name, Amount: dec("1"), Category: "Food"})
		be.NilErr(t, err)
	}

	txs, err := svc.Transactions("Main")
	be.NilErr(t, err)
	be.Equal(t, 3, len(txs))
	be.Equal(t, "third", txs[0].Name)
	be.Equal(t, "first", txs[2].Name)
	be.Equal(t, "Main", txs[0].Wallet)

	_, err = svc.Transactions("Nope")
	be.True(t, errors.Is(err, ErrWalletNotFound))
}

func TestEditTransaction(t *testing.T) {
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	svc, _, clock := newTestService(t, at)
	ctx := context.Background()
	_, err := svc.AddWallet(ctx, "Main", dec("100"))
	be.NilErr(t, err)
	orig, err := svc.AddTransaction(ctx, "Main", Entry{Name: "Rent", Amount: dec("30"), Category: "Essentials"})
	be.NilErr(t, err)

	clock.t = at.Add(2 * time.Hour)
	edited, err := svc.EditTransaction(ctx, "Main", orig, Entry{Name: "Bonus", Amount: dec("20"), IsIncome: true, Category: "Savings"})
	be.NilErr(t, err)
	be.Equal(t, orig.Timestamp, edited.Timestamp)
	be.Equal(t, orig.Date, edited.Date)

	w, err := svc.Wallet("Main")
	be.NilErr(t, err)
	be.Equal(t, "0.00", w.Expenses.StringFixed(2))
	be.Equal(t, "120.00", w.Remaining.StringFixed(2))

	// The old entry no longer exists, so a second edit must not touch balances.
	_, err = svc.EditTransaction(ctx, "Main", orig, Entry{Name: "Rent", Amount: dec("99"), Category: "Essentials"})
	be.True(t, errors.Is(err, ErrTransactionNotFound))
	w, _ = svc.Wallet("Main")
	be.Equal(t, "120.00", w.Remaining.StringFixed(2))
}

func TestDeleteTransaction(t *testing.T) {
	svc, _, _ := newTestService(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local))
	ctx := context.Background()
	_, err := svc.AddWallet(ctx, "Main", dec("100"))
	be.NilErr(t, err)
	tx, err := svc.AddTransaction(ctx, "Main", Entry{Name: "Vet", Amount: dec("45.25"), Category: "Pets"})
	be.NilErr(t, err)

	be.NilErr(t, svc.DeleteTransaction(ctx, "Main", tx))
	w, err := svc.Wallet("Main")
	be.NilErr(t, err)
	be.Equal(t, "100.00", w.Remaining.StringFixed(2))
	be.Equal(t, "0.00", w.Expenses.StringFixed(2))

	txs, err := svc.Transactions("Main")
	be.NilErr(t, err)
	be.Equal(t, 0, len(txs))

	err = svc.DeleteTransaction(ctx, "Main", tx)
	be.True(t, errors.Is(err, ErrTransactionNotFound))
}

func TestDeleteWalletCascades(t *testing.T) {
	svc, _, _ := newTestService(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local))
	ctx := context.Background()
	for _, name := range []string{"A", "B"} {
		_, err := svc.AddWallet(ctx, name, dec("100"))
		be.NilErr(t, err)
	}
	_, err := svc.AddTransaction(ctx, "B", Entry{Name: "x", Amount: dec("1"), Category: "Food"})
	be.NilErr(t, err)
	_, err = svc.AddMonthly(Template{Name: "Rent", Amount: dec("10"), Category: "Essentials", Wallet: "B", DayOfMonth: 1})
	be.NilErr(t, err)
	_, err = svc.AddMonthly(Template{Name: "Gym", Amount: dec("10"), Category: "Health", Wallet: "A", DayOfMonth: 1})
	be.NilErr(t, err)
	be.NilErr(t, svc.SetCurrentWallet("B"))

	be.NilErr(t, svc.DeleteWallet(ctx, "B"))

	ws, err := svc.Wallets()
	be.NilErr(t, err)
	be.Equal(t, 1, len(ws))
	be.Equal(t, "A", ws[0].Name)

	_, ok, err := svc.Store().GetString(store.NSWallet, store.TransactionsKey("B"))
	be.NilErr(t, err)
	be.False(t, ok)

	ms, err := svc.Monthly()
	be.NilErr(t, err)
	be.Equal(t, 1, len(ms))
	be.Equal(t, "Gym", ms[0].Name)

	cur, err := svc.CurrentWallet()
	be.NilErr(t, err)
	be.Equal(t, "A", cur)

	err = svc.DeleteWallet(ctx, "B")
	be.True(t, errors.Is(err, ErrWalletNotFound))
}

func TestCurrentWallet(t *testing.T) {
	svc, _, _ := newTestService(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local))
	ctx := context.Background()

	cur, err := svc.CurrentWallet()
	be.NilErr(t, err)
	be.Equal(t, "", cur)

	for _, name := range []string{"A", "B"} {
		_, err := svc.AddWallet(ctx, name, dec("10"))
		be.NilErr(t, err)
	}
	cur, _ = svc.CurrentWallet()
	be.Equal(t, "A", cur)

	be.NilErr(t, svc.SetCurrentWallet("B"))
	cur, _ = svc.CurrentWallet()
	be.Equal(t, "B", cur)

	err = svc.SetCurrentWallet("C")
	be.True(t, errors.Is(err, ErrWalletNotFound))
}

func TestCorruptBlobIsNotOverwritten(t *testing.T) {
	svc, _, _ := newTestService(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local))
	be.NilErr(t, svc.Store().PutString(store.NSWallet, store.KeyWallets, "{not json"))

	_, err := svc.AddWallet(context.Background(), "A", dec("1"))
	be.Nonzero(t, err)

	v, _, err := svc.Store().GetString(store.NSWallet, store.KeyWallets)
	be.NilErr(t, err)
	be.Equal(t, "{not json", v)
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("$1,234.567")
	be.NilErr(t, err)
	be.Equal(t, "1234.57", d.StringFixed(2))

	_, err = ParseAmount("0")
	be.True(t, errors.Is(err, ErrInvalidAmount))
	_, err = ParseAmount("abc")
	be.True(t, errors.Is(err, ErrInvalidAmount))

	d, err = ParseInitialAmount("0")
	be.NilErr(t, err)
	be.True(t, d.IsZero())
	_, err = ParseInitialAmount("-5")
	be.True(t, errors.Is(err, ErrInvalidAmount))
}

func TestNormalizeCategory(t *testing.T) {
	c, err := NormalizeCategory("  ENTERTAINMENT ")
	be.NilErr(t, err)
	be.Equal(t, "Entertainment", c)

	_, err = NormalizeCategory("rent")
	be.True(t, errors.Is(err, ErrInvalidCategory))
}
