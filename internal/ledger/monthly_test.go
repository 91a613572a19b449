package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/carlmjohnson/be"

	"github.com/theirongolddev/fintrack/internal/model"
)

func TestMonthlyDue(t *testing.T) {
	now := time.Date(2025, 2, 28, 12, 0, 0, 0, time.Local)
	ms := func(t time.Time) int64 { return t.UnixMilli() }

	tests := []struct {
		name string
		m    model.MonthlyTransaction
		want bool
	}{
		{
			name: "inactive",
			m:    model.MonthlyTransaction{DayOfMonth: 1, IsActive: false},
			want: false,
		},
		{
			name: "on target day",
			m:    model.MonthlyTransaction{DayOfMonth: 28, IsActive: true},
			want: true,
		},
		{
			name: "day clamped to short month",
			m:    model.MonthlyTransaction{DayOfMonth: 31, IsActive: true},
			want: true,
		},
		{
			name: "already processed this month",
			m: model.MonthlyTransaction{DayOfMonth: 5, IsActive: true,
				LastProcessed: ms(time.Date(2025, 2, 5, 8, 0, 0, 0, time.Local))},
			want: false,
		},
		{
			name: "processed last month catches up",
			m: model.MonthlyTransaction{DayOfMonth: 5, IsActive: true,
				LastProcessed: ms(time.Date(2025, 1, 5, 8, 0, 0, 0, time.Local))},
			want: true,
		},
		{
			name: "created this month after its day",
			m: model.MonthlyTransaction{DayOfMonth: 5, IsActive: true,
				CreatedAt: ms(time.Date(2025, 2, 20, 8, 0, 0, 0, time.Local))},
			want: false,
		},
		{
			name: "created this month on its day",
			m: model.MonthlyTransaction{DayOfMonth: 20, IsActive: true,
				CreatedAt: ms(time.Date(2025, 2, 20, 8, 0, 0, 0, time.Local))},
			want: true,
		},
		{
			name: "created last month",
			m: model.MonthlyTransaction{DayOfMonth: 5, IsActive: true,
				CreatedAt: ms(time.Date(2025, 1, 20, 8, 0, 0, 0, time.Local))},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, tt.want, MonthlyDue(tt.m, now))
		})
	}

	early := time.Date(2025, 2, 3, 12, 0, 0, 0, time.Local)
	be.False(t, MonthlyDue(model.MonthlyTransaction{DayOfMonth: 4, IsActive: true}, early))
}

func TestClampDay(t *testing.T) {
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.Local)
	be.Equal(t, 29, clampDay(31, feb))
	be.Equal(t, 10, clampDay(10, feb))
	apr := time.Date(2025, 4, 1, 0, 0, 0, 0, time.Local)
	be.Equal(t, 30, clampDay(31, apr))
}

func TestAddMonthlyValidation(t *testing.T) {
	svc, _, _ := newTestService(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local))
	_, err := svc.AddWallet(context.Background(), "Main", dec("100"))
	be.NilErr(t, err)

	base := Template{Name: "Rent", Amount: dec("10"), Category: "Essentials", Wallet: "Main", DayOfMonth: 5}

	bad := base
	bad.DayOfMonth = 32
	_, err = svc.AddMonthly(bad)
	be.True(t, errors.Is(err, ErrInvalidDay))

	bad = base
	bad.Wallet = "Other"
	_, err = svc.AddMonthly(bad)
	be.True(t, errors.Is(err, ErrWalletNotFound))

	m, err := svc.AddMonthly(base)
	be.NilErr(t, err)
	be.True(t, m.IsActive)
	be.Nonzero(t, m.CreatedAt)
}

func TestUpdateToggleDeleteMonthly(t *testing.T) {
	svc, _, _ := newTestService(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local))
	_, err := svc.AddWallet(context.Background(), "Main", dec("100"))
	be.NilErr(t, err)
	_, err = svc.AddMonthly(Template{Name: "Rent", Amount: dec("10"), Category: "Essentials", Wallet: "Main", DayOfMonth: 5})
	be.NilErr(t, err)

	m, err := svc.UpdateMonthly(0, Template{Name: "Rent", Amount: dec("15"), Category: "essentials", Wallet: "Main", DayOfMonth: 6})
	be.NilErr(t, err)
	be.Equal(t, 6, m.DayOfMonth)
	be.Equal(t, "Essentials", m.Category)
	be.True(t, m.IsActive)

	m, err = svc.ToggleMonthly(0)
	be.NilErr(t, err)
	be.False(t, m.IsActive)

	_, err = svc.ToggleMonthly(3)
	be.True(t, errors.Is(err, ErrTemplateNotFound))

	be.NilErr(t, svc.DeleteMonthly(0))
	ms, err := svc.Monthly()
	be.NilErr(t, err)
	be.Equal(t, 0, len(ms))
	be.True(t, errors.Is(svc.DeleteMonthly(0), ErrTemplateNotFound))
}

func TestProcessDue(t *testing.T) {
	created := time.Date(2025, 2, 1, 9, 0, 0, 0, time.Local)
	svc, alerts, clock := newTestService(t, created)
	ctx := context.Background()

	_, err := svc.AddWallet(ctx, "Main", dec("1000"))
	be.NilErr(t, err)
	_, err = svc.AddMonthly(Template{Name: "Rent", Amount: dec("300"), Category: "Essentials", Wallet: "Main", DayOfMonth: 5})
	be.NilErr(t, err)
	_, err = svc.AddMonthly(Template{Name: "Salary", Amount: dec("50"), IsIncome: true, Category: "Savings", Wallet: "Main", DayOfMonth: 5})
	be.NilErr(t, err)

	// Before the day nothing happens.
	clock.t = time.Date(2025, 2, 4, 9, 0, 0, 0, time.Local)
	res, err := svc.ProcessDue(ctx)
	be.NilErr(t, err)
	be.Equal(t, 0, len(res.Created))
	be.Equal(t, 0, alerts.checked)
	day, err := svc.LastProcessedDay()
	be.NilErr(t, err)
	be.Equal(t, "2025-02-04", day)

	clock.t = time.Date(2025, 2, 5, 7, 0, 0, 0, time.Local)
	res, err = svc.ProcessDue(ctx)
	be.NilErr(t, err)
	be.Equal(t, 2, len(res.Created))
	be.Equal(t, "Rent (Monthly)", res.Created[0].Name)
	be.Equal(t, 1, alerts.checked)

	w, err := svc.Wallet("Main")
	be.NilErr(t, err)
	be.Equal(t, "750.00", w.Remaining.StringFixed(2))
	be.Equal(t, "300.00", w.Expenses.StringFixed(2))

	// A second run in the same month books nothing.
	clock.t = time.Date(2025, 2, 20, 7, 0, 0, 0, time.Local)
	res, err = svc.ProcessDue(ctx)
	be.NilErr(t, err)
	be.Equal(t, 0, len(res.Created))

	// Paused templates are skipped.
	_, err = svc.ToggleMonthly(1)
	be.NilErr(t, err)
	clock.t = time.Date(2025, 3, 9, 7, 0, 0, 0, time.Local)
	res, err = svc.ProcessDue(ctx)
	be.NilErr(t, err)
	be.Equal(t, 1, len(res.Created))

	txs, err := svc.Transactions("Main")
	be.NilErr(t, err)
	be.Equal(t, 3, len(txs))
	be.Equal(t, "2025-03-09 07:00", txs[0].Date)
}
