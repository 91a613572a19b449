package notify

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/carlmjohnson/be"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/store"
)

func newTestCenter(t *testing.T, cfg config.Config, at time.Time, opts ...Option) *Center {
	t.Helper()
	prefs, err := store.Open(filepath.Join(t.TempDir(), "prefs.db"))
	be.NilErr(t, err)
	t.Cleanup(func() { _ = prefs.Close() })
	opts = append([]Option{WithClock(func() time.Time { return at })}, opts...)
	return New(prefs, cfg, opts...)
}

func wallet(name, initial, expenses string) model.Wallet {
	w := model.NewWallet(name, decimal.RequireFromString(initial))
	w.Apply(decimal.RequireFromString(expenses), false)
	return w
}

func titles(list []model.Notification) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.Title
	}
	return out
}

var noon = time.Date(2025, 6, 14, 12, 0, 0, 0, time.Local)

func TestPublishStoresAndDelivers(t *testing.T) {
	var got []model.Notification
	sink := FuncSink{Label: "test", Fn: func(_ context.Context, n model.Notification) error {
		got = append(got, n)
		return nil
	}}
	c := newTestCenter(t, config.DefaultConfig(), noon, WithSinks(sink))
	ctx := context.Background()

	n1, ok, err := c.Publish(ctx, DailyReminderMessage())
	be.NilErr(t, err)
	be.True(t, ok)
	n2, _, err := c.Publish(ctx, BackupReminderMessage())
	be.NilErr(t, err)

	be.Equal(t, noon.UnixMilli(), n1.ID)
	be.Equal(t, noon.UnixMilli()+1, n2.ID)
	be.Equal(t, 2, len(got))

	list, err := c.List(model.FilterAll)
	be.NilErr(t, err)
	be.Equal(t, 2, len(list))
	unread, err := c.UnreadCount()
	be.NilErr(t, err)
	be.Equal(t, 2, unread)
}

func TestPublishSinkFailureIsNotReturned(t *testing.T) {
	sink := FuncSink{Label: "broken", Fn: func(context.Context, model.Notification) error {
		return errors.New("down")
	}}
	c := newTestCenter(t, config.DefaultConfig(), noon, WithSinks(sink))

	_, ok, err := c.Publish(context.Background(), DailyReminderMessage())
	be.NilErr(t, err)
	be.True(t, ok)
}

func TestPublishDisabled(t *testing.T) {
	delivered := 0
	sink := FuncSink{Label: "test", Fn: func(context.Context, model.Notification) error {
		delivered++
		return nil
	}}
	c := newTestCenter(t, config.DefaultConfig(), noon, WithSinks(sink))
	be.NilErr(t, c.SetEnabled(false))

	_, ok, err := c.Publish(context.Background(), DailyReminderMessage())
	be.NilErr(t, err)
	be.False(t, ok)
	be.Equal(t, 0, delivered)

	list, _ := c.List(model.FilterAll)
	be.Equal(t, 0, len(list))
}

func TestPublishCapsStoredList(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Notifications.MaxStored = 3
	c := newTestCenter(t, cfg, noon)
	ctx := context.Background()

	for _, w := range []string{"a", "b", "c", "d", "e"} {
		_, _, err := c.Publish(ctx, WalletAddedMessage(w))
		be.NilErr(t, err)
	}
	list, err := c.List(model.FilterAll)
	be.NilErr(t, err)
	be.Equal(t, 3, len(list))
	// Same timestamp for all, so newest-first falls back to id.
	be.Equal(t, "New wallet 'e' added successfully!", list[0].Message)
	be.Equal(t, "New wallet 'c' added successfully!", list[2].Message)
}

func TestMarkReadDeleteClear(t *testing.T) {
	c := newTestCenter(t, config.DefaultConfig(), noon)
	ctx := context.Background()
	n1, _, _ := c.Publish(ctx, DailyReminderMessage())
	n2, _, _ := c.Publish(ctx, BackupReminderMessage())

	be.NilErr(t, c.MarkRead(n1.ID))
	read, _ := c.List(model.FilterRead)
	be.Equal(t, 1, len(read))
	be.Equal(t, n1.ID, read[0].ID)

	err := c.MarkRead(42)
	be.True(t, errors.Is(err, ErrNotFound))

	changed, err := c.MarkAllRead()
	be.NilErr(t, err)
	be.Equal(t, 1, changed)

	be.NilErr(t, c.Delete(n2.ID))
	be.True(t, errors.Is(c.Delete(n2.ID), ErrNotFound))
	all, _ := c.List(model.FilterAll)
	be.Equal(t, 1, len(all))

	be.NilErr(t, c.Clear())
	all, _ = c.List(model.FilterAll)
	be.Equal(t, 0, len(all))
}

func TestCheckBudgetsRaisesOncePerCrossing(t *testing.T) {
	c := newTestCenter(t, config.DefaultConfig(), noon)
	ctx := context.Background()

	be.NilErr(t, c.CheckBudgets(ctx, []model.Wallet{wallet("Food", "100", "85")}))
	list, _ := c.List(model.FilterAll)
	be.Equal(t, 1, len(list))
	be.Equal(t, "Budget Warning", list[0].Title)
	be.Equal(t, "You've used 85% of your 'Food' budget", list[0].Message)

	// Still in the warning band: nothing new.
	be.NilErr(t, c.CheckBudgets(ctx, []model.Wallet{wallet("Food", "100", "90")}))
	list, _ = c.List(model.FilterAll)
	be.Equal(t, 1, len(list))

	// Over budget and under the low balance line.
	be.NilErr(t, c.CheckBudgets(ctx, []model.Wallet{wallet("Food", "100", "120")}))
	list, _ = c.List(model.FilterAll)
	got := titles(list)
	be.Equal(t, 3, len(got))
	be.True(t, strings.Contains(strings.Join(got, "|"), "Budget Exceeded!"))
	be.True(t, strings.Contains(strings.Join(got, "|"), "Low Balance Warning"))

	// Recovering clears the state so the next crossing alerts again.
	be.NilErr(t, c.CheckBudgets(ctx, []model.Wallet{wallet("Food", "100", "10")}))
	be.NilErr(t, c.CheckBudgets(ctx, []model.Wallet{wallet("Food", "100", "85")}))
	list, _ = c.List(model.FilterAll)
	be.Equal(t, 4, len(list))
}

func TestCheckBudgetsAlertsAfterReenabling(t *testing.T) {
	c := newTestCenter(t, config.DefaultConfig(), noon)
	ctx := context.Background()
	ws := []model.Wallet{wallet("Food", "100", "85")}

	be.NilErr(t, c.SetEnabled(false))
	be.NilErr(t, c.CheckBudgets(ctx, ws))
	list, _ := c.List(model.FilterAll)
	be.Equal(t, 0, len(list))

	be.NilErr(t, c.SetEnabled(true))
	be.NilErr(t, c.CheckBudgets(ctx, ws))
	be.NilErr(t, c.CheckBudgets(ctx, ws))
	list, _ = c.List(model.FilterAll)
	be.Equal(t, 1, len(list))
	be.Equal(t, "Budget Warning", list[0].Title)
}

func TestCheckBudgetsKeepsRaisedLevelWhileSuppressed(t *testing.T) {
	c := newTestCenter(t, config.DefaultConfig(), noon)
	ctx := context.Background()

	be.NilErr(t, c.CheckBudgets(ctx, []model.Wallet{wallet("Food", "100", "85")}))
	be.NilErr(t, c.SetEnabled(false))
	be.NilErr(t, c.CheckBudgets(ctx, []model.Wallet{wallet("Food", "100", "100")}))
	be.NilErr(t, c.SetEnabled(true))

	// The warning was raised before; the suppressed alerts fire now.
	be.NilErr(t, c.CheckBudgets(ctx, []model.Wallet{wallet("Food", "100", "100")}))
	list, _ := c.List(model.FilterAll)
	got := strings.Join(titles(list), "|")
	be.Equal(t, 3, len(list))
	be.Equal(t, 1, strings.Count(got, "Budget Warning"))
	be.True(t, strings.Contains(got, "Budget Exceeded!"))
	be.True(t, strings.Contains(got, "Low Balance Warning"))
}

func TestCheckBudgetsRepeatAlerts(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Notifications.RepeatAlerts = true
	c := newTestCenter(t, cfg, noon)
	ctx := context.Background()

	ws := []model.Wallet{wallet("Food", "100", "85")}
	be.NilErr(t, c.CheckBudgets(ctx, ws))
	be.NilErr(t, c.CheckBudgets(ctx, ws))
	list, _ := c.List(model.FilterAll)
	be.Equal(t, 2, len(list))
}

func TestCheckBudgetsSkipsUnfundedWallets(t *testing.T) {
	c := newTestCenter(t, config.DefaultConfig(), noon)
	be.NilErr(t, c.CheckBudgets(context.Background(), []model.Wallet{wallet("Empty", "0", "50")}))
	list, _ := c.List(model.FilterAll)
	be.Equal(t, 0, len(list))
}

func TestBudgetExceededText(t *testing.T) {
	be.Equal(t, "You have exceeded your 'Rent' budget by 25%", BudgetExceeded("Rent", 125).Text)
	be.Equal(t, "Your 'Rent' wallet is down to 5% of its initial balance", LowBalance("Rent", 5).Text)
}

func TestDailySummaryMessage(t *testing.T) {
	ds := model.DailyStats{
		Expense: decimal.RequireFromString("42.50"),
		Income:  decimal.RequireFromString("100"),
		ByCategory: map[string]decimal.Decimal{
			"Food":          decimal.RequireFromString("30"),
			"Pets":          decimal.RequireFromString("10"),
			"Health":        decimal.RequireFromString("2"),
			"Entertainment": decimal.RequireFromString("0.50"),
		},
	}
	msg := DailySummaryMessage(ds)
	be.Equal(t, "Today you spent $42.50", msg.Text)
	be.True(t, strings.HasPrefix(msg.Detail, "Today's summary:\nTotal spent: $42.50\nTotal income: $100.00\n"))
	be.True(t, strings.Contains(msg.Detail, "- Food: $30.00\n"))
	be.False(t, strings.Contains(msg.Detail, "Entertainment"))

	empty := DailySummaryMessage(model.DailyStats{})
	be.Equal(t, "No expenses recorded today. Great job!", empty.Text)
	be.False(t, strings.Contains(empty.Detail, "Total income"))
}

func TestDailySummaryUsesToday(t *testing.T) {
	c := newTestCenter(t, config.DefaultConfig(), noon)
	txs := []model.Transaction{
		{Name: "Lunch", Amount: decimal.NewFromInt(12), Category: "Food", At: noon.Add(-time.Hour)},
		{Name: "Old", Amount: decimal.NewFromInt(99), Category: "Food", At: noon.AddDate(0, 0, -1)},
	}
	n, err := c.DailySummary(context.Background(), txs)
	be.NilErr(t, err)
	be.Equal(t, "Today you spent $12.00", n.Message)
	be.Equal(t, model.KindDailySummary, n.Kind)
}

func TestRelative(t *testing.T) {
	now := noon
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "Just now"},
		{5 * time.Minute, "5 min ago"},
		{3 * time.Hour, "3 hours ago"},
		{30 * time.Hour, "Yesterday"},
		{4 * 24 * time.Hour, "4 days ago"},
		{10 * 24 * time.Hour, "Jun 04, 2025"},
	}
	for _, tt := range tests {
		be.Equal(t, tt.want, Relative(now.Add(-tt.ago), now))
	}
}

func TestNewMailSinkDisabled(t *testing.T) {
	cfg := config.DefaultConfig().Email
	be.True(t, NewMailSink(cfg, "key") == nil)

	cfg.Enabled = true
	cfg.Domain = "mg.example.com"
	cfg.Recipient = "me@example.com"
	be.True(t, NewMailSink(cfg, "") == nil)
	be.True(t, NewMailSink(cfg, "key") != nil)
}

func TestSetConfigChangesThresholds(t *testing.T) {
	c := newTestCenter(t, config.DefaultConfig(), noon)
	cfg := config.DefaultConfig()
	cfg.Thresholds.WarningPct = 90
	c.SetConfig(cfg)

	be.NilErr(t, c.CheckBudgets(context.Background(), []model.Wallet{wallet("Food", "100", "85")}))
	list, _ := c.List(model.FilterAll)
	be.Equal(t, 0, len(list))
}

func TestParseFilter(t *testing.T) {
	for in, want := range map[string]model.NotificationFilter{
		"":       model.FilterAll,
		"all":    model.FilterAll,
		"Unread": model.FilterUnread,
		"read":   model.FilterRead,
	} {
		got, err := ParseFilter(in)
		be.NilErr(t, err)
		be.Equal(t, want, got)
	}
	_, err := ParseFilter("starred")
	be.True(t, err != nil)
}
