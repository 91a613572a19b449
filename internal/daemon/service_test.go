package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/notify"
	"github.com/theirongolddev/fintrack/internal/store"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestService(t *testing.T, at time.Time) (*Service, *ledger.Service, *notify.Center, *fakeClock) {
	t.Helper()
	prefs, err := store.Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = prefs.Close() })

	clock := &fakeClock{t: at}
	cfg := config.DefaultConfig()
	center := notify.New(prefs, cfg, notify.WithClock(clock.now))
	led := ledger.New(prefs, ledger.WithAlerter(center), ledger.WithClock(clock.now))

	svc, err := New(Config{
		DataDir:       t.TempDir(),
		Interval:      10 * time.Second,
		EventsBuffer:  50,
		Notifications: cfg.Notifications,
	}, led, center)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, led, center, clock
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Wallets:      2,
		Transactions: 10,
		TotalBalance: decimal.RequireFromString("500"),
		TotalExpense: decimal.RequireFromString("120.50"),
	}
	curr := Snapshot{
		Wallets:      3,
		Transactions: 12,
		TotalBalance: decimal.RequireFromString("450"),
		TotalExpense: decimal.RequireFromString("170.50"),
	}

	delta := diffSnapshots(prev, curr)
	if delta.Wallets != 1 {
		t.Fatalf("Wallets delta = %d, want 1", delta.Wallets)
	}
	if delta.Transactions != 2 {
		t.Fatalf("Transactions delta = %d, want 2", delta.Transactions)
	}
	if !delta.TotalBalance.Equal(decimal.NewFromInt(-50)) {
		t.Fatalf("Balance delta = %s, want -50", delta.TotalBalance)
	}
	if !delta.TotalExpense.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("Expense delta = %s, want 50", delta.TotalExpense)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should give a zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s, _, _, _ := newTestService(t, time.Date(2025, 6, 14, 9, 0, 0, 0, time.Local))
	s.cfg.EventsBuffer = 2

	s.publishEvent(Event{Type: "a"})
	s.publishEvent(Event{Type: "b"})
	s.publishEvent(Event{Type: "c"})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestNextDaily(t *testing.T) {
	loc := time.Local
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"later today", time.Date(2025, 6, 14, 9, 0, 0, 0, loc), time.Date(2025, 6, 14, 21, 0, 0, 0, loc)},
		{"exactly now", time.Date(2025, 6, 14, 21, 0, 0, 0, loc), time.Date(2025, 6, 15, 21, 0, 0, 0, loc)},
		{"already passed", time.Date(2025, 6, 30, 22, 0, 0, 0, loc), time.Date(2025, 7, 1, 21, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDaily(tt.now, "21:00")
			if err != nil {
				t.Fatalf("NextDaily: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextDaily = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := NextDaily(time.Now(), "9pm"); err == nil {
		t.Error("NextDaily accepted a bad clock")
	}
}

func TestNextMonthly(t *testing.T) {
	loc := time.Local
	tests := []struct {
		name string
		now  time.Time
		day  int
		want time.Time
	}{
		{"later this month", time.Date(2025, 6, 1, 9, 0, 0, 0, loc), 1, time.Date(2025, 6, 1, 12, 0, 0, 0, loc)},
		{"next month", time.Date(2025, 6, 1, 13, 0, 0, 0, loc), 1, time.Date(2025, 7, 1, 12, 0, 0, 0, loc)},
		{"clamped to february", time.Date(2025, 2, 3, 9, 0, 0, 0, loc), 31, time.Date(2025, 2, 28, 12, 0, 0, 0, loc)},
		{"year rollover", time.Date(2025, 12, 20, 9, 0, 0, 0, loc), 15, time.Date(2026, 1, 15, 12, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextMonthly(tt.now, tt.day, "12:00")
			if err != nil {
				t.Fatalf("NextMonthly: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextMonthly = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlarmsFireOncePerInstant(t *testing.T) {
	start := time.Date(2025, 6, 14, 20, 59, 0, 0, time.Local)
	s, _, center, clock := newTestService(t, start)
	ctx := context.Background()

	s.runAlarms(ctx, clock.t)
	if n, _ := center.UnreadCount(); n != 0 {
		t.Fatalf("unread before reminder time = %d, want 0", n)
	}

	clock.t = start.Add(2 * time.Minute)
	s.runAlarms(ctx, clock.t)
	s.runAlarms(ctx, clock.t.Add(time.Minute))

	list, err := center.List(model.FilterAll)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Kind != model.KindDailyReminder {
		t.Fatalf("notifications = %+v, want one daily reminder", list)
	}

	next := s.nextAlarms()["daily_reminder"]
	if want := time.Date(2025, 6, 15, 21, 0, 0, 0, time.Local); !next.Equal(want) {
		t.Errorf("next reminder = %v, want %v", next, want)
	}
}

func TestPollOnceEmitsDataChanged(t *testing.T) {
	s, led, _, clock := newTestService(t, time.Date(2025, 6, 14, 9, 0, 0, 0, time.Local))
	ctx := context.Background()

	s.pollOnce(ctx)
	if _, err := led.AddWallet(ctx, "Food", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("AddWallet: %v", err)
	}
	clock.t = clock.t.Add(time.Minute)
	s.pollOnce(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var types []string
	for _, ev := range s.events {
		types = append(types, ev.Type)
	}
	got := strings.Join(types, ",")
	if !strings.HasPrefix(got, EventSnapshot) || !strings.Contains(got, EventNotification) || !strings.HasSuffix(got, EventDataChanged) {
		t.Fatalf("event types = %s", got)
	}
	if s.snapshot.Wallets != 1 {
		t.Errorf("snapshot wallets = %d, want 1", s.snapshot.Wallets)
	}
}

func TestRouter(t *testing.T) {
	s, led, center, _ := newTestService(t, time.Date(2025, 6, 14, 9, 0, 0, 0, time.Local))
	ctx := context.Background()
	if _, err := led.AddWallet(ctx, "Food", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("AddWallet: %v", err)
	}
	if _, err := led.AddTransaction(ctx, "Food", ledger.Entry{
		Name: "Lunch", Amount: decimal.NewFromInt(12), Category: "Food",
	}); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	h := s.Router()

	do := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	if rec := do(http.MethodGet, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}

	rec := do(http.MethodGet, "/v1/wallets")
	var wallets []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &wallets); err != nil {
		t.Fatalf("decode wallets: %v", err)
	}
	if len(wallets) != 1 || wallets[0]["name"] != "Food" || wallets[0]["used_pct"] != float64(12) {
		t.Fatalf("wallets = %v", wallets)
	}

	rec = do(http.MethodGet, "/v1/wallets/Food/transactions")
	if !strings.Contains(rec.Body.String(), `"wallet":"Food"`) {
		t.Errorf("transactions body = %s", rec.Body.String())
	}
	if rec := do(http.MethodGet, "/v1/wallets/Nope/transactions"); rec.Code != http.StatusNotFound {
		t.Errorf("missing wallet = %d, want 404", rec.Code)
	}

	if rec := do(http.MethodGet, "/v1/analytics/monthly"); rec.Header().Get("X-Cache") != "miss" {
		t.Errorf("first analytics X-Cache = %q", rec.Header().Get("X-Cache"))
	}
	if rec := do(http.MethodGet, "/v1/analytics/monthly"); rec.Header().Get("X-Cache") != "hit" {
		t.Errorf("second analytics X-Cache = %q", rec.Header().Get("X-Cache"))
	}
	if rec := do(http.MethodGet, "/v1/analytics/daily"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad period = %d, want 400", rec.Code)
	}
	if rec := do(http.MethodGet, "/v1/analytics/custom?from=June"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad from = %d, want 400", rec.Code)
	}

	list, _ := center.List(model.FilterUnread)
	if len(list) == 0 {
		t.Fatal("expected the wallet-added notification")
	}
	path := "/v1/notifications/" + strconv.FormatInt(list[0].ID, 10) + "/read"
	if rec := do(http.MethodPost, path); rec.Code != http.StatusNoContent {
		t.Fatalf("mark read = %d", rec.Code)
	}
	if rec := do(http.MethodPost, "/v1/notifications/1/read"); rec.Code != http.StatusNotFound {
		t.Errorf("mark missing = %d, want 404", rec.Code)
	}
	if rec := do(http.MethodGet, "/v1/notifications?filter=bogus"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad filter = %d, want 400", rec.Code)
	}

	rec = do(http.MethodGet, "/v1/home")
	if !strings.Contains(rec.Body.String(), `"recent"`) {
		t.Errorf("home body = %s", rec.Body.String())
	}
}

func TestAnalyticsCacheRollsOverAtMidnight(t *testing.T) {
	s, _, _, clock := newTestService(t, time.Date(2025, 6, 30, 23, 50, 0, 0, time.Local))
	h := s.Router()

	get := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/analytics/monthly", nil))
		return rec
	}

	if rec := get(); rec.Header().Get("X-Cache") != "miss" {
		t.Fatalf("first X-Cache = %q", rec.Header().Get("X-Cache"))
	}
	clock.t = clock.t.Add(5 * time.Minute)
	if rec := get(); rec.Header().Get("X-Cache") != "hit" {
		t.Fatalf("same day X-Cache = %q", rec.Header().Get("X-Cache"))
	}

	// Still inside the cache TTL, but a new month has started.
	clock.t = clock.t.Add(10 * time.Minute)
	if rec := get(); rec.Header().Get("X-Cache") != "miss" {
		t.Errorf("next day X-Cache = %q, want miss", rec.Header().Get("X-Cache"))
	}
}
