package daemon

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewClientNormalizesAddr(t *testing.T) {
	if NewClient("  ") != nil {
		t.Fatal("empty addr should give a nil client")
	}
	if got := NewClient("127.0.0.1:8789").BaseURL(); got != "http://127.0.0.1:8789" {
		t.Errorf("BaseURL = %q", got)
	}
	if got := NewClient("http://localhost:9000/").BaseURL(); got != "http://localhost:9000" {
		t.Errorf("BaseURL = %q", got)
	}
}

func TestClientAgainstRouter(t *testing.T) {
	s, led, _, _ := newTestService(t, time.Date(2025, 6, 14, 9, 0, 0, 0, time.Local))
	ctx := context.Background()
	if _, err := led.AddWallet(ctx, "Food", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("AddWallet: %v", err)
	}
	s.pollOnce(ctx)

	srv := httptest.NewServer(s.Router())
	defer srv.Close()
	c := NewClient(srv.URL)

	if !c.Healthy(ctx) {
		t.Fatal("Healthy = false")
	}

	st, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Summary.Wallets != 1 || st.PollCount != 1 {
		t.Errorf("status = %+v", st)
	}

	list, err := c.Notifications(ctx, "unread")
	if err != nil {
		t.Fatalf("Notifications: %v", err)
	}
	if len(list) == 0 {
		t.Fatal("expected the wallet-added notification")
	}
	before := len(list)
	if err := c.MarkRead(ctx, list[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if list, _ = c.Notifications(ctx, "unread"); len(list) != before-1 {
		t.Errorf("unread after MarkRead = %d, want %d", len(list), before-1)
	}

	err = c.MarkRead(ctx, 424242)
	if !errors.Is(err, ErrNotFound) || !strings.Contains(err.Error(), "not found") {
		t.Errorf("MarkRead(missing) = %v, want ErrNotFound", err)
	}

	if _, err := c.Notifications(ctx, "bogus"); err == nil || !strings.Contains(err.Error(), "HTTP 400") {
		t.Errorf("bad filter err = %v", err)
	}

	events, err := c.Events(ctx)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	var sawSnapshot bool
	for _, ev := range events {
		sawSnapshot = sawSnapshot || ev.Type == EventSnapshot
	}
	if !sawSnapshot {
		t.Errorf("no snapshot event in %+v", events)
	}
}

func TestClientUnavailable(t *testing.T) {
	srv := httptest.NewServer(nil)
	addr := srv.URL
	srv.Close()

	_, err := NewClient(addr).Status(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
