// Package daemon provides the long-running background ledger service: it
// books due monthly templates, fires reminders and serves a local HTTP API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/notify"
	"github.com/theirongolddev/fintrack/internal/pipeline"
)

// Config controls the daemon runtime behavior.
type Config struct {
	DataDir       string
	Interval      time.Duration
	Addr          string
	EventsBuffer  int
	Notifications config.NotificationsConfig
}

// Snapshot is a compact ledger state for status and event payloads.
type Snapshot struct {
	At           time.Time       `json:"at"`
	Wallets      int             `json:"wallets"`
	Transactions int             `json:"transactions"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Unread       int             `json:"unread"`
	LastUpdate   time.Time       `json:"last_update"`
}

// Delta captures snapshot changes between polls.
type Delta struct {
	Wallets      int             `json:"wallets"`
	Transactions int             `json:"transactions"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	TotalExpense decimal.Decimal `json:"total_expense"`
}

func (d Delta) isZero() bool {
	return d.Wallets == 0 &&
		d.Transactions == 0 &&
		d.TotalBalance.IsZero() &&
		d.TotalExpense.IsZero()
}

// Event types.
const (
	EventSnapshot         = "snapshot"
	EventDataChanged      = "data_changed"
	EventMonthlyProcessed = "monthly_processed"
	EventNotification     = "notification"
)

// Event is emitted whenever the ledger changes or a notification is raised.
type Event struct {
	ID           int64               `json:"id"`
	Type         string              `json:"type"`
	Timestamp    time.Time           `json:"timestamp"`
	Snapshot     *Snapshot           `json:"snapshot,omitempty"`
	Delta        *Delta              `json:"delta,omitempty"`
	Notification *model.Notification `json:"notification,omitempty"`
	Created      int                 `json:"created,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time            `json:"started_at"`
	LastPollAt      time.Time            `json:"last_poll_at"`
	PollIntervalSec int                  `json:"poll_interval_sec"`
	PollCount       int64                `json:"poll_count"`
	DataDir         string               `json:"data_dir"`
	Summary         Snapshot             `json:"summary"`
	LastError       string               `json:"last_error,omitempty"`
	EventCount      int                  `json:"event_count"`
	SubscriberCount int                  `json:"subscriber_count"`
	NextAlarms      map[string]time.Time `json:"next_alarms"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg    Config
	ledger *ledger.Service
	center *notify.Center
	now    func() time.Time

	// analytics responses, flushed whenever the ledger changes
	reports *cache.Cache

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event
	alarms      []alarm

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service. Notifications raised through center are
// also streamed to event subscribers.
func New(cfg Config, led *ledger.Service, center *notify.Center) (*Service, error) {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8789"
	}

	s := &Service{
		cfg:       cfg,
		ledger:    led,
		center:    center,
		now:       led.Now,
		reports:   cache.New(15*time.Minute, 30*time.Minute),
		startedAt: led.Now(),
		subs:      make(map[int]chan Event),
	}
	alarms, err := s.buildAlarms(s.startedAt, cfg.Notifications)
	if err != nil {
		return nil, fmt.Errorf("scheduling reminders: %w", err)
	}
	s.alarms = alarms

	center.AddSink(notify.FuncSink{Label: "events", Fn: func(_ context.Context, n model.Notification) error {
		s.publishEvent(Event{Type: EventNotification, Timestamp: s.now(), Notification: &n})
		return nil
	}})
	return s, nil
}

// Run serves the HTTP API and polls until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		// Seed initial snapshot so status is useful immediately.
		s.pollOnce(ctx)

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.pollOnce(ctx)
			}
		}
	})
	return g.Wait()
}

// pollOnce books due templates, fires alarms and refreshes the snapshot.
func (s *Service) pollOnce(ctx context.Context) {
	now := s.now()

	res, err := s.ledger.ProcessDue(ctx)
	if err != nil {
		s.recordError(now, err)
		return
	}
	if len(res.Created) > 0 {
		s.publishEvent(Event{Type: EventMonthlyProcessed, Timestamp: now, Created: len(res.Created)})
	}

	s.runAlarms(ctx, now)

	snap, err := s.loadSnapshot(now)
	if err != nil {
		s.recordError(now, err)
		return
	}

	var ev *Event
	s.mu.Lock()
	prev, prevExists := s.snapshot, s.hasSnapshot
	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""
	switch {
	case !prevExists:
		ev = &Event{Type: EventSnapshot, Timestamp: now, Snapshot: &snap}
	case !snap.LastUpdate.Equal(prev.LastUpdate):
		delta := diffSnapshots(prev, snap)
		ev = &Event{Type: EventDataChanged, Timestamp: now, Snapshot: &snap, Delta: &delta}
	}
	s.mu.Unlock()

	if ev != nil {
		if ev.Type == EventDataChanged {
			s.reports.Flush()
			log.Debug("ledger changed", "transactions", snap.Transactions)
		}
		s.publishEvent(*ev)
	}
}

func (s *Service) recordError(now time.Time, err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.lastPollAt = now
	s.pollCount++
	s.mu.Unlock()
	log.Error("daemon poll failed", "err", err)
}

func (s *Service) loadSnapshot(now time.Time) (Snapshot, error) {
	loaded, err := pipeline.LoadAll(s.ledger.Store(), nil)
	if err != nil {
		return Snapshot{}, err
	}
	last, err := s.ledger.LastUpdate()
	if err != nil {
		return Snapshot{}, err
	}
	unread, err := s.center.UnreadCount()
	if err != nil {
		return Snapshot{}, err
	}

	expense := decimal.Zero
	for _, w := range loaded.Wallets {
		expense = expense.Add(w.Expenses)
	}
	return Snapshot{
		At:           now,
		Wallets:      len(loaded.Wallets),
		Transactions: len(loaded.All),
		TotalBalance: ledger.TotalBalance(loaded.Wallets),
		TotalExpense: expense,
		Unread:       unread,
		LastUpdate:   last,
	}, nil
}

func (s *Service) fireDailySummary(ctx context.Context) error {
	loaded, err := pipeline.LoadAll(s.ledger.Store(), nil)
	if err != nil {
		return err
	}
	_, err = s.center.DailySummary(ctx, loaded.All)
	return err
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Wallets:      curr.Wallets - prev.Wallets,
		Transactions: curr.Transactions - prev.Transactions,
		TotalBalance: curr.TotalBalance.Sub(prev.TotalBalance),
		TotalExpense: curr.TotalExpense.Sub(prev.TotalExpense),
	}
}

// publishEvent numbers ev, appends it to the ring buffer and fans it out
// to stream subscribers without blocking.
func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	next := s.nextAlarms()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DataDir:         s.cfg.DataDir,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
		NextAlarms:      next,
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
