// Package notify stores in-app notifications, raises budget alerts and
// delivers notifications to external sinks.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/source"
	"github.com/theirongolddev/fintrack/internal/store"
)

// ErrNotFound is returned when no notification has the requested id.
var ErrNotFound = errors.New("notification not found")

// Message is a notification before it is stored.
type Message struct {
	Kind   model.NotificationKind
	Title  string
	Text   string
	Detail string
}

// Center persists notifications and fans them out to sinks.
type Center struct {
	prefs *store.Store
	cfg   config.Config
	now   func() time.Time

	mu    sync.Mutex
	sinks []Sink
}

// Option configures a Center.
type Option func(*Center)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// WithSinks registers delivery sinks.
func WithSinks(sinks ...Sink) Option {
	return func(c *Center) { c.sinks = append(c.sinks, sinks...) }
}

// New returns a Center using cfg's thresholds and notification settings.
func New(prefs *store.Store, cfg config.Config, opts ...Option) *Center {
	c := &Center{prefs: prefs, cfg: cfg, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetConfig swaps the thresholds and notification settings, e.g. after
// the settings screen saved new values.
func (c *Center) SetConfig(cfg config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
}

func (c *Center) config() config.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// AddSink registers another sink at runtime.
func (c *Center) AddSink(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, s)
}

// Enabled reports the user's notifications switch. Defaults to on.
func (c *Center) Enabled() (bool, error) {
	return c.prefs.GetBool(store.NSProfile, store.KeyNotificationsEnabled, true)
}

// SetEnabled turns notifications on or off.
func (c *Center) SetEnabled(on bool) error {
	return c.prefs.PutBool(store.NSProfile, store.KeyNotificationsEnabled, on)
}

// Publish stores msg and hands it to every sink. When notifications are
// disabled nothing is stored or delivered and ok is false. Sink failures
// are logged and never returned.
func (c *Center) Publish(ctx context.Context, msg Message) (n model.Notification, ok bool, err error) {
	on, err := c.Enabled()
	if err != nil {
		return n, false, err
	}
	if !on {
		log.Debug("notification suppressed", "title", msg.Title)
		return n, false, nil
	}

	limit := c.config().Notifications.MaxStored
	c.mu.Lock()
	now := c.now()
	err = c.prefs.Update(func(tx *store.Tx) error {
		list, err := readNotifications(tx)
		if err != nil {
			return err
		}
		n = model.Notification{
			ID:        uniqueID(list, now.UnixMilli()),
			Title:     msg.Title,
			Message:   msg.Text,
			Detail:    msg.Detail,
			Kind:      msg.Kind,
			Timestamp: now.UnixMilli(),
		}
		list = append(list, n)
		if limit > 0 && len(list) > limit {
			sortOldestFirst(list)
			list = list[len(list)-limit:]
		}
		return writeNotifications(tx, list)
	})
	sinks := append([]Sink(nil), c.sinks...)
	c.mu.Unlock()
	if err != nil {
		return model.Notification{}, false, err
	}

	log.Info("notification", "title", n.Title, "message", n.Message)
	for _, s := range sinks {
		if err := s.Deliver(ctx, n); err != nil {
			log.Warn("notification delivery failed", "sink", s.Name(), "err", err)
		}
	}
	return n, true, nil
}

func uniqueID(list []model.Notification, id int64) int64 {
	used := make(map[int64]struct{}, len(list))
	for _, n := range list {
		used[n.ID] = struct{}{}
	}
	for {
		if _, ok := used[id]; !ok {
			return id
		}
		id++
	}
}

func sortOldestFirst(list []model.Notification) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp < list[j].Timestamp
	})
}

// List returns the notifications passing filter, newest first.
func (c *Center) List(filter model.NotificationFilter) ([]model.Notification, error) {
	list, err := readNotifications(c.prefs)
	if err != nil {
		return nil, err
	}
	out := make([]model.Notification, 0, len(list))
	for _, n := range list {
		if filter.Keep(n) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// ParseFilter maps "all", "unread" or "read" onto a notification filter.
func ParseFilter(s string) (model.NotificationFilter, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return model.FilterAll, nil
	case "unread":
		return model.FilterUnread, nil
	case "read":
		return model.FilterRead, nil
	}
	return model.FilterAll, fmt.Errorf("unknown filter %q (want all, unread or read)", s)
}

// UnreadCount is the badge number.
func (c *Center) UnreadCount() (int, error) {
	list, err := c.List(model.FilterUnread)
	return len(list), err
}

// MarkRead flags one notification as read.
func (c *Center) MarkRead(id int64) error {
	return c.modify(func(list []model.Notification) ([]model.Notification, error) {
		for i := range list {
			if list[i].ID == id {
				list[i].IsRead = true
				return list, nil
			}
		}
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	})
}

// MarkAllRead flags every notification as read and returns how many changed.
func (c *Center) MarkAllRead() (int, error) {
	changed := 0
	err := c.modify(func(list []model.Notification) ([]model.Notification, error) {
		for i := range list {
			if !list[i].IsRead {
				list[i].IsRead = true
				changed++
			}
		}
		return list, nil
	})
	return changed, err
}

// Delete removes one notification.
func (c *Center) Delete(id int64) error {
	return c.modify(func(list []model.Notification) ([]model.Notification, error) {
		for i := range list {
			if list[i].ID == id {
				return append(list[:i], list[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	})
}

// Clear removes every notification.
func (c *Center) Clear() error {
	return c.modify(func([]model.Notification) ([]model.Notification, error) {
		return nil, nil
	})
}

func (c *Center) modify(fn func([]model.Notification) ([]model.Notification, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs.Update(func(tx *store.Tx) error {
		list, err := readNotifications(tx)
		if err != nil {
			return err
		}
		list, err = fn(list)
		if err != nil {
			return err
		}
		return writeNotifications(tx, list)
	})
}

type reader interface {
	GetString(ns, key string) (string, bool, error)
}

func readNotifications(r reader) ([]model.Notification, error) {
	blob, _, err := r.GetString(store.NSNotification, store.KeyNotifications)
	if err != nil {
		return nil, err
	}
	list, res, err := source.DecodeNotifications(blob)
	if err != nil {
		return nil, fmt.Errorf("reading notifications: %w", err)
	}
	if res.ParseErrors > 0 {
		log.Warn("skipped unreadable notifications", "count", res.ParseErrors)
	}
	return list, nil
}

func writeNotifications(tx *store.Tx, list []model.Notification) error {
	blob, err := source.EncodeNotifications(list)
	if err != nil {
		return err
	}
	return tx.PutString(store.NSNotification, store.KeyNotifications, blob)
}
