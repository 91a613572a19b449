package daemon

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/theirongolddev/fintrack/internal/config"
)

// NextDaily returns the next time the wall clock reads clock ("HH:MM"):
// later today, or tomorrow when that instant is not after now.
func NextDaily(now time.Time, clock string) (time.Time, error) {
	h, m, err := config.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	at := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
	if !at.After(now) {
		at = time.Date(now.Year(), now.Month(), now.Day()+1, h, m, 0, 0, now.Location())
	}
	return at, nil
}

// NextMonthly returns the next occurrence of day at clock. Days past the
// end of a month fall on its last day.
func NextMonthly(now time.Time, day int, clock string) (time.Time, error) {
	h, m, err := config.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	at := monthlyAt(now.Year(), now.Month(), day, h, m, now.Location())
	if !at.After(now) {
		at = monthlyAt(now.Year(), now.Month()+1, day, h, m, now.Location())
	}
	return at, nil
}

func monthlyAt(year int, month time.Month, day, h, m int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, h, m, 0, 0, loc)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return first.AddDate(0, 0, day-1)
}

// alarm fires once per scheduled instant.
type alarm struct {
	name string
	at   time.Time
	next func(now time.Time) (time.Time, error)
	fire func(ctx context.Context) error
}

func newAlarm(name string, now time.Time, next func(time.Time) (time.Time, error), fire func(context.Context) error) (alarm, error) {
	at, err := next(now)
	if err != nil {
		return alarm{}, err
	}
	return alarm{name: name, at: at, next: next, fire: fire}, nil
}

// buildAlarms schedules the daily reminder, the daily summary and the
// monthly backup reminder.
func (s *Service) buildAlarms(now time.Time, n config.NotificationsConfig) ([]alarm, error) {
	daily := func(clock string) func(time.Time) (time.Time, error) {
		return func(t time.Time) (time.Time, error) { return NextDaily(t, clock) }
	}
	specs := []struct {
		name string
		next func(time.Time) (time.Time, error)
		fire func(context.Context) error
	}{
		{"daily_reminder", daily(n.ReminderTime), func(ctx context.Context) error {
			_, err := s.center.DailyReminder(ctx)
			return err
		}},
		{"daily_summary", daily(n.SummaryTime), s.fireDailySummary},
		{"backup_reminder", func(t time.Time) (time.Time, error) {
			return NextMonthly(t, n.BackupDay, n.BackupTime)
		}, func(ctx context.Context) error {
			_, err := s.center.BackupReminder(ctx)
			return err
		}},
	}

	alarms := make([]alarm, 0, len(specs))
	for _, sp := range specs {
		a, err := newAlarm(sp.name, now, sp.next, sp.fire)
		if err != nil {
			return nil, err
		}
		alarms = append(alarms, a)
	}
	return alarms, nil
}

// runAlarms fires every alarm whose instant has passed and schedules its
// next instant after now. An instant missed while the daemon was down is
// not replayed.
func (s *Service) runAlarms(ctx context.Context, now time.Time) {
	for i := range s.alarms {
		s.mu.RLock()
		a := s.alarms[i]
		s.mu.RUnlock()
		if now.Before(a.at) {
			continue
		}

		if err := a.fire(ctx); err != nil {
			log.Warn("alarm failed", "alarm", a.name, "err", err)
		} else {
			log.Info("alarm fired", "alarm", a.name)
		}

		next, err := a.next(now)
		if err != nil {
			log.Error("alarm rescheduling failed", "alarm", a.name, "err", err)
			continue
		}
		s.mu.Lock()
		s.alarms[i].at = next
		s.mu.Unlock()
	}
}

func (s *Service) nextAlarms() map[string]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]time.Time, len(s.alarms))
	for _, a := range s.alarms {
		out[a.name] = a.at
	}
	return out
}
