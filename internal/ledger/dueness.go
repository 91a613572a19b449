package ledger

import (
	"time"

	"github.com/theirongolddev/fintrack/internal/model"
)

// MonthlyDue reports whether template m should be materialized at now.
//
// A template fires once per calendar month, on or after its day. Days past
// the end of a short month fire on the month's last day. A template that has
// never run and was created this month after its day waits for next month.
func MonthlyDue(m model.MonthlyTransaction, now time.Time) bool {
	if !m.IsActive {
		return false
	}

	target := clampDay(m.DayOfMonth, now)
	if now.Day() < target {
		return false
	}

	if last := model.MillisTime(m.LastProcessed); !last.IsZero() {
		last = last.In(now.Location())
		return !sameMonth(last, now)
	}

	if created := model.MillisTime(m.CreatedAt); !created.IsZero() {
		created = created.In(now.Location())
		if sameMonth(created, now) && created.Day() > target {
			return false
		}
	}
	return true
}

// clampDay limits day to the length of now's month.
func clampDay(day int, now time.Time) int {
	last := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	if day > last {
		return last
	}
	if day < 1 {
		return 1
	}
	return day
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
