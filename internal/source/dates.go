package source

import (
	"time"

	"github.com/theirongolddev/fintrack/internal/model"
)

const (
	// DateLayout is how transaction dates are written.
	DateLayout = "2006-01-02 15:04"
	// legacyDateLayout is accepted on read for entries written before times were recorded.
	legacyDateLayout = "2006-01-02"
)

// ParseDate reads a transaction date in local time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err == nil {
		return t, nil
	}
	if t, lerr := time.ParseInLocation(legacyDateLayout, s, time.Local); lerr == nil {
		return t, nil
	}
	return time.Time{}, err
}

// FormatDate writes a transaction date, truncated to the minute.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ResolveTime returns when a transaction happened: its date string when it
// parses, otherwise its millisecond timestamp. Zero means unknown.
func ResolveTime(t model.Transaction) time.Time {
	if at, err := ParseDate(t.Date); err == nil {
		return at
	}
	return model.MillisTime(t.Timestamp)
}
