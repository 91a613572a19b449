package pipeline

import (
	"fmt"
	"time"

	"github.com/theirongolddev/fintrack/internal/model"
)

// Report is everything the analytics screen shows for one range.
type Report struct {
	Range     model.Range
	Series    model.Series
	Breakdown model.CategoryBreakdown
	Summary   model.SummaryStats
}

// Analyze builds the analytics report for rng. The series is bucketed from
// all transactions so the monthly chart covers the whole year, while the
// category breakdown and summary use only the filtered window.
func Analyze(txs []model.Transaction, rng model.Range, now time.Time) Report {
	inRange := FilterByPeriod(txs, rng, now)
	return Report{
		Range:     rng,
		Series:    BuildSeries(txs, rng, now),
		Breakdown: CategoryBreakdown(inRange),
		Summary:   Aggregate(inRange, time.Time{}, time.Time{}),
	}
}

// ParsePeriod maps user input onto a Period.
func ParsePeriod(s string) (model.Period, error) {
	switch model.Period(s) {
	case model.PeriodWeekly, model.PeriodMonthly, model.PeriodYear, model.PeriodCustom:
		return model.Period(s), nil
	case "week", "w":
		return model.PeriodWeekly, nil
	case "month", "m":
		return model.PeriodMonthly, nil
	case "years", "y":
		return model.PeriodYear, nil
	}
	return "", fmt.Errorf("unknown period %q (want weekly, monthly, year or custom)", s)
}

// DayLayout is the format of custom range bounds.
const DayLayout = "2006-01-02"

// ParseRange builds a range from a period name and optional from/to days in
// DayLayout, interpreted in local time.
func ParseRange(period, from, to string) (model.Range, error) {
	p, err := ParsePeriod(period)
	if err != nil {
		return model.Range{}, err
	}
	rng := model.Range{Period: p}
	for _, b := range []struct {
		name, value string
		dst         *time.Time
	}{{"from", from, &rng.Start}, {"to", to, &rng.End}} {
		if b.value == "" {
			continue
		}
		t, err := time.ParseInLocation(DayLayout, b.value, time.Local)
		if err != nil {
			return model.Range{}, fmt.Errorf("bad %s date %q, want YYYY-MM-DD", b.name, b.value)
		}
		*b.dst = t
	}
	if !rng.Start.IsZero() && !rng.End.IsZero() && rng.End.Before(rng.Start) {
		return model.Range{}, fmt.Errorf("range ends (%s) before it starts (%s)", to, from)
	}
	return rng, nil
}

// PreviousWindow returns the window of equal length ending at since.
func PreviousWindow(since, until time.Time) (time.Time, time.Time) {
	return since.Add(-until.Sub(since)), since
}
