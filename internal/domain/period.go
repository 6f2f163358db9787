package domain

import (
	"fmt"
	"time"
)

// Period is a leaderboard aggregation window.
type Period string

const (
	PeriodAllTime Period = "all_time"
	PeriodMonthly Period = "monthly"
	PeriodWeekly  Period = "weekly"
)

// Periods lists every aggregation window a scoring event contributes to.
func Periods() []Period {
	return []Period{PeriodAllTime, PeriodMonthly, PeriodWeekly}
}

// ParsePeriod validates a period string at the boundary.
func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case PeriodAllTime, PeriodMonthly, PeriodWeekly:
		return Period(raw), nil
	}
	return "", fmt.Errorf("%w: period %q", ErrInvalidInput, raw)
}

// WindowStart returns the opening instant of the window containing t.
// All-time uses the zero time so every event lands in one window.
// Monthly windows open on the first of the calendar month, weekly windows
// on the ISO week's Monday, both at 00:00 UTC.
func (p Period) WindowStart(t time.Time) time.Time {
	t = t.UTC()
	switch p {
	case PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case PeriodWeekly:
		daysSinceMonday := (int(t.Weekday()) + 6) % 7
		monday := t.AddDate(0, 0, -daysSinceMonday)
		return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return time.Time{}
	}
}
