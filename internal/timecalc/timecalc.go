// Package timecalc holds the calendar helpers used to pick report date ranges.
package timecalc

import (
	"fmt"
	"time"

	"github.com/Tiliavir/worklog-report/internal/model"
)

// DateLayout is the calendar date format used in queries and reports.
const DateLayout = model.DateLayout

// Period names a date range relative to a reference day.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDuration formats seconds as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, ..., Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := StartOfDay(t.AddDate(0, 0, -(wd - 1)))
	return monday, monday.AddDate(0, 0, 6)
}

// MonthRange returns the first and last day of the month containing t.
func MonthRange(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first, first.AddDate(0, 1, -1)
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Range returns the inclusive start and end dates of p around now.
func Range(p Period, now time.Time) (string, string, error) {
	switch p {
	case PeriodToday:
		d := FormatDate(now)
		return d, d, nil
	case PeriodWeek:
		from, to := WeekRange(now)
		return FormatDate(from), FormatDate(to), nil
	case PeriodMonth:
		from, to := MonthRange(now)
		return FormatDate(from), FormatDate(to), nil
	}
	return "", "", fmt.Errorf("unknown period %q", p)
}

// Label describes p around now for headings, e.g. "2026-W09" or "2026-02".
func Label(p Period, now time.Time) string {
	switch p {
	case PeriodWeek:
		return ISOWeekLabel(now)
	case PeriodMonth:
		return now.Format("2006-01")
	}
	return FormatDate(now)
}
