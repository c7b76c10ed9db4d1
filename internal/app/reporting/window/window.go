// Package window resolves request parameters into half-open time windows.
//
// Two strategies coexist and are kept apart on purpose: Month builds a
// calendar-aligned window for the per-type monthly reports, while Lookback
// builds a rolling window ending at "now" for the dashboard. Days slices
// the calendar days used by the weekly series.
package window

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar date format used in day labels.
const DateLayout = "2006-01-02"

// ErrInvalidMonth is returned when year or month is out of range.
var ErrInvalidMonth = errors.New("year must be 1..9999 and month 1..12")

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Month returns the window covering one calendar month in loc.
func Month(year, month int, loc *time.Location) (Window, error) {
	if year < 1 || year > 9999 || month < 1 || month > 12 {
		return Window{}, ErrInvalidMonth
	}
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}, nil
}

// MonthLabel formats year and month as YYYY-MM.
func MonthLabel(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// Lookback returns the rolling window of the last days days ending at now.
func Lookback(now time.Time, days int) Window {
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

// Day is one calendar day window with its display labels.
type Day struct {
	Window
	Label   string // YYYY-MM-DD in the report location
	Weekday string // Sun..Sat
}

var weekdays = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Days returns n consecutive calendar days in loc, oldest first, with the
// last day being the one containing now.
func Days(now time.Time, n int, loc *time.Location) []Day {
	return DaysEndingBefore(now, 0, n, loc)
}

// DaysEndingBefore is Days shifted back by offset whole days; offset 7 with
// n 7 yields the week before the current one.
func DaysEndingBefore(now time.Time, offset, n int, loc *time.Location) []Day {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	out := make([]Day, 0, n)
	for i := 0; i < n; i++ {
		start := today.AddDate(0, 0, -(offset + n - 1 - i))
		out = append(out, Day{
			Window:  Window{Start: start, End: start.AddDate(0, 0, 1)},
			Label:   start.Format(DateLayout),
			Weekday: weekdays[start.Weekday()],
		})
	}
	return out
}
