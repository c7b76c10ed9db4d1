// Package params parses the query parameters shared by the report endpoints.
package params

import (
	"net/http"
	"strconv"

	"github.com/crisisline/crisishub/internal/app/system/apierr"
	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultDays is the dashboard lookback when "days" is absent.
const DefaultDays = 7

// Month reads ?year=YYYY&month=MM. Both are required.
func Month(r *http.Request) (year, month int, err error) {
	ys, ms := query.Get(r, "year"), query.Get(r, "month")
	if ys == "" || ms == "" {
		return 0, 0, apierr.Validation("Please provide both year and month (e.g. ?year=2025&month=10)", "year", "month")
	}
	year, yerr := strconv.Atoi(ys)
	month, merr := strconv.Atoi(ms)
	if yerr != nil || merr != nil || year < 1 || year > 9999 || month < 1 || month > 12 {
		return 0, 0, apierr.Validation("year must be 1-9999 and month 1-12", "year", "month")
	}
	return year, month, nil
}

// Days reads ?days=N, defaulting to DefaultDays.
func Days(r *http.Request) (int, error) {
	s := query.Get(r, "days")
	if s == "" {
		return DefaultDays, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 366 {
		return 0, apierr.Validation("days must be a whole number between 1 and 366", "days")
	}
	return n, nil
}
