package reporting

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/crisisline/crisishub/internal/app/reporting/stats"
	"github.com/crisisline/crisishub/internal/app/reporting/window"
	metricsstore "github.com/crisisline/crisishub/internal/app/store/metrics"
	"github.com/crisisline/crisishub/internal/app/store/queries/reportqueries"
	"github.com/crisisline/crisishub/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

// Dashboard lookback bounds, in days.
const (
	DefaultLookbackDays = 7
	MaxLookbackDays     = 366
)

// ErrInvalidDays is returned when the dashboard lookback is out of range.
var ErrInvalidDays = errors.New("days must be a whole number between 1 and 366")

// submissionCollections lists the three submission collections in the
// order their counts are reported.
var submissionCollections = [3]string{
	models.CollCrisisCalls,
	models.CollMobileCrises,
	models.CollStabilizations,
}

// DayCounts is one calendar day of per-type submission counts.
type DayCounts struct {
	Day           string `json:"day"`
	Date          string `json:"date"`
	Count         int64  `json:"count"`
	CrisisCalls   int64  `json:"crisisCalls"`
	MobileCrisis  int64  `json:"mobileCrisis"`
	Stabilization int64  `json:"stabilization"`
}

// Comparison compares this week's submissions with the week before.
type Comparison struct {
	CurrentWeekTotal  int64   `json:"currentWeekTotal"`
	PreviousWeekTotal int64   `json:"previousWeekTotal"`
	PercentageChange  float64 `json:"percentageChange"`
}

// WeeklySubmissions is the last seven calendar days plus the comparison.
type WeeklySubmissions struct {
	CurrentWeek []DayCounts `json:"currentWeek"`
	Comparison  Comparison  `json:"comparison"`
}

// DateCount is a count for one calendar date.
type DateCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// NewAccounts describes accounts created since a cutoff.
type NewAccounts struct {
	Count          int64                        `json:"count"`
	RecentUsers    []metricsstore.RecentAccount `json:"recentUsers"`
	DailyBreakdown []DateCount                  `json:"dailyBreakdown"`
}

// DashboardSummary is the cross-type dashboard.
type DashboardSummary struct {
	TotalFormSubmitted  int64             `json:"totalFormSubmitted"`
	CrisisCalls         int64             `json:"crisisCalls"`
	MobileCrisis        int64             `json:"mobileCrisis"`
	CrisisStabilization int64             `json:"crisisStabilization"`
	TotalUsers          int64             `json:"totalUsers"`
	ActiveUsers         int64             `json:"activeUsers"`
	InactiveUsers       int64             `json:"inactiveUsers"`
	UserGrowth          float64           `json:"userGrowth"`
	NewUsers            NewAccounts       `json:"newUsers"`
	WeeklySubmissions   WeeklySubmissions `json:"weeklySubmissions"`
}

// dailySeries counts submissions of every type for each day in days,
// optionally restricted to one owner. days must be contiguous.
func (e *Engine) dailySeries(ctx context.Context, days []window.Day, ownerID string) ([]DayCounts, error) {
	out := make([]DayCounts, len(days))
	if len(days) == 0 {
		return out, nil
	}
	scope := reportqueries.In(window.Window{Start: days[0].Start, End: days[len(days)-1].End}).Owned(ownerID)

	var perType [3]map[string]int64
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range submissionCollections {
		g.Go(func() error {
			m, err := reportqueries.DailyCounts(gctx, e.db.Collection(name), scope, e.loc)
			perType[i] = m
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, d := range days {
		dc := DayCounts{
			Day:           d.Weekday,
			Date:          d.Label,
			CrisisCalls:   perType[0][d.Label],
			MobileCrisis:  perType[1][d.Label],
			Stabilization: perType[2][d.Label],
		}
		dc.Count = dc.CrisisCalls + dc.MobileCrisis + dc.Stabilization
		out[i] = dc
	}
	return out, nil
}

// WeeklyComparison counts submissions per type for each of the last seven
// calendar days and compares the week total with the seven days before.
func (e *Engine) WeeklyComparison(ctx context.Context) (WeeklySubmissions, error) {
	now := e.now()
	all := window.DaysEndingBefore(now, 0, 14, e.loc)

	series, err := e.dailySeries(ctx, all, "")
	if err != nil {
		return WeeklySubmissions{}, err
	}
	previous, current := series[:7], series[7:]

	var cmp Comparison
	for _, d := range current {
		cmp.CurrentWeekTotal += d.Count
	}
	for _, d := range previous {
		cmp.PreviousWeekTotal += d.Count
	}
	cmp.PercentageChange = stats.PercentChange(cmp.CurrentWeekTotal, cmp.PreviousWeekTotal)

	return WeeklySubmissions{CurrentWeek: current, Comparison: cmp}, nil
}

// NewAccountsSince counts accounts created in [cutoff, now), lists the most
// recent of them and breaks the count down by calendar date. All three use
// the same window, so the breakdown sums to the count.
func (e *Engine) NewAccountsSince(ctx context.Context, cutoff time.Time) (NewAccounts, error) {
	var (
		out   NewAccounts
		daily map[string]int64
	)
	users := e.db.Collection("users")
	w := window.Window{Start: cutoff, End: e.now()}
	scope := reportqueries.In(w)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := metricsstore.CountAccountsBetween(gctx, e.db, w.Start, w.End)
		out.Count = n
		return err
	})
	g.Go(func() error {
		recent, err := metricsstore.RecentAccounts(gctx, e.db, w.Start, w.End, e.recent)
		out.RecentUsers = recent
		return err
	})
	g.Go(func() error {
		m, err := reportqueries.DailyCounts(gctx, users, scope, e.loc)
		daily = m
		return err
	})
	if err := g.Wait(); err != nil {
		return NewAccounts{}, err
	}

	out.DailyBreakdown = make([]DateCount, 0, len(daily))
	for date, n := range daily {
		out.DailyBreakdown = append(out.DailyBreakdown, DateCount{Date: date, Count: n})
	}
	sort.Slice(out.DailyBreakdown, func(i, j int) bool {
		return out.DailyBreakdown[i].Date < out.DailyBreakdown[j].Date
	})
	return out, nil
}

// Dashboard builds the dashboard summary over the last days days.
//
// User growth compares the current account total with the number of
// accounts created before the lookback began. That baseline is a cumulative
// count at a past instant, unlike the windowed week totals used by
// WeeklyComparison.
func (e *Engine) Dashboard(ctx context.Context, days int) (*DashboardSummary, error) {
	if days < 1 || days > MaxLookbackDays {
		return nil, ErrInvalidDays
	}
	lookback := window.Lookback(e.now(), days)
	scope := reportqueries.In(lookback)

	var (
		out      DashboardSummary
		accounts metricsstore.AccountCounts
		baseline int64
		perType  [3]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := metricsstore.FetchAccountCounts(gctx, e.db)
		accounts = c
		return err
	})
	for i, name := range submissionCollections {
		g.Go(func() error {
			n, err := reportqueries.Count(gctx, e.db.Collection(name), scope)
			perType[i] = n
			return err
		})
	}
	g.Go(func() error {
		w, err := e.WeeklyComparison(gctx)
		out.WeeklySubmissions = w
		return err
	})
	g.Go(func() error {
		na, err := e.NewAccountsSince(gctx, lookback.Start)
		out.NewUsers = na
		return err
	})
	g.Go(func() error {
		n, err := metricsstore.CountAccountsCreatedBefore(gctx, e.db, lookback.Start)
		baseline = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.CrisisCalls, out.MobileCrisis, out.CrisisStabilization = perType[0], perType[1], perType[2]
	out.TotalFormSubmitted = perType[0] + perType[1] + perType[2]
	out.TotalUsers = accounts.Total
	out.ActiveUsers = accounts.Active
	out.InactiveUsers = accounts.Inactive
	out.UserGrowth = stats.PercentChange(accounts.Total, baseline)
	return &out, nil
}
