package reporting

import (
	"context"
	"time"

	"github.com/crisisline/crisishub/internal/app/reporting/stats"
	"github.com/crisisline/crisishub/internal/app/reporting/window"
	metricsstore "github.com/crisisline/crisishub/internal/app/store/metrics"
	"golang.org/x/sync/errgroup"
)

// AccountCounts is the headline of the user management dashboard.
type AccountCounts struct {
	TotalUsers       int64 `json:"totalUsers"`
	ActiveUsers      int64 `json:"activeUsers"`
	InactiveUsers    int64 `json:"inactiveUsers"`
	NewUsers         int64 `json:"newUsers"` // last 30 days
	NewUsersToday    int64 `json:"newUsersToday"`
	NewUsersThisWeek int64 `json:"newUsersThisWeek"`
}

type AccountShares struct {
	ActivePercentage   float64 `json:"activePercentage"`
	InactivePercentage float64 `json:"inactivePercentage"`
}

// AccountStats is the user management dashboard.
type AccountStats struct {
	Stats       AccountCounts `json:"stats"`
	Percentages AccountShares `json:"percentages"`
}

// AccountStats counts accounts by status and by recency. "Today" starts at
// midnight in the report location; the week and month are rolling 7 and
// 30 days.
func (e *Engine) AccountStats(ctx context.Context) (*AccountStats, error) {
	now := e.now()
	today := window.Days(now, 1, e.loc)[0].Start

	var (
		out    AccountStats
		counts metricsstore.AccountCounts
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := metricsstore.FetchAccountCounts(gctx, e.db)
		counts = c
		return err
	})
	since := []struct {
		dst   *int64
		start time.Time
	}{
		{&out.Stats.NewUsers, window.Lookback(now, 30).Start},
		{&out.Stats.NewUsersThisWeek, window.Lookback(now, 7).Start},
		{&out.Stats.NewUsersToday, today},
	}
	for _, s := range since {
		g.Go(func() error {
			n, err := metricsstore.CountAccountsBetween(gctx, e.db, s.start, now)
			*s.dst = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Stats.TotalUsers = counts.Total
	out.Stats.ActiveUsers = counts.Active
	out.Stats.InactiveUsers = counts.Inactive
	out.Percentages = AccountShares{
		ActivePercentage:   stats.Percentage(counts.Active, counts.Total),
		InactivePercentage: stats.Percentage(counts.Inactive, counts.Total),
	}
	return &out, nil
}
