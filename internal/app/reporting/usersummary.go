package reporting

import (
	"context"
	"time"

	"github.com/crisisline/crisishub/internal/app/reporting/window"
	"github.com/crisisline/crisishub/internal/app/store/queries/reportqueries"
	"golang.org/x/sync/errgroup"
)

// FormBreakdown is an account's all-time submission count per type.
type FormBreakdown struct {
	CrisisCalls         int64 `json:"crisisCalls"`
	MobileCrisis        int64 `json:"mobileCrisis"`
	CrisisStabilization int64 `json:"crisisStabilization"`
}

// DayTotal is one calendar day of an account's submissions.
type DayTotal struct {
	Day   string `json:"day"`
	Date  string `json:"date"`
	Total int64  `json:"total"`
}

// UserSummary is one account's own submission activity.
type UserSummary struct {
	UserID              string        `json:"userId"`
	TotalFormsSubmitted int64         `json:"totalFormsSubmitted"`
	LastSubmittedAt     *time.Time    `json:"lastSubmittedAt"`
	FormBreakdown       FormBreakdown `json:"formBreakdown"`
	WeeklyInsights      []DayTotal    `json:"weeklyInsights"`
}

// UserSummary builds the summary of userID's submissions.
func (e *Engine) UserSummary(ctx context.Context, userID string) (*UserSummary, error) {
	var (
		counts [3]int64
		series []DayCounts
		last   *time.Time
	)
	days := window.Days(e.now(), 7, e.loc)

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range submissionCollections {
		g.Go(func() error {
			n, err := reportqueries.CountOwned(gctx, e.db.Collection(name), userID)
			counts[i] = n
			return err
		})
	}
	g.Go(func() error {
		s, err := e.dailySeries(gctx, days, userID)
		series = s
		return err
	})
	g.Go(func() error {
		last = e.LatestSubmission(gctx, userID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	weekly := make([]DayTotal, len(series))
	for i, d := range series {
		weekly[i] = DayTotal{Day: d.Day, Date: d.Date, Total: d.Count}
	}

	return &UserSummary{
		UserID:              userID,
		TotalFormsSubmitted: counts[0] + counts[1] + counts[2],
		LastSubmittedAt:     last,
		FormBreakdown: FormBreakdown{
			CrisisCalls:         counts[0],
			MobileCrisis:        counts[1],
			CrisisStabilization: counts[2],
		},
		WeeklyInsights: weekly,
	}, nil
}

// LatestSubmission races the three per-type "newest record" lookups for
// userID and returns the creation time from whichever finds a record first.
// A lookup that finds nothing or fails does not win. It returns nil when no
// lookup succeeds.
func (e *Engine) LatestSubmission(ctx context.Context, userID string) *time.Time {
	lookups := make([]func(context.Context) (time.Time, error), 0, len(submissionCollections))
	for _, name := range submissionCollections {
		coll := e.db.Collection(name)
		lookups = append(lookups, func(ctx context.Context) (time.Time, error) {
			return reportqueries.Latest(ctx, coll, userID)
		})
	}

	t, ok := firstSuccess(ctx, lookups...)
	if !ok {
		return nil
	}
	return &t
}

// firstSuccess runs every lookup concurrently and returns the first value
// produced without error. Once a winner is found the others are cancelled
// and their results discarded. ok is false when every lookup fails.
func firstSuccess[T any](ctx context.Context, lookups ...func(context.Context) (T, error)) (T, bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	// Buffered so losers never block after the winner returns.
	results := make(chan result, len(lookups))
	for _, fn := range lookups {
		go func() {
			v, err := fn(ctx)
			results <- result{v: v, err: err}
		}()
	}

	for range lookups {
		if r := <-results; r.err == nil {
			return r.v, true
		}
	}
	var zero T
	return zero, false
}
