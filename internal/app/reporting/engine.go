// Package reporting assembles the per-type monthly reports, the dashboard
// summary and the per-account summary from the aggregation primitives in
// reportqueries.
//
// Every sub-query of a report is independent, so a report fans them out
// concurrently and joins before composing the response. The first failure
// cancels the rest and fails the whole report; there are no partial reports.
package reporting

import (
	"context"
	"math"
	"time"

	"github.com/crisisline/crisishub/internal/app/reporting/stats"
	"github.com/crisisline/crisishub/internal/app/store/queries/reportqueries"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// DefaultRecentLimit bounds the recent-accounts sample on the dashboard.
const DefaultRecentLimit = 10

// Options configures an Engine.
type Options struct {
	// Location is the time zone for calendar months and days. Defaults to UTC.
	Location *time.Location
	// RecentLimit bounds the dashboard's recent-accounts list.
	RecentLimit int64
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Engine computes reports against one database.
type Engine struct {
	db     *mongo.Database
	loc    *time.Location
	recent int64
	now    func() time.Time
}

// NewEngine returns an Engine reading from db.
func NewEngine(db *mongo.Database, opts Options) *Engine {
	e := &Engine{
		db:     db,
		loc:    opts.Location,
		recent: opts.RecentLimit,
		now:    opts.Now,
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.recent <= 0 {
		e.recent = DefaultRecentLimit
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Location returns the engine's reporting time zone.
func (e *Engine) Location() *time.Location { return e.loc }

// battery fans out aggregation calls over one collection and scope. Each
// call writes to its own destination, so no locking is needed; results are
// only read after wait returns nil.
type battery struct {
	g     *errgroup.Group
	ctx   context.Context
	coll  *mongo.Collection
	scope reportqueries.Scope
}

func newBattery(ctx context.Context, coll *mongo.Collection, scope reportqueries.Scope) *battery {
	g, gctx := errgroup.WithContext(ctx)
	return &battery{g: g, ctx: gctx, coll: coll, scope: scope}
}

func (b *battery) count(dst *int64) {
	b.g.Go(func() error {
		n, err := reportqueries.Count(b.ctx, b.coll, b.scope)
		*dst = n
		return err
	})
}

func (b *battery) groups(dst *[]stats.Group, field string) {
	b.g.Go(func() error {
		gs, err := reportqueries.GroupCount(b.ctx, b.coll, b.scope, field)
		*dst = gs
		return err
	})
}

func (b *battery) present(dst *[]stats.Group, field string) {
	b.g.Go(func() error {
		gs, err := reportqueries.GroupCountPresent(b.ctx, b.coll, b.scope, field)
		*dst = gs
		return err
	})
}

func (b *battery) numeric(dst *reportqueries.Numeric, field string) {
	b.g.Go(func() error {
		n, err := reportqueries.NumericStats(b.ctx, b.coll, b.scope, field)
		*dst = n
		return err
	})
}

func (b *battery) cross(dst *[]stats.Cell, fieldA, fieldB string) {
	b.g.Go(func() error {
		cs, err := reportqueries.CrossTab(b.ctx, b.coll, b.scope, fieldA, fieldB)
		*dst = cs
		return err
	})
}

func (b *battery) groupSum(dst *[]reportqueries.GroupTotal, groupField, sumField string) {
	b.g.Go(func() error {
		gs, err := reportqueries.GroupSum(b.ctx, b.coll, b.scope, groupField, sumField)
		*dst = gs
		return err
	})
}

func (b *battery) wait() error { return b.g.Wait() }

func roundWhole(v float64) float64 { return math.Round(v) }
