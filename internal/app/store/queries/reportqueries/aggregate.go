// Package reportqueries provides the read-only aggregation primitives that
// every report is assembled from.
//
// Each primitive filters one collection by a Scope (a createdAt window and
// an optional owner) and returns plain Go values. Pipelines only match,
// group and accumulate; ordering and limits are applied in Go through the
// stats package so tie-breaks never depend on the server.
package reportqueries

import (
	"context"
	"time"

	"github.com/crisisline/crisishub/internal/app/reporting/stats"
	"github.com/crisisline/crisishub/internal/app/reporting/window"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Scope selects the records an aggregation runs over.
type Scope struct {
	Window window.Window
	// OwnerID restricts the scope to one account's submissions when set.
	OwnerID string
}

// In returns a Scope over w for all owners.
func In(w window.Window) Scope { return Scope{Window: w} }

// Owned returns a copy of s restricted to ownerID.
func (s Scope) Owned(ownerID string) Scope {
	s.OwnerID = ownerID
	return s
}

// Match returns the $match document for s.
func (s Scope) Match() bson.M {
	m := bson.M{"createdAt": bson.M{"$gte": s.Window.Start, "$lt": s.Window.End}}
	if s.OwnerID != "" {
		m["userId"] = s.OwnerID
	}
	return m
}

// Count returns the number of records in scope.
func Count(ctx context.Context, coll *mongo.Collection, s Scope) (int64, error) {
	return coll.CountDocuments(ctx, s.Match())
}

// GroupCount groups the records in scope by field and counts each group.
// Records missing the field fall in the nil group. Results are ordered by
// count descending, then value ascending with nil first.
func GroupCount(ctx context.Context, coll *mongo.Collection, s Scope, field string) ([]stats.Group, error) {
	return groupCount(ctx, coll, s.Match(), field)
}

// GroupCountPresent is GroupCount without the nil group: only records that
// carry a non-null value for field are counted.
func GroupCountPresent(ctx context.Context, coll *mongo.Collection, s Scope, field string) ([]stats.Group, error) {
	match := s.Match()
	match[field] = bson.M{"$exists": true, "$ne": nil}
	return groupCount(ctx, coll, match, field)
}

func groupCount(ctx context.Context, coll *mongo.Collection, match bson.M, field string) ([]stats.Group, error) {
	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
	}

	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []stats.Group{}
	for cur.Next(ctx) {
		var row struct {
			Value *string `bson:"_id"`
			Count int64   `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, stats.Group{Value: row.Value, Count: row.Count})
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	stats.SortGroups(out)
	return out, nil
}

// Numeric holds the single-group accumulators over one numeric field.
// Every value is 0 when no record matches.
type Numeric struct {
	Sum   float64
	Avg   float64
	Min   float64
	Max   float64
	Count int64
}

// NumericStats computes sum, average, minimum and maximum of field over the
// records in scope. Count is the number of records in scope.
func NumericStats(ctx context.Context, coll *mongo.Collection, s Scope, field string) (Numeric, error) {
	ref := "$" + field
	pipeline := []bson.M{
		{"$match": s.Match()},
		{"$group": bson.M{
			"_id":   nil,
			"sum":   bson.M{"$sum": ref},
			"avg":   bson.M{"$avg": ref},
			"min":   bson.M{"$min": ref},
			"max":   bson.M{"$max": ref},
			"count": bson.M{"$sum": 1},
		}},
	}

	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return Numeric{}, err
	}
	defer cur.Close(ctx)

	var out Numeric
	if cur.Next(ctx) {
		var row struct {
			Sum   *float64 `bson:"sum"`
			Avg   *float64 `bson:"avg"`
			Min   *float64 `bson:"min"`
			Max   *float64 `bson:"max"`
			Count int64    `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return Numeric{}, err
		}
		out = Numeric{
			Sum:   deref(row.Sum),
			Avg:   deref(row.Avg),
			Min:   deref(row.Min),
			Max:   deref(row.Max),
			Count: row.Count,
		}
	}
	return out, cur.Err()
}

// CrossTab counts the records in scope for every (fieldA, fieldB) pair,
// ordered by fieldA ascending, count descending, then fieldB ascending.
func CrossTab(ctx context.Context, coll *mongo.Collection, s Scope, fieldA, fieldB string) ([]stats.Cell, error) {
	pipeline := []bson.M{
		{"$match": s.Match()},
		{"$group": bson.M{
			"_id":   bson.M{"a": "$" + fieldA, "b": "$" + fieldB},
			"count": bson.M{"$sum": 1},
		}},
	}

	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []stats.Cell{}
	for cur.Next(ctx) {
		var row struct {
			ID struct {
				A *string `bson:"a"`
				B *string `bson:"b"`
			} `bson:"_id"`
			Count int64 `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, stats.Cell{A: row.ID.A, B: row.ID.B, Count: row.Count})
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	stats.SortCells(out)
	return out, nil
}

// GroupTotal is one group of GroupSum.
type GroupTotal struct {
	Value   *string
	Total   float64
	Records int64
}

// GroupSum groups the records in scope that carry groupField and sums
// sumField within each group. Results are ordered by total descending, then
// value ascending.
func GroupSum(ctx context.Context, coll *mongo.Collection, s Scope, groupField, sumField string) ([]GroupTotal, error) {
	match := s.Match()
	match[groupField] = bson.M{"$exists": true, "$ne": nil}
	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{
			"_id":     "$" + groupField,
			"total":   bson.M{"$sum": "$" + sumField},
			"records": bson.M{"$sum": 1},
		}},
	}

	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []GroupTotal{}
	for cur.Next(ctx) {
		var row struct {
			Value   *string  `bson:"_id"`
			Total   *float64 `bson:"total"`
			Records int64    `bson:"records"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, GroupTotal{Value: row.Value, Total: deref(row.Total), Records: row.Records})
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	sortGroupTotals(out)
	return out, nil
}

// DailyCounts counts the records in scope per calendar day in loc, keyed by
// YYYY-MM-DD. Days without records are absent from the map.
func DailyCounts(ctx context.Context, coll *mongo.Collection, s Scope, loc *time.Location) (map[string]int64, error) {
	if loc == nil {
		loc = time.UTC
	}
	pipeline := []bson.M{
		{"$match": s.Match()},
		{"$group": bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format":   "%Y-%m-%d",
				"date":     "$createdAt",
				"timezone": loc.String(),
			}},
			"count": bson.M{"$sum": 1},
		}},
	}

	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			Day   string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.Day] = row.Count
	}
	return out, cur.Err()
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Latest returns the creation time of ownerID's newest record in coll, or
// mongo.ErrNoDocuments when the owner has none.
func Latest(ctx context.Context, coll *mongo.Collection, ownerID string) (time.Time, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"createdAt": 1})

	var row struct {
		CreatedAt time.Time `bson:"createdAt"`
	}
	if err := coll.FindOne(ctx, bson.M{"userId": ownerID}, opts).Decode(&row); err != nil {
		return time.Time{}, err
	}
	return row.CreatedAt, nil
}

// CountOwned returns the number of records in coll owned by ownerID, across
// all time.
func CountOwned(ctx context.Context, coll *mongo.Collection, ownerID string) (int64, error) {
	return coll.CountDocuments(ctx, bson.M{"userId": ownerID})
}
