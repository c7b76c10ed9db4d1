package reporting

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/crisisline/crisishub/internal/app/reporting/stats"
	"github.com/crisisline/crisishub/internal/app/reporting/window"
	"github.com/crisisline/crisishub/internal/app/store/queries/reportqueries"
)

// Item is one row of a breakdown. It renders as
// {"<key>": value, "count": n, "percentage": p}; a missing value renders
// as null.
type Item struct {
	Key        string
	Value      *string
	Count      int64
	Percentage float64
}

func (i Item) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeField(&buf, i.Key, i.Value, false); err != nil {
		return nil, err
	}
	if err := writeField(&buf, "count", i.Count, true); err != nil {
		return nil, err
	}
	if err := writeField(&buf, "percentage", i.Percentage, true); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Breakdown is a grouped count with its own total. Total is the sum of the
// group counts and may be less than the report's totalRecords.
type Breakdown struct {
	Total int64  `json:"total"`
	Items []Item `json:"breakdown"`
}

// items converts groups to rows keyed by key, using totalRecords as the
// percentage denominator.
func items(key string, groups []stats.Group, totalRecords int64) []Item {
	out := make([]Item, 0, len(groups))
	for _, g := range groups {
		out = append(out, Item{
			Key:        key,
			Value:      g.Value,
			Count:      g.Count,
			Percentage: stats.Percentage(g.Count, totalRecords),
		})
	}
	return out
}

func breakdown(key string, groups []stats.Group, totalRecords int64) Breakdown {
	return Breakdown{Total: stats.Total(groups), Items: items(key, groups, totalRecords)}
}

// CrossItem is one cell of a cross tabulation. It renders as
// {"<keyA>": a, "<keyB>": b, "count": n}.
type CrossItem struct {
	KeyA  string
	KeyB  string
	A     *string
	B     *string
	Count int64
}

func (c CrossItem) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeField(&buf, c.KeyA, c.A, false); err != nil {
		return nil, err
	}
	if err := writeField(&buf, c.KeyB, c.B, true); err != nil {
		return nil, err
	}
	if err := writeField(&buf, "count", c.Count, true); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func crossItems(keyA, keyB string, cells []stats.Cell) []CrossItem {
	out := make([]CrossItem, 0, len(cells))
	for _, c := range cells {
		out = append(out, CrossItem{KeyA: keyA, KeyB: keyB, A: c.A, B: c.B, Count: c.Count})
	}
	return out
}

func writeField(buf *bytes.Buffer, key string, v any, comma bool) error {
	if comma {
		buf.WriteByte(',')
	}
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(val)
	return nil
}

// Period is the reported window in UTC.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func periodOf(w window.Window) Period {
	return Period{Start: w.Start.UTC(), End: w.End.UTC()}
}

// Duration summarises a summed duration field in minutes.
type Duration struct {
	TotalMinutes float64 `json:"totalMinutes"`
	TotalHours   float64 `json:"totalHours"`
	RecordsCount int64   `json:"recordsCount"`
}

func durationOf(n reportqueries.Numeric) Duration {
	return Duration{
		TotalMinutes: n.Sum,
		TotalHours:   stats.MinutesToHours(n.Sum),
		RecordsCount: n.Count,
	}
}

// MeanDuration is the average of a per-record mean duration field.
// Minutes are rounded to the nearest whole minute.
type MeanDuration struct {
	Minutes float64 `json:"minutes"`
	Hours   float64 `json:"hours"`
}

func meanOf(n reportqueries.Numeric) MeanDuration {
	return MeanDuration{
		Minutes: roundWhole(n.Avg),
		Hours:   stats.MinutesToHours(n.Avg),
	}
}

// Tally is a summed count field with its per-record average.
type Tally struct {
	Total            float64 `json:"total"`
	AveragePerRecord float64 `json:"averagePerRecord"`
}

func tallyOf(n reportqueries.Numeric, totalRecords int64) Tally {
	return Tally{Total: n.Sum, AveragePerRecord: stats.PerRecord(n.Sum, totalRecords)}
}
