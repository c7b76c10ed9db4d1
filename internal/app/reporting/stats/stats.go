// Package stats holds the arithmetic shared by every report: percentages,
// unit conversion, rounding, and the deterministic ordering of grouped
// results.
package stats

import (
	"math"
	"sort"
)

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Percentage returns count as a percentage of total with two decimals.
// It is 0 whenever total is 0. The value is scaled by 10000 before rounding
// so float drift never changes the second decimal.
func Percentage(count, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*10000) / 100
}

// MinutesToHours converts minutes to hours rounded to two decimals.
func MinutesToHours(minutes float64) float64 {
	if minutes == 0 {
		return 0
	}
	return Round2(minutes / 60)
}

// PerRecord divides a total by a record count, rounded to two decimals,
// returning 0 when there are no records.
func PerRecord(total float64, records int64) float64 {
	if records <= 0 {
		return 0
	}
	return Round2(total / float64(records))
}

// PercentChange returns ((current - previous) / previous) * 100 rounded to
// two decimals, or 0 when previous is 0.
func PercentChange(current, previous int64) float64 {
	if previous <= 0 {
		return 0
	}
	return Round2(float64(current-previous) / float64(previous) * 100)
}

// Group is one bucket of a grouped count. A nil Value is the bucket for
// records where the field is missing.
type Group struct {
	Value *string
	Count int64
}

// Total sums the counts of all groups.
func Total(groups []Group) int64 {
	var n int64
	for _, g := range groups {
		n += g.Count
	}
	return n
}

// lessValue orders group values ascending with the missing bucket first.
func lessValue(a, b *string) bool {
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	default:
		return *a < *b
	}
}

// SortGroups orders groups by count descending, then by value ascending
// with the missing bucket first.
func SortGroups(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return lessValue(groups[i].Value, groups[j].Value)
	})
}

// Cell is one bucket of a two-field cross tabulation.
type Cell struct {
	A     *string
	B     *string
	Count int64
}

// SortCells orders cells by A ascending, count descending within each A,
// then B ascending.
func SortCells(cells []Cell) {
	sort.SliceStable(cells, func(i, j int) bool {
		ci, cj := cells[i], cells[j]
		if !sameValue(ci.A, cj.A) {
			return lessValue(ci.A, cj.A)
		}
		if ci.Count != cj.Count {
			return ci.Count > cj.Count
		}
		return lessValue(ci.B, cj.B)
	})
}

func sameValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
