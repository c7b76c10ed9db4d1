package reportqueries

import "sort"

func sortGroupTotals(gs []GroupTotal) {
	sort.SliceStable(gs, func(i, j int) bool {
		if gs[i].Total != gs[j].Total {
			return gs[i].Total > gs[j].Total
		}
		a, b := gs[i].Value, gs[j].Value
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return *a < *b
		}
	})
}
