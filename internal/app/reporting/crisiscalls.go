package reporting

import (
	"context"

	"github.com/crisisline/crisishub/internal/app/reporting/stats"
	"github.com/crisisline/crisishub/internal/app/reporting/window"
	"github.com/crisisline/crisishub/internal/app/store/queries/reportqueries"
	"github.com/crisisline/crisishub/internal/domain/models"
)

// CrisisCallReport is the monthly crisis call summary.
type CrisisCallReport struct {
	Month             string              `json:"month"`
	Period            Period              `json:"period"`
	TotalRecords      int64               `json:"totalRecords"`
	CallsByCounty     []Item              `json:"callsByCounty"`
	CallsByCrisisType []Item              `json:"callsByCrisisType"`
	BreakdownTotals   CrisisCallTotals    `json:"breakdownTotals"`
	CrossTabulations  CrisisCallCrossTabs `json:"crossTabulations"`
}

// CrisisCallTotals holds the sum of group counts of each breakdown.
type CrisisCallTotals struct {
	County     int64 `json:"county"`
	CrisisType int64 `json:"crisisType"`
}

type CrisisCallCrossTabs struct {
	CountyByCrisisType []CrossItem `json:"countyByCrisisType"`
}

// CrisisCalls builds the crisis call report for one calendar month.
func (e *Engine) CrisisCalls(ctx context.Context, year, month int) (*CrisisCallReport, error) {
	w, err := window.Month(year, month, e.loc)
	if err != nil {
		return nil, err
	}

	var (
		total              int64
		byCounty, byCrisis []stats.Group
		countyByCrisis     []stats.Cell
	)
	b := newBattery(ctx, e.db.Collection(models.CollCrisisCalls), reportqueries.In(w))
	b.count(&total)
	b.groups(&byCounty, "callByCountry")
	b.groups(&byCrisis, "crisisType")
	b.cross(&countyByCrisis, "callByCountry", "crisisType")
	if err := b.wait(); err != nil {
		return nil, err
	}

	return &CrisisCallReport{
		Month:             window.MonthLabel(year, month),
		Period:            periodOf(w),
		TotalRecords:      total,
		CallsByCounty:     items("county", byCounty, total),
		CallsByCrisisType: items("crisisType", byCrisis, total),
		BreakdownTotals: CrisisCallTotals{
			County:     stats.Total(byCounty),
			CrisisType: stats.Total(byCrisis),
		},
		CrossTabulations: CrisisCallCrossTabs{
			CountyByCrisisType: crossItems("county", "crisisType", countyByCrisis),
		},
	}, nil
}
