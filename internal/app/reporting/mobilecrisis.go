package reporting

import (
	"context"

	"github.com/crisisline/crisishub/internal/app/reporting/stats"
	"github.com/crisisline/crisishub/internal/app/reporting/window"
	"github.com/crisisline/crisishub/internal/app/store/queries/reportqueries"
	"github.com/crisisline/crisishub/internal/domain/models"
)

// MobileCrisisReport is the monthly mobile crisis team summary.
type MobileCrisisReport struct {
	Summary                 MobileCrisisSummary   `json:"summary"`
	ReferralsToMobileCrisis Breakdown             `json:"referralsToMobileCrisis"`
	DispatchesByCounty      Breakdown             `json:"dispatchesByCounty"`
	DispatchesByCrisisType  Breakdown             `json:"dispatchesByCrisisType"`
	Outcomes                Breakdown             `json:"outcomes"`
	ResponseTime            Duration              `json:"responseTime"`
	MeanResponseTime        MeanDuration          `json:"meanResponseTime"`
	OnSceneTime             Duration              `json:"onSceneTime"`
	MeanOnSceneTime         MeanDuration          `json:"meanOnSceneTime"`
	Referrals               Referrals             `json:"referrals"`
	NaloxoneDispensations   Tally                 `json:"naloxoneDispensations"`
	FollowUpContacts        Tally                 `json:"followUpContacts"`
	IndividualsServed       Tally                 `json:"individualsServed"`
	Demographics            MobileDemographics    `json:"demographics"`
	CrossTabulations        MobileCrisisCrossTabs `json:"crossTabulations"`
}

type MobileCrisisSummary struct {
	Month                      string  `json:"month"`
	Period                     Period  `json:"period"`
	TotalRecords               int64   `json:"totalRecords"`
	TotalIndividualsServed     float64 `json:"totalIndividualsServed"`
	TotalDispatches            float64 `json:"totalDispatches"`
	AverageDispatchesPerRecord float64 `json:"averageDispatchesPerRecord"`
}

// Referrals reports referrals given and the records carrying a referral type.
type Referrals struct {
	TotalGiven       float64   `json:"totalGiven"`
	AveragePerRecord float64   `json:"averagePerRecord"`
	ByType           Breakdown `json:"byType"`
}

type MobileDemographics struct {
	PrimaryInsurance Breakdown `json:"primaryInsurance"`
	AgeGroups        Breakdown `json:"ageGroups"`
	VeteranStatus    Breakdown `json:"veteranStatus"`
	MilitaryService  Breakdown `json:"militaryService"`
}

type MobileCrisisCrossTabs struct {
	CrisisTypeByOutcome []CrossItem `json:"crisisTypeByOutcome"`
	CountyByCrisisType  []CrossItem `json:"countyByCrisisType"`
}

// MobileCrisis builds the mobile crisis report for one calendar month.
func (e *Engine) MobileCrisis(ctx context.Context, year, month int) (*MobileCrisisReport, error) {
	w, err := window.Month(year, month, e.loc)
	if err != nil {
		return nil, err
	}

	var (
		total                                     int64
		bySource, byCounty, byCrisis, byOutcome   []stats.Group
		byReferralType                            []stats.Group
		byInsurance, byAge, byVeteran, byMilitary []stats.Group
		dispatches, response, meanResponse        reportqueries.Numeric
		onScene, meanOnScene, referrals           reportqueries.Numeric
		naloxone, followUps, individuals          reportqueries.Numeric
		crisisByOutcome, countyByCrisis           []stats.Cell
	)

	b := newBattery(ctx, e.db.Collection(models.CollMobileCrises), reportqueries.In(w))
	b.count(&total)
	b.groups(&bySource, "referralSource")
	b.groups(&byCounty, "dispatchCounty")
	b.groups(&byCrisis, "crisisType")
	b.groups(&byOutcome, "outcome")
	b.present(&byReferralType, "referralType")
	b.groups(&byInsurance, "primaryInsurance")
	b.groups(&byAge, "ageGroup")
	b.groups(&byVeteran, "veteranStatus")
	b.groups(&byMilitary, "servingInMilitary")
	b.numeric(&dispatches, "totalDispatches")
	b.numeric(&response, "totalResponseTime")
	b.numeric(&meanResponse, "meanResponseTime")
	b.numeric(&onScene, "totalOnSceneTime")
	b.numeric(&meanOnScene, "meanOnSceneTime")
	b.numeric(&referrals, "referralsGiven")
	b.numeric(&naloxone, "naloxoneDispensations")
	b.numeric(&followUps, "followUpContacts")
	b.numeric(&individuals, "individualsServed")
	b.cross(&crisisByOutcome, "crisisType", "outcome")
	b.cross(&countyByCrisis, "dispatchCounty", "crisisType")
	if err := b.wait(); err != nil {
		return nil, err
	}

	return &MobileCrisisReport{
		Summary: MobileCrisisSummary{
			Month:                      window.MonthLabel(year, month),
			Period:                     periodOf(w),
			TotalRecords:               total,
			TotalIndividualsServed:     individuals.Sum,
			TotalDispatches:            dispatches.Sum,
			AverageDispatchesPerRecord: stats.PerRecord(dispatches.Sum, total),
		},
		ReferralsToMobileCrisis: breakdown("source", bySource, total),
		DispatchesByCounty:      breakdown("county", byCounty, total),
		DispatchesByCrisisType:  breakdown("crisisType", byCrisis, total),
		Outcomes:                breakdown("outcome", byOutcome, total),
		ResponseTime:            durationOf(response),
		MeanResponseTime:        meanOf(meanResponse),
		OnSceneTime:             durationOf(onScene),
		MeanOnSceneTime:         meanOf(meanOnScene),
		Referrals: Referrals{
			TotalGiven:       referrals.Sum,
			AveragePerRecord: stats.PerRecord(referrals.Sum, total),
			ByType:           breakdown("type", byReferralType, total),
		},
		NaloxoneDispensations: tallyOf(naloxone, total),
		FollowUpContacts:      tallyOf(followUps, total),
		IndividualsServed:     tallyOf(individuals, total),
		Demographics: MobileDemographics{
			PrimaryInsurance: breakdown("insurance", byInsurance, total),
			AgeGroups:        breakdown("ageGroup", byAge, total),
			VeteranStatus:    breakdown("status", byVeteran, total),
			MilitaryService:  breakdown("status", byMilitary, total),
		},
		CrossTabulations: MobileCrisisCrossTabs{
			CrisisTypeByOutcome: crossItems("crisisType", "outcome", crisisByOutcome),
			CountyByCrisisType:  crossItems("county", "crisisType", countyByCrisis),
		},
	}, nil
}
