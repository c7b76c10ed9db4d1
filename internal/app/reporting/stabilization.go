package reporting

import (
	"context"

	"github.com/crisisline/crisishub/internal/app/reporting/stats"
	"github.com/crisisline/crisishub/internal/app/reporting/window"
	"github.com/crisisline/crisishub/internal/app/store/queries/reportqueries"
	"github.com/crisisline/crisishub/internal/domain/models"
)

// TopCountiesLimit bounds the county-of-residence breakdown.
const TopCountiesLimit = 10

// StabilizationReport is the monthly crisis stabilization unit summary.
type StabilizationReport struct {
	Summary                        StabilizationSummary   `json:"summary"`
	ReferralsToCrisisStabilization Breakdown              `json:"referralsToCrisisStabilization"`
	CrisisTypes                    Breakdown              `json:"crisisTypes"`
	Outcomes                       Breakdown              `json:"outcomes"`
	StabilizationTime              StabilizationTime      `json:"stabilizationTime"`
	MeanStabilizationTime          MeanDuration           `json:"meanStabilizationTime"`
	Referrals                      StabilizationReferrals `json:"referrals"`
	NaloxoneDispensations          Tally                  `json:"naloxoneDispensations"`
	FollowUpContacts               Tally                  `json:"followUpContacts"`
	ClientDemographics             ClientDemographics     `json:"clientDemographics"`
	CrossTabulations               StabilizationCrossTabs `json:"crossTabulations"`
}

type StabilizationSummary struct {
	Month                  string  `json:"month"`
	Period                 Period  `json:"period"`
	TotalRecords           int64   `json:"totalRecords"`
	TotalIndividualsServed float64 `json:"totalIndividualsServed"`
	TotalVisits            float64 `json:"totalVisits"`
	AverageVisitsPerRecord float64 `json:"averageVisitsPerRecord"`
}

// StabilizationTime summarises total stabilization time per record.
type StabilizationTime struct {
	TotalMinutes   float64 `json:"totalMinutes"`
	TotalHours     float64 `json:"totalHours"`
	AverageMinutes float64 `json:"averageMinutes"`
	AverageHours   float64 `json:"averageHours"`
	MinMinutes     float64 `json:"minMinutes"`
	MaxMinutes     float64 `json:"maxMinutes"`
	RecordsCount   int64   `json:"recordsCount"`
}

type StabilizationReferrals struct {
	TotalGiven       float64        `json:"totalGiven"`
	AveragePerRecord float64        `json:"averagePerRecord"`
	ByType           []ReferralType `json:"byType"`
}

// ReferralType is the referrals-given total of the records carrying one
// referral type. Percentage is the share of all records in the month.
type ReferralType struct {
	Type             *string `json:"type"`
	TotalReferrals   float64 `json:"totalReferrals"`
	RecordCount      int64   `json:"recordCount"`
	AveragePerRecord float64 `json:"averagePerRecord"`
	Percentage       float64 `json:"percentage"`
}

// TopCounties is the county breakdown truncated to TopCountiesLimit. Total
// counts every record with a county, including those outside the top list.
type TopCounties struct {
	Total       int64  `json:"total"`
	TopCounties []Item `json:"topCounties"`
}

type ClientDemographics struct {
	CountyOfResidence TopCounties `json:"countyOfResidence"`
	PrimaryInsurance  Breakdown   `json:"primaryInsurance"`
	AgeGroups         Breakdown   `json:"ageGroups"`
	VeteranStatus     Breakdown   `json:"veteranStatus"`
	ServingInMilitary Breakdown   `json:"servingInMilitary"`
}

type StabilizationCrossTabs struct {
	CrisisTypeByOutcome        []CrossItem `json:"crisisTypeByOutcome"`
	ReferralSourceByCrisisType []CrossItem `json:"referralSourceByCrisisType"`
}

// Stabilization builds the crisis stabilization report for one calendar
// month.
func (e *Engine) Stabilization(ctx context.Context, year, month int) (*StabilizationReport, error) {
	w, err := window.Month(year, month, e.loc)
	if err != nil {
		return nil, err
	}

	var (
		total                                    int64
		bySource, byCrisis, byOutcome            []stats.Group
		byCounty, byInsurance, byAge             []stats.Group
		byVeteran, byMilitary                    []stats.Group
		visits, individuals, totalTime, meanTime reportqueries.Numeric
		referrals, naloxone, followUps           reportqueries.Numeric
		byReferralType                           []reportqueries.GroupTotal
		crisisByOutcome, sourceByCrisis          []stats.Cell
	)

	b := newBattery(ctx, e.db.Collection(models.CollStabilizations), reportqueries.In(w))
	b.count(&total)
	b.numeric(&individuals, "individualsServed")
	b.numeric(&visits, "numberOfVisits")
	b.groups(&bySource, "referralsToCrisisStabilization")
	b.groups(&byCrisis, "crisisTypes")
	b.groups(&byOutcome, "outcome")
	b.numeric(&totalTime, "totalStabilizationTime")
	b.numeric(&meanTime, "meanStabilizationTime")
	b.numeric(&referrals, "referralsGiven")
	b.groupSum(&byReferralType, "referralsByType", "referralsGiven")
	b.numeric(&naloxone, "naloxoneDispensations")
	b.numeric(&followUps, "followUpContacts")
	b.groups(&byCounty, "clientCountyOfResidence")
	b.groups(&byInsurance, "clientPrimaryInsurance")
	b.groups(&byAge, "clientAgeGroups")
	b.groups(&byVeteran, "clientVeteranStatus")
	b.groups(&byMilitary, "clientServingInMilitary")
	b.cross(&crisisByOutcome, "crisisTypes", "outcome")
	b.cross(&sourceByCrisis, "referralsToCrisisStabilization", "crisisTypes")
	if err := b.wait(); err != nil {
		return nil, err
	}

	top := byCounty
	if len(top) > TopCountiesLimit {
		top = top[:TopCountiesLimit]
	}

	return &StabilizationReport{
		Summary: StabilizationSummary{
			Month:                  window.MonthLabel(year, month),
			Period:                 periodOf(w),
			TotalRecords:           total,
			TotalIndividualsServed: individuals.Sum,
			TotalVisits:            visits.Sum,
			AverageVisitsPerRecord: stats.PerRecord(visits.Sum, total),
		},
		ReferralsToCrisisStabilization: breakdown("source", bySource, total),
		CrisisTypes:                    breakdown("type", byCrisis, total),
		Outcomes:                       breakdown("outcome", byOutcome, total),
		StabilizationTime: StabilizationTime{
			TotalMinutes:   totalTime.Sum,
			TotalHours:     stats.MinutesToHours(totalTime.Sum),
			AverageMinutes: roundWhole(totalTime.Avg),
			AverageHours:   stats.MinutesToHours(totalTime.Avg),
			MinMinutes:     totalTime.Min,
			MaxMinutes:     totalTime.Max,
			RecordsCount:   totalTime.Count,
		},
		MeanStabilizationTime: meanOf(meanTime),
		Referrals: StabilizationReferrals{
			TotalGiven:       referrals.Sum,
			AveragePerRecord: stats.PerRecord(referrals.Sum, total),
			ByType:           referralTypes(byReferralType, total),
		},
		NaloxoneDispensations: tallyOf(naloxone, total),
		FollowUpContacts:      tallyOf(followUps, total),
		ClientDemographics: ClientDemographics{
			CountyOfResidence: TopCounties{
				Total:       stats.Total(byCounty),
				TopCounties: items("county", top, total),
			},
			PrimaryInsurance:  breakdown("insurance", byInsurance, total),
			AgeGroups:         breakdown("ageGroup", byAge, total),
			VeteranStatus:     breakdown("status", byVeteran, total),
			ServingInMilitary: breakdown("status", byMilitary, total),
		},
		CrossTabulations: StabilizationCrossTabs{
			CrisisTypeByOutcome:        crossItems("crisisType", "outcome", crisisByOutcome),
			ReferralSourceByCrisisType: crossItems("referralSource", "crisisType", sourceByCrisis),
		},
	}, nil
}

func referralTypes(groups []reportqueries.GroupTotal, totalRecords int64) []ReferralType {
	out := make([]ReferralType, 0, len(groups))
	for _, g := range groups {
		out = append(out, ReferralType{
			Type:             g.Value,
			TotalReferrals:   g.Total,
			RecordCount:      g.Records,
			AveragePerRecord: stats.PerRecord(g.Total, g.Records),
			Percentage:       stats.Percentage(g.Records, totalRecords),
		})
	}
	return out
}
