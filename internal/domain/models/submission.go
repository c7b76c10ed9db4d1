// internal/domain/models/submission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names for the three submission types.
const (
	CollCrisisCalls    = "crisiscalls"
	CollMobileCrises   = "mobilecrises"
	CollStabilizations = "crisisstabilizations"
)

// Submission is implemented by every submission record type so stores can
// stamp ownership and timestamps uniformly.
type Submission interface {
	Collection() string
	Stamp(id primitive.ObjectID, userID string, now time.Time)
}

// CrisisCall is one call received by the crisis line.
//
// The county field is stored as "callByCountry" for compatibility with
// existing documents.
type CrisisCall struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID      string             `bson:"userId" json:"userId"`
	County      County             `bson:"callByCountry" json:"callByCountry" validate:"required,enum"`
	CrisisType  CrisisType         `bson:"crisisType" json:"crisisType" validate:"required,enum"`
	Description string             `bson:"description,omitempty" json:"description,omitempty" validate:"max=2000"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (c *CrisisCall) Collection() string { return CollCrisisCalls }

func (c *CrisisCall) Stamp(id primitive.ObjectID, userID string, now time.Time) {
	c.ID, c.UserID, c.CreatedAt, c.UpdatedAt = id, userID, now, now
}

// MobileCrisis is one mobile crisis team dispatch report. Durations are in
// minutes.
type MobileCrisis struct {
	ID                    primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UserID                string               `bson:"userId" json:"userId"`
	ReferralSource        MobileReferralSource `bson:"referralSource" json:"referralSource" validate:"required,enum"`
	TotalDispatches       float64              `bson:"totalDispatches" json:"totalDispatches" validate:"gte=0"`
	DispatchCounty        County               `bson:"dispatchCounty" json:"dispatchCounty" validate:"required,enum"`
	CrisisType            CrisisType           `bson:"crisisType" json:"crisisType" validate:"required,enum"`
	Outcome               MobileOutcome        `bson:"outcome" json:"outcome" validate:"required,enum"`
	TotalResponseTime     float64              `bson:"totalResponseTime" json:"totalResponseTime" validate:"gte=0"`
	MeanResponseTime      float64              `bson:"meanResponseTime" json:"meanResponseTime" validate:"gte=0"`
	TotalOnSceneTime      float64              `bson:"totalOnSceneTime" json:"totalOnSceneTime" validate:"gte=0"`
	MeanOnSceneTime       float64              `bson:"meanOnSceneTime" json:"meanOnSceneTime" validate:"gte=0"`
	ReferralsGiven        float64              `bson:"referralsGiven" json:"referralsGiven" validate:"gte=0"`
	ReferralType          ReferralType         `bson:"referralType,omitempty" json:"referralType,omitempty" validate:"omitempty,enum"`
	NaloxoneDispensations float64              `bson:"naloxoneDispensations" json:"naloxoneDispensations" validate:"gte=0"`
	FollowUpContacts      float64              `bson:"followUpContacts" json:"followUpContacts" validate:"gte=0"`
	IndividualsServed     float64              `bson:"individualsServed" json:"individualsServed" validate:"gte=0"`
	PrimaryInsurance      Insurance            `bson:"primaryInsurance" json:"primaryInsurance" validate:"required,enum"`
	AgeGroup              AgeGroup             `bson:"ageGroup" json:"ageGroup" validate:"required,enum"`
	VeteranStatus         VeteranStatus        `bson:"veteranStatus" json:"veteranStatus" validate:"required,enum"`
	ServingInMilitary     MilitaryStatus       `bson:"servingInMilitary" json:"servingInMilitary" validate:"required,enum"`
	CreatedAt             time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (m *MobileCrisis) Collection() string { return CollMobileCrises }

func (m *MobileCrisis) Stamp(id primitive.ObjectID, userID string, now time.Time) {
	m.ID, m.UserID, m.CreatedAt, m.UpdatedAt = id, userID, now, now
}

// Stabilization is one crisis stabilization unit visit report. Durations
// are in minutes.
type Stabilization struct {
	ID                    primitive.ObjectID          `bson:"_id,omitempty" json:"_id"`
	UserID                string                      `bson:"userId" json:"userId"`
	ReferralSource        StabilizationReferralSource `bson:"referralsToCrisisStabilization" json:"referralsToCrisisStabilization" validate:"required,enum"`
	NumberOfVisits        float64                     `bson:"numberOfVisits" json:"numberOfVisits" validate:"gte=0"`
	CrisisType            CrisisType                  `bson:"crisisTypes" json:"crisisTypes" validate:"required,enum"`
	Outcome               StabilizationOutcome        `bson:"outcome" json:"outcome" validate:"required,enum"`
	TotalTime             float64                     `bson:"totalStabilizationTime" json:"totalStabilizationTime" validate:"gte=0"`
	MeanTime              float64                     `bson:"meanStabilizationTime" json:"meanStabilizationTime" validate:"gte=0"`
	ReferralsGiven        float64                     `bson:"referralsGiven" json:"referralsGiven" validate:"gte=0"`
	ReferralsByType       ReferralType                `bson:"referralsByType,omitempty" json:"referralsByType,omitempty" validate:"omitempty,enum"`
	NaloxoneDispensations float64                     `bson:"naloxoneDispensations" json:"naloxoneDispensations" validate:"gte=0"`
	FollowUpContacts      float64                     `bson:"followUpContacts" json:"followUpContacts" validate:"gte=0"`
	IndividualsServed     float64                     `bson:"individualsServed" json:"individualsServed" validate:"gte=0"`
	County                County                      `bson:"clientCountyOfResidence" json:"clientCountyOfResidence" validate:"required,enum"`
	PrimaryInsurance      Insurance                   `bson:"clientPrimaryInsurance" json:"clientPrimaryInsurance" validate:"required,enum"`
	AgeGroup              AgeGroup                    `bson:"clientAgeGroups" json:"clientAgeGroups" validate:"required,enum"`
	VeteranStatus         VeteranStatus               `bson:"clientVeteranStatus" json:"clientVeteranStatus" validate:"required,enum"`
	ServingInMilitary     MilitaryStatus              `bson:"clientServingInMilitary" json:"clientServingInMilitary" validate:"required,enum"`
	CreatedAt             time.Time                   `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time                   `bson:"updatedAt" json:"updatedAt"`
}

func (s *Stabilization) Collection() string { return CollStabilizations }

func (s *Stabilization) Stamp(id primitive.ObjectID, userID string, now time.Time) {
	s.ID, s.UserID, s.CreatedAt, s.UpdatedAt = id, userID, now, now
}
