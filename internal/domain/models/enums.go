// internal/domain/models/enums.go
package models

// Categorical submission fields are closed string types. Each type's Valid
// method is the single source of truth for its enumerated set; the request
// validator's "enum" tag calls it, so an unknown value is rejected before a
// record is ever written.

// Enum is implemented by every closed categorical field type.
type Enum interface {
	Valid() bool
}

// County is an Indiana county, stored lower-case with the "co." suffix.
type County string

// Counties lists every accepted County value.
var Counties = []County{
	"adams co.", "allen co.", "bartholomew co.", "benton co.", "blackford co.",
	"boone co.", "brown co.", "carroll co.", "cass co.", "clark co.",
	"clay co.", "clinton co.", "crawford co.", "daviess co.", "dearborn co.",
	"decatur co.", "dekalb co.", "delaware co.", "dubois co.", "elkhart co.",
	"fayette co.", "floyd co.", "fountain co.", "franklin co.", "fulton co.",
	"gibson co.", "grant co.", "greene co.", "hamilton co.", "hancock co.",
	"harrison co.", "hendricks co.", "henry co.", "howard co.", "huntington co.",
	"jackson co.", "jasper co.", "jay co.", "jefferson co.", "jennings co.",
	"johnson co.", "knox co.", "kosciusko co.", "lagrange co.", "lake co.",
	"laporte co.", "lawrence co.", "madison co.", "marion co.", "marshall co.",
	"martin co.", "miami co.", "monroe co.", "montgomery co.", "morgan co.",
	"newton co.", "noble co.", "ohio co.", "orange co.", "owen co.",
	"parke co.", "perry co.", "pike co.", "porter co.", "posey co.",
	"pulaski co.", "putnam co.", "randolph co.", "ripley co.", "rush co.",
	"scott co.", "shelby co.", "spencer co.", "st. joseph co.", "starke co.",
	"steuben co.", "sullivan co.", "switzerland co.", "tippecanoe co.", "tipton co.",
	"union co.", "vanderburgh co.", "vermillion co.", "vigo co.", "wabash co.",
	"warren co.", "warrick co.", "washington co.", "wayne co.", "wells co.",
	"white co.", "whitley co.",
}

var countySet = setOf(Counties)

func (c County) Valid() bool { return countySet[c] }

// CrisisType is shared by all three submission types.
type CrisisType string

const (
	CrisisSuicideRisk       CrisisType = "Suicide Risk"
	CrisisHurtingOthers     CrisisType = "At Risk of Hurting Others"
	CrisisAdultMentalHealth CrisisType = "Adult Mental Health"
	CrisisYouthMentalHealth CrisisType = "Youth Mental Health"
	CrisisSubstanceUse      CrisisType = "Substance Use"
	CrisisOther             CrisisType = "Other"
)

// CrisisTypes lists every accepted CrisisType value.
var CrisisTypes = []CrisisType{
	CrisisSuicideRisk, CrisisHurtingOthers, CrisisAdultMentalHealth,
	CrisisYouthMentalHealth, CrisisSubstanceUse, CrisisOther,
}

var crisisTypeSet = setOf(CrisisTypes)

func (c CrisisType) Valid() bool { return crisisTypeSet[c] }

// ReferralSource is who referred a client to mobile crisis or a
// stabilization unit. The two sets differ only by "Mobile Crisis Team",
// which is a valid source for stabilization visits alone.
type ReferralSource string

var mobileReferralSources = []ReferralSource{
	"Law Enforcement/Justice System", "EMS", "Medical Hospitals",
	"Psychiatric Hospitals", "Behavioral Health Providers", "Schools",
	"Department of Child Services", "Faith-Based Organizations",
	"Housing Shelters", "Family and Friends", "Self", "Primary Healthcare",
	"Social Service Agency", "988", "911", "Other",
}

var mobileReferralSourceSet = setOf(mobileReferralSources)

var stabilizationReferralSourceSet = setOf(append([]ReferralSource{"Mobile Crisis Team"}, mobileReferralSources...))

// MobileReferralSource is a ReferralSource accepted on mobile crisis dispatches.
type MobileReferralSource ReferralSource

func (r MobileReferralSource) Valid() bool { return mobileReferralSourceSet[ReferralSource(r)] }

// StabilizationReferralSource is a ReferralSource accepted on stabilization visits.
type StabilizationReferralSource ReferralSource

func (r StabilizationReferralSource) Valid() bool {
	return stabilizationReferralSourceSet[ReferralSource(r)]
}

// Outcome of a crisis engagement.
type Outcome string

var stabilizationOutcomes = []Outcome{
	"Stabilized in the Community",
	"Sent to the Emergency Room/Called EMS",
	"Law Enforcement Custody",
	"Sent to an Inpatient Psychiatric Facility",
	"Sent to a Substance Use Treatment Facility",
	"Other",
}

var stabilizationOutcomeSet = setOf(stabilizationOutcomes)

var mobileOutcomeSet = setOf(append([]Outcome{"Sent to a Crisis Stabilization Unit"}, stabilizationOutcomes...))

// MobileOutcome is an Outcome accepted on mobile crisis dispatches.
type MobileOutcome Outcome

func (o MobileOutcome) Valid() bool { return mobileOutcomeSet[Outcome(o)] }

// StabilizationOutcome is an Outcome accepted on stabilization visits.
type StabilizationOutcome Outcome

func (o StabilizationOutcome) Valid() bool { return stabilizationOutcomeSet[Outcome(o)] }

// ReferralType is the kind of service a client was referred on to.
type ReferralType string

var referralTypeSet = setOf([]ReferralType{
	"Social Service Agency", "Mental Health Services/Treatment",
	"Substance Use Treatment", "Primary Health Care",
	"Domestic Violence Support", "Other",
})

func (r ReferralType) Valid() bool { return referralTypeSet[r] }

// Insurance is the client's primary insurance.
type Insurance string

var insuranceSet = setOf([]Insurance{
	"Medicaid (not dually-eligible)", "HIP", "Medicare (not dually-eligible)",
	"Medicaid and Medicare (dually-eligible)", "Commercially Insured",
	"VHA/TRI Care", "CHIP", "Uninsured", "Other",
})

func (i Insurance) Valid() bool { return insuranceSet[i] }

// AgeGroup buckets use an en dash, matching the stored data.
type AgeGroup string

var ageGroupSet = setOf([]AgeGroup{
	"0–5 years", "6–12 years", "13–17 years", "18–20 years", "21–24 years",
	"25–44 years", "45–64 years", "65 years or over", "Unknown",
})

func (a AgeGroup) Valid() bool { return ageGroupSet[a] }

// VeteranStatus of the client.
type VeteranStatus string

var veteranStatusSet = setOf([]VeteranStatus{
	"Yes", "No", "Not Applicable (Client under 18 years of age)",
})

func (v VeteranStatus) Valid() bool { return veteranStatusSet[v] }

// MilitaryStatus records whether the client is currently serving.
type MilitaryStatus string

var militaryStatusSet = setOf([]MilitaryStatus{
	"Yes", "No", "Refused", "Not Applicable (Client under 18 years of age)",
})

func (m MilitaryStatus) Valid() bool { return militaryStatusSet[m] }

func setOf[T comparable](vals []T) map[T]bool {
	m := make(map[T]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}
