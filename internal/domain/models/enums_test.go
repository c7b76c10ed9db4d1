package models

import "testing"

func TestCountyValid(t *testing.T) {
	if len(Counties) != 92 {
		t.Errorf("Counties: got %d entries, want 92", len(Counties))
	}
	tests := []struct {
		in   County
		want bool
	}{
		{"marion co.", true},
		{"st. joseph co.", true},
		{"Marion co.", false},
		{"marion", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			if got := tt.in.Valid(); got != tt.want {
				t.Errorf("County(%q).Valid() = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestReferralSourceSetsDiffer(t *testing.T) {
	if MobileReferralSource("Mobile Crisis Team").Valid() {
		t.Error("Mobile Crisis Team must not be a mobile referral source")
	}
	if !StabilizationReferralSource("Mobile Crisis Team").Valid() {
		t.Error("Mobile Crisis Team must be a stabilization referral source")
	}
	for _, s := range []string{"EMS", "988", "911", "Self", "Other"} {
		if !MobileReferralSource(s).Valid() || !StabilizationReferralSource(s).Valid() {
			t.Errorf("%q should be valid for both referral source sets", s)
		}
	}
}

func TestOutcomeSetsDiffer(t *testing.T) {
	csu := "Sent to a Crisis Stabilization Unit"
	if !MobileOutcome(csu).Valid() {
		t.Errorf("%q should be a valid mobile outcome", csu)
	}
	if StabilizationOutcome(csu).Valid() {
		t.Errorf("%q should not be a valid stabilization outcome", csu)
	}
}

func TestAgeGroupUsesEnDash(t *testing.T) {
	if !AgeGroup("0–5 years").Valid() {
		t.Error("en-dash age group should be valid")
	}
	if AgeGroup("0-5 years").Valid() {
		t.Error("hyphen age group should be rejected")
	}
}

func TestClosedSets(t *testing.T) {
	tests := []struct {
		name string
		v    Enum
		want bool
	}{
		{"crisis type", CrisisSubstanceUse, true},
		{"crisis type lower", CrisisType("substance use"), false},
		{"referral type", ReferralType("Primary Health Care"), true},
		{"referral type unknown", ReferralType("Housing"), false},
		{"insurance", Insurance("CHIP"), true},
		{"insurance unknown", Insurance("Private"), false},
		{"veteran", VeteranStatus("Not Applicable (Client under 18 years of age)"), true},
		{"veteran refused", VeteranStatus("Refused"), false},
		{"military refused", MilitaryStatus("Refused"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
