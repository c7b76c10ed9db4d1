package reportqueries_test

import (
	"testing"
	"time"

	"github.com/crisisline/crisishub/internal/app/reporting/window"
	"github.com/crisisline/crisishub/internal/app/store/queries/reportqueries"
	"github.com/crisisline/crisishub/internal/domain/models"
	"github.com/crisisline/crisishub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func october(t *testing.T) window.Window {
	t.Helper()
	w, err := window.Month(2025, 10, time.UTC)
	if err != nil {
		t.Fatalf("Month: %v", err)
	}
	return w
}

func TestScopeMatch(t *testing.T) {
	w := window.Window{Start: time.Unix(0, 0), End: time.Unix(100, 0)}
	m := reportqueries.In(w).Match()
	if _, ok := m["userId"]; ok {
		t.Error("unowned scope should not filter by userId")
	}
	m = reportqueries.In(w).Owned("u1").Match()
	if m["userId"] != "u1" {
		t.Errorf("userId: got %v, want u1", m["userId"])
	}
}

func TestGroupCount_CountyScenario(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	w := october(t)
	fx.InsertCrisisCall(ctx, "u1", "marion co.", models.CrisisOther, w.Start)
	fx.InsertCrisisCall(ctx, "u1", "marion co.", models.CrisisOther, w.Start.Add(48*time.Hour))
	fx.InsertCrisisCall(ctx, "u2", "lake co.", models.CrisisSubstanceUse, w.End.Add(-time.Second))
	// Exactly at the end of the window: belongs to November.
	fx.InsertCrisisCall(ctx, "u2", "lake co.", models.CrisisSubstanceUse, w.End)

	coll := db.Collection(models.CollCrisisCalls)
	groups, err := reportqueries.GroupCount(ctx, coll, reportqueries.In(w), "callByCountry")
	if err != nil {
		t.Fatalf("GroupCount: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("len(groups): got %d, want 2", len(groups))
	}
	if *groups[0].Value != "marion co." || groups[0].Count != 2 {
		t.Errorf("groups[0]: got %s/%d, want marion co./2", *groups[0].Value, groups[0].Count)
	}
	if *groups[1].Value != "lake co." || groups[1].Count != 1 {
		t.Errorf("groups[1]: got %s/%d, want lake co./1", *groups[1].Value, groups[1].Count)
	}

	n, err := reportqueries.Count(ctx, coll, reportqueries.In(w))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count: got %d, want 3", n)
	}

	nov, _ := window.Month(2025, 11, time.UTC)
	n, err = reportqueries.Count(ctx, coll, reportqueries.In(nov))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("November Count: got %d, want 1", n)
	}

	owned, err := reportqueries.Count(ctx, coll, reportqueries.In(w).Owned("u2"))
	if err != nil {
		t.Fatalf("Count owned: %v", err)
	}
	if owned != 1 {
		t.Errorf("owned Count: got %d, want 1", owned)
	}
}

func TestGroupCount_MissingBucket(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	w := october(t)
	with := testutil.SampleMobileCrisis()
	without := testutil.SampleMobileCrisis()
	without.ReferralType = ""
	fx.Insert(ctx, &with, "u1", w.Start)
	fx.Insert(ctx, &without, "u1", w.Start)

	coll := db.Collection(models.CollMobileCrises)
	all, err := reportqueries.GroupCount(ctx, coll, reportqueries.In(w), "referralType")
	if err != nil {
		t.Fatalf("GroupCount: %v", err)
	}
	if len(all) != 2 || all[0].Value != nil {
		t.Fatalf("expected nil bucket first among ties, got %+v", all)
	}

	present, err := reportqueries.GroupCountPresent(ctx, coll, reportqueries.In(w), "referralType")
	if err != nil {
		t.Fatalf("GroupCountPresent: %v", err)
	}
	if len(present) != 1 || *present[0].Value != "Other" {
		t.Errorf("present: got %+v, want only Other", present)
	}
}

func TestNumericStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	w := october(t)
	coll := db.Collection(models.CollMobileCrises)

	empty, err := reportqueries.NumericStats(ctx, coll, reportqueries.In(w), "totalResponseTime")
	if err != nil {
		t.Fatalf("NumericStats: %v", err)
	}
	if empty != (reportqueries.Numeric{}) {
		t.Errorf("empty window: got %+v, want zero", empty)
	}

	for _, minutes := range []float64{30, 60, 120} {
		m := testutil.SampleMobileCrisis()
		m.TotalResponseTime = minutes
		fx.Insert(ctx, &m, "u1", w.Start.Add(time.Hour))
	}

	got, err := reportqueries.NumericStats(ctx, coll, reportqueries.In(w), "totalResponseTime")
	if err != nil {
		t.Fatalf("NumericStats: %v", err)
	}
	want := reportqueries.Numeric{Sum: 210, Avg: 70, Min: 30, Max: 120, Count: 3}
	if got != want {
		t.Errorf("NumericStats: got %+v, want %+v", got, want)
	}
}

func TestCrossTab(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	w := october(t)
	fx.InsertCrisisCall(ctx, "u1", "marion co.", models.CrisisOther, w.Start)
	fx.InsertCrisisCall(ctx, "u1", "marion co.", models.CrisisSubstanceUse, w.Start)
	fx.InsertCrisisCall(ctx, "u1", "marion co.", models.CrisisSubstanceUse, w.Start)
	fx.InsertCrisisCall(ctx, "u1", "allen co.", models.CrisisOther, w.Start)

	cells, err := reportqueries.CrossTab(ctx, db.Collection(models.CollCrisisCalls), reportqueries.In(w), "callByCountry", "crisisType")
	if err != nil {
		t.Fatalf("CrossTab: %v", err)
	}
	want := []struct {
		a, b  string
		count int64
	}{
		{"allen co.", "Other", 1},
		{"marion co.", "Substance Use", 2},
		{"marion co.", "Other", 1},
	}
	if len(cells) != len(want) {
		t.Fatalf("len: got %d, want %d", len(cells), len(want))
	}
	for i, c := range cells {
		if *c.A != want[i].a || *c.B != want[i].b || c.Count != want[i].count {
			t.Errorf("cells[%d]: got (%s, %s, %d), want (%s, %s, %d)", i, *c.A, *c.B, c.Count, want[i].a, want[i].b, want[i].count)
		}
	}
}

func TestGroupSum(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	w := october(t)
	a := testutil.SampleStabilization()
	a.ReferralsGiven = 3
	b := testutil.SampleStabilization()
	b.ReferralsGiven = 1
	c := testutil.SampleStabilization()
	c.ReferralsByType = ""
	fx.Insert(ctx, &a, "u1", w.Start)
	fx.Insert(ctx, &b, "u1", w.Start)
	fx.Insert(ctx, &c, "u1", w.Start)

	got, err := reportqueries.GroupSum(ctx, db.Collection(models.CollStabilizations), reportqueries.In(w), "referralsByType", "referralsGiven")
	if err != nil {
		t.Fatalf("GroupSum: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len: got %d, want 1", len(got))
	}
	if got[0].Total != 4 || got[0].Records != 2 {
		t.Errorf("got total %v records %d, want 4 and 2", got[0].Total, got[0].Records)
	}
}

func TestDailyCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	w := october(t)
	fx.InsertCrisisCall(ctx, "u1", "marion co.", models.CrisisOther, time.Date(2025, 10, 3, 1, 0, 0, 0, time.UTC))
	fx.InsertCrisisCall(ctx, "u1", "marion co.", models.CrisisOther, time.Date(2025, 10, 3, 23, 0, 0, 0, time.UTC))
	fx.InsertCrisisCall(ctx, "u1", "marion co.", models.CrisisOther, time.Date(2025, 10, 4, 12, 0, 0, 0, time.UTC))

	got, err := reportqueries.DailyCounts(ctx, db.Collection(models.CollCrisisCalls), reportqueries.In(w), time.UTC)
	if err != nil {
		t.Fatalf("DailyCounts: %v", err)
	}
	if got["2025-10-03"] != 2 || got["2025-10-04"] != 1 {
		t.Errorf("DailyCounts: got %v", got)
	}
}

func TestLatestAndCountOwned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection(models.CollCrisisCalls)
	if _, err := reportqueries.Latest(ctx, coll, "u1"); err != mongo.ErrNoDocuments {
		t.Fatalf("Latest with no records: got %v, want ErrNoDocuments", err)
	}

	older := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 10, 9, 0, 0, 0, 0, time.UTC)
	fx.InsertCrisisCall(ctx, "u1", "lake co.", models.CrisisOther, older)
	fx.InsertCrisisCall(ctx, "u1", "lake co.", models.CrisisOther, newer)
	fx.InsertCrisisCall(ctx, "u2", "lake co.", models.CrisisOther, newer.Add(time.Hour))

	got, err := reportqueries.Latest(ctx, coll, "u1")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !got.Equal(newer) {
		t.Errorf("Latest: got %v, want %v", got, newer)
	}

	n, err := reportqueries.CountOwned(ctx, coll, "u1")
	if err != nil {
		t.Fatalf("CountOwned: %v", err)
	}
	if n != 2 {
		t.Errorf("CountOwned: got %d, want 2", n)
	}
}
