package usersummary_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/crisisline/crisishub/internal/app/features/usersummary"
	"github.com/crisisline/crisishub/internal/app/reporting"
	"github.com/crisisline/crisishub/internal/domain/models"
	"github.com/crisisline/crisishub/internal/testutil"
	"go.uber.org/zap"
)

func TestSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := testutil.UserPrincipal()
	latest := time.Now().UTC().Add(-30 * time.Minute).Truncate(time.Millisecond)
	fx.InsertCrisisCall(ctx, p.ID, "marion co.", models.CrisisOther, latest.Add(-2*time.Hour))
	s := testutil.SampleStabilization()
	fx.Insert(ctx, &s, p.ID, latest)
	fx.InsertCrisisCall(ctx, "someone-else", "lake co.", models.CrisisOther, latest)

	h := usersummary.NewHandler(reporting.NewEngine(db, reporting.Options{}), zap.NewNop())
	rec := testutil.NewRecorder()
	h.Summary(rec, testutil.NewAuthenticatedRequest("GET", "/summary", "", p))
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Success bool                  `json:"success"`
		Data    reporting.UserSummary `json:"data"`
	}
	rec.DecodeJSON(t, &resp)
	d := resp.Data
	if d.UserID != p.ID {
		t.Errorf("userId: got %q, want %q", d.UserID, p.ID)
	}
	if d.TotalFormsSubmitted != 2 {
		t.Errorf("totalFormsSubmitted: got %d, want 2", d.TotalFormsSubmitted)
	}
	if d.FormBreakdown.CrisisCalls != 1 || d.FormBreakdown.CrisisStabilization != 1 {
		t.Errorf("formBreakdown: got %+v", d.FormBreakdown)
	}
	if d.LastSubmittedAt == nil || !d.LastSubmittedAt.Equal(latest) {
		t.Errorf("lastSubmittedAt: got %v, want %v", d.LastSubmittedAt, latest)
	}
	if len(d.WeeklyInsights) != 7 {
		t.Errorf("weeklyInsights: got %d days, want 7", len(d.WeeklyInsights))
	}
}

func TestSummary_Unauthenticated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := usersummary.NewHandler(reporting.NewEngine(db, reporting.Options{}), zap.NewNop())

	rec := testutil.NewRecorder()
	h.Summary(rec, testutil.NewRequest("GET", "/summary"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}
