package usermanagement_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/crisisline/crisishub/internal/app/features/usermanagement"
	"github.com/crisisline/crisishub/internal/app/reporting"
	adminstore "github.com/crisisline/crisishub/internal/app/store/admins"
	"github.com/crisisline/crisishub/internal/app/store/audit"
	userstore "github.com/crisisline/crisishub/internal/app/store/users"
	"github.com/crisisline/crisishub/internal/app/system/auditlog"
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/crisisline/crisishub/internal/app/system/authutil"
	"github.com/crisisline/crisishub/internal/app/system/paging"
	"github.com/crisisline/crisishub/internal/domain/models"
	"github.com/crisisline/crisishub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const testSecret = "test-jwt-secret-must-be-32-chars-long"

func newRouter(t *testing.T) (chi.Router, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	am, err := auth.NewManager(testSecret, time.Hour, userstore.NewFetcher(db), adminstore.NewFetcher(db), zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	events := audit.New(db)
	auditLog := auditlog.New(events, zap.NewNop(), auditlog.Config{Auth: auditlog.ModeDB, Admin: auditlog.ModeDB})
	h := usermanagement.NewHandler(userstore.New(db), reporting.NewEngine(db, reporting.Options{}), events, auditLog, zap.NewNop())
	return usermanagement.Routes(h, am), db
}

func serve(r chi.Router, method, target, body string, p *auth.Principal) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	req := testutil.NewJSONRequest(method, target, body)
	if p != nil {
		req = auth.WithTestPrincipal(req, p)
	}
	r.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_RequireAdmin(t *testing.T) {
	r, _ := newRouter(t)

	serve(r, "GET", "/all-user", "", nil).AssertStatus(t, http.StatusUnauthorized)
	serve(r, "GET", "/all-user", "", testutil.UserPrincipal()).AssertStatus(t, http.StatusForbidden)
	serve(r, "GET", "/all-user", "", testutil.AdminPrincipal()).AssertStatus(t, http.StatusOK)
}

func TestCreate(t *testing.T) {
	r, db := newRouter(t)
	admin := testutil.AdminPrincipal()

	rec := serve(r, "POST", "/create-user", `{"name":"Field Worker","email":"Worker@Test.com","password":"field-pass-1"}`, admin)
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, "User created successfully by admin")

	var resp struct {
		User models.User `json:"user"`
	}
	rec.DecodeJSON(t, &resp)
	if resp.User.Status != models.StatusActive || resp.User.Email != "worker@test.com" {
		t.Errorf("user: got status=%q email=%q", resp.User.Status, resp.User.Email)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	stored, err := userstore.New(db).GetByEmail(ctx, "worker@test.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if !authutil.CheckPassword("field-pass-1", stored.PasswordHash) {
		t.Error("stored password does not match")
	}

	rec = serve(r, "POST", "/create-user", `{"name":"Dup","email":"worker@test.com","password":"field-pass-2"}`, admin)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "already exists")

	serve(r, "POST", "/create-user", `{"name":"Bad","email":"bad@test.com","password":"field-pass-3","status":"paused"}`, admin).
		AssertStatus(t, http.StatusBadRequest)
}

func TestUpdate(t *testing.T) {
	r, db := newRouter(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := testutil.AdminPrincipal()

	u := fx.CreateUser(ctx, "Worker", "worker@test.com", models.StatusActive)
	fx.CreateUser(ctx, "Other", "other@test.com", models.StatusActive)

	tests := []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{"rename", "/update-user/" + u.ID.Hex(), `{"name":"Renamed"}`, http.StatusOK},
		{"blank password ignored", "/update-user/" + u.ID.Hex(), `{"password":"  "}`, http.StatusOK},
		{"taken email", "/update-user/" + u.ID.Hex(), `{"email":"other@test.com"}`, http.StatusBadRequest},
		{"weak password", "/update-user/" + u.ID.Hex(), `{"password":"123456"}`, http.StatusBadRequest},
		{"unknown user", "/update-user/" + primitive.NewObjectID().Hex(), `{"name":"Ghost"}`, http.StatusNotFound},
		{"bad id", "/update-user/not-an-id", `{"name":"Ghost"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serve(r, "PUT", tt.target, tt.body, admin).AssertStatus(t, tt.want)
		})
	}

	got, err := userstore.New(db).GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Renamed" || got.Email != "worker@test.com" {
		t.Errorf("after updates: got name=%q email=%q", got.Name, got.Email)
	}
	if !authutil.CheckPassword(testutil.TestPassword, got.PasswordHash) {
		t.Error("blank password should leave the hash unchanged")
	}
}

func TestToggleStatus(t *testing.T) {
	r, db := newRouter(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := testutil.AdminPrincipal()

	u := fx.CreateUser(ctx, "Worker", "worker@test.com", models.StatusActive)
	target := "/change-status/" + u.ID.Hex()

	rec := serve(r, "PATCH", target, "", admin)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "User status changed to inactive")

	rec = serve(r, "PATCH", target, "", admin)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "User status changed to active")

	serve(r, "PATCH", "/change-status/123", "", admin).AssertStatus(t, http.StatusBadRequest)
	serve(r, "PATCH", "/change-status/"+primitive.NewObjectID().Hex(), "", admin).AssertStatus(t, http.StatusNotFound)
}

func TestDelete(t *testing.T) {
	r, db := newRouter(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := testutil.AdminPrincipal()

	u := fx.CreateUser(ctx, "Worker", "worker@test.com", models.StatusActive)

	serve(r, "DELETE", "/delete/"+u.ID.Hex(), "", admin).AssertStatus(t, http.StatusOK)
	serve(r, "DELETE", "/delete/"+u.ID.Hex(), "", admin).AssertStatus(t, http.StatusNotFound)
	serve(r, "DELETE", "/delete/nope", "", admin).AssertStatus(t, http.StatusBadRequest)
}

func TestList(t *testing.T) {
	r, db := newRouter(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := testutil.AdminPrincipal()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 12; i++ {
		status := models.StatusActive
		if i%3 == 0 {
			status = models.StatusInactive
		}
		fx.CreateUserAt(ctx, fmt.Sprintf("Worker %02d", i), fmt.Sprintf("w%02d@test.com", i), status, base.Add(time.Duration(i)*time.Minute))
	}

	type listResp struct {
		Users      []models.User     `json:"users"`
		Pagination paging.Pagination `json:"pagination"`
		Filter     struct {
			Status string `json:"status"`
			Search string `json:"search"`
		} `json:"filter"`
	}

	tests := []struct {
		name       string
		target     string
		wantCount  int
		wantTotal  int64
		wantFirst  string
		wantStatus string
		wantNext   bool
	}{
		{"first page", "/all-user?limit=5", 5, 12, "Worker 11", "all", true},
		{"last page", "/all-user?limit=5&page=3", 2, 12, "Worker 01", "all", false},
		{"inactive only", "/all-user?status=inactive", 4, 4, "Worker 09", "inactive", false},
		{"status all", "/all-user?status=all", 10, 12, "Worker 11", "all", true},
		{"search", "/all-user?search=worker%2007", 1, 1, "Worker 07", "all", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, "GET", tt.target, "", admin)
			rec.AssertStatus(t, http.StatusOK)

			var resp listResp
			rec.DecodeJSON(t, &resp)
			if len(resp.Users) != tt.wantCount {
				t.Fatalf("users: got %d, want %d", len(resp.Users), tt.wantCount)
			}
			if resp.Pagination.Total != tt.wantTotal {
				t.Errorf("totalUsers: got %d, want %d", resp.Pagination.Total, tt.wantTotal)
			}
			if resp.Users[0].Name != tt.wantFirst {
				t.Errorf("first: got %q, want %q", resp.Users[0].Name, tt.wantFirst)
			}
			if resp.Filter.Status != tt.wantStatus {
				t.Errorf("filter.status: got %q, want %q", resp.Filter.Status, tt.wantStatus)
			}
			if resp.Pagination.HasNextPage != tt.wantNext {
				t.Errorf("hasNextPage: got %v, want %v", resp.Pagination.HasNextPage, tt.wantNext)
			}
		})
	}
}

func TestStats(t *testing.T) {
	r, db := newRouter(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "A", "a@test.com", models.StatusActive)
	fx.CreateUser(ctx, "B", "b@test.com", models.StatusInactive)

	rec := serve(r, "GET", "/dashboard/stats", "", testutil.AdminPrincipal())
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Stats       reporting.AccountCounts `json:"stats"`
		Percentages reporting.AccountShares `json:"percentages"`
	}
	rec.DecodeJSON(t, &resp)
	if resp.Stats.TotalUsers != 2 || resp.Stats.NewUsersToday < 1 {
		t.Errorf("stats: got %+v", resp.Stats)
	}
	if resp.Percentages.ActivePercentage != 50 {
		t.Errorf("activePercentage: got %v, want 50", resp.Percentages.ActivePercentage)
	}
}

func TestAuditLog(t *testing.T) {
	r, db := newRouter(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := testutil.AdminPrincipal()

	u := fx.CreateUser(ctx, "Worker", "worker@test.com", models.StatusActive)
	serve(r, "PATCH", "/change-status/"+u.ID.Hex(), "", admin).AssertStatus(t, http.StatusOK)
	serve(r, "PUT", "/update-user/"+u.ID.Hex(), `{"name":"Renamed Worker"}`, admin).AssertStatus(t, http.StatusOK)
	serve(r, "DELETE", "/delete/"+u.ID.Hex(), "", admin).AssertStatus(t, http.StatusOK)

	rec := serve(r, "GET", "/audit-log?category=admin&accountId="+u.ID.Hex(), "", admin)
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Events     []audit.Event     `json:"events"`
		Pagination paging.Pagination `json:"pagination"`
	}
	rec.DecodeJSON(t, &resp)
	if len(resp.Events) != 3 {
		t.Fatalf("events: got %d, want 3", len(resp.Events))
	}
	if resp.Events[0].EventType != audit.EventUserDeleted {
		t.Errorf("newest event: got %q, want %q", resp.Events[0].EventType, audit.EventUserDeleted)
	}
	if resp.Events[1].Details["fields_changed"] != "name" {
		t.Errorf("fields_changed: got %q, want %q", resp.Events[1].Details["fields_changed"], "name")
	}
	for _, e := range resp.Events {
		if e.ActorID == nil || e.ActorID.Hex() != admin.ID {
			t.Errorf("%s: actor got %v, want %s", e.EventType, e.ActorID, admin.ID)
		}
	}

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"bad category", "/audit-log?category=billing", http.StatusBadRequest},
		{"bad account", "/audit-log?accountId=nope", http.StatusBadRequest},
		{"all categories", "/audit-log?category=all", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serve(r, "GET", tt.target, "", admin).AssertStatus(t, tt.want)
		})
	}
}
