package admin_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/crisisline/crisishub/internal/app/features/admin"
	"github.com/crisisline/crisishub/internal/app/features/shared/otpmail"
	adminstore "github.com/crisisline/crisishub/internal/app/store/admins"
	"github.com/crisisline/crisishub/internal/app/store/otp"
	userstore "github.com/crisisline/crisishub/internal/app/store/users"
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/crisisline/crisishub/internal/app/system/authutil"
	"github.com/crisisline/crisishub/internal/app/system/ratelimit"
	"github.com/crisisline/crisishub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const testSecret = "test-jwt-secret-must-be-32-chars-long"

func newHandler(t *testing.T) (*admin.Handler, *testutil.MailSink, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	am, err := auth.NewManager(testSecret, time.Hour, userstore.NewFetcher(db), adminstore.NewFetcher(db), zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	sink := &testutil.MailSink{}
	h := admin.NewHandler(adminstore.New(db), otpmail.New(otp.New(db, 0), sink, zap.NewNop()), am,
		ratelimit.NewAuthLimiterWithConfig(100, time.Minute, 100, time.Minute), nil, zap.NewNop())
	return h, sink, db
}

func post(handler http.HandlerFunc, body string) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	handler(rec, testutil.NewJSONRequest("POST", "/", body))
	return rec
}

func TestSignup_SingleAdmin(t *testing.T) {
	h, _, _ := newHandler(t)

	rec := post(h.Signup, `{"name":"Chief","email":"Chief@Test.com","password":"strong-pass-1"}`)
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, "Admin created successfully.")

	var resp struct {
		Admin struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"admin"`
	}
	rec.DecodeJSON(t, &resp)
	if resp.Admin.Email != "chief@test.com" {
		t.Errorf("email: got %q, want %q", resp.Admin.Email, "chief@test.com")
	}
	if resp.Admin.ID == "" {
		t.Error("expected admin id in response")
	}

	rec = post(h.Signup, `{"name":"Second","email":"second@test.com","password":"strong-pass-2"}`)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Only one admin allowed")
}

func TestSignup_Validation(t *testing.T) {
	h, _, _ := newHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"a@test.com","password":"strong-pass-1"}`},
		{"bad email", `{"name":"Chief","email":"chief","password":"strong-pass-1"}`},
		{"common password", `{"name":"Chief","email":"a@test.com","password":"qwerty"}`},
		{"short password", `{"name":"Chief","email":"a@test.com","password":"abc"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post(h.Signup, tt.body).AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestLogin(t *testing.T) {
	h, _, db := newHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := fx.CreateAdmin(ctx, "Chief", "chief@test.com")

	rec := post(h.Login, `{"email":"chief@test.com","password":"`+testutil.TestPassword+`"}`)
	rec.AssertStatus(t, http.StatusOK)
	var resp struct {
		Token string `json:"token"`
	}
	rec.DecodeJSON(t, &resp)
	claims, err := h.Auth.Parse(resp.Token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.ID != a.ID.Hex() || claims.Kind != auth.KindAdmin {
		t.Errorf("claims: got %s/%s, want %s/admin", claims.ID, claims.Kind, a.ID.Hex())
	}

	post(h.Login, `{"email":"chief@test.com","password":"nope-nope"}`).AssertStatus(t, http.StatusUnauthorized)
	post(h.Login, `{"email":"other@test.com","password":"`+testutil.TestPassword+`"}`).AssertStatus(t, http.StatusUnauthorized)
}

func TestPasswordReset(t *testing.T) {
	h, sink, db := newHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := fx.CreateAdmin(ctx, "Chief", "chief@test.com")

	post(h.ForgotPassword, `{"email":"ghost@test.com"}`).AssertStatus(t, http.StatusNotFound)

	post(h.ForgotPassword, `{"email":"chief@test.com"}`).AssertStatus(t, http.StatusOK)
	code := sink.LastCode("chief@test.com")
	if code == "" {
		t.Fatal("expected reset code email")
	}

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	rec := post(h.ResetPassword, `{"email":"chief@test.com","otp":"`+wrong+`","newPassword":"brand-new-pass"}`)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Invalid or expired OTP")

	rec = post(h.ResetPassword, `{"email":"chief@test.com","otp":"`+code+`","newPassword":"brand-new-pass"}`)
	rec.AssertStatus(t, http.StatusOK)

	got, err := adminstore.New(db).GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !authutil.CheckPassword("brand-new-pass", got.PasswordHash) {
		t.Error("password was not changed")
	}

	rec = post(h.ResetPassword, `{"email":"chief@test.com","otp":"`+code+`","newPassword":"another-pass"}`)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestUpdateProfile(t *testing.T) {
	h, _, db := newHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := fx.CreateAdmin(ctx, "Chief", "chief@test.com")
	p := &auth.Principal{ID: a.ID.Hex(), Kind: auth.KindAdmin}

	rec := testutil.NewRecorder()
	h.UpdateProfile(rec, testutil.NewAuthenticatedRequest("PUT", "/profile-image", `{"profileImage":"https://img.test/chief.png"}`, p))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "https://img.test/chief.png")

	rec = testutil.NewRecorder()
	h.UpdateProfile(rec, testutil.NewAuthenticatedRequest("PUT", "/profile-image", `{}`, p))
	rec.AssertStatus(t, http.StatusBadRequest)
}
