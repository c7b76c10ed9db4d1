package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/crisisline/crisishub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plain-text password of accounts created by fixtures.
const TestPassword = "secret123"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) hash(password string) string {
	f.t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

// CreateUser creates a fully signed-up user with TestPassword.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, status string) models.User {
	f.t.Helper()
	return f.CreateUserAt(ctx, name, email, status, time.Now().UTC())
}

// CreateUserAt is CreateUser with an explicit creation time.
func (f *Fixtures) CreateUserAt(ctx context.Context, name, email, status string, createdAt time.Time) models.User {
	f.t.Helper()

	user := models.User{
		ID:            primitive.NewObjectID(),
		Name:          name,
		NameCI:        text.Fold(name),
		Email:         email,
		PasswordHash:  f.hash(TestPassword),
		Status:        status,
		IsOtpVerified: true,
		ProfileImage:  models.DefaultProfileImage,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreatePendingUser creates an inactive account that has not completed signup.
func (f *Fixtures) CreatePendingUser(ctx context.Context, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Status:    models.StatusInactive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create pending user: %v", err)
	}
	return user
}

// CreateAdmin creates the administrator account with TestPassword.
func (f *Fixtures) CreateAdmin(ctx context.Context, name, email string) models.Admin {
	f.t.Helper()

	now := time.Now().UTC()
	admin := models.Admin{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: f.hash(TestPassword),
		ProfileImage: models.DefaultProfileImage,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("admins").InsertOne(ctx, admin); err != nil {
		f.t.Fatalf("failed to create test admin: %v", err)
	}
	return admin
}

// Insert stores s as owned by userID and created at the given time.
func (f *Fixtures) Insert(ctx context.Context, s models.Submission, userID string, at time.Time) {
	f.t.Helper()

	s.Stamp(primitive.NewObjectID(), userID, at)
	if _, err := f.db.Collection(s.Collection()).InsertOne(ctx, s); err != nil {
		f.t.Fatalf("failed to insert %s: %v", s.Collection(), err)
	}
}

// InsertCrisisCall stores one crisis call.
func (f *Fixtures) InsertCrisisCall(ctx context.Context, userID string, county models.County, crisis models.CrisisType, at time.Time) {
	f.t.Helper()
	f.Insert(ctx, &models.CrisisCall{County: county, CrisisType: crisis}, userID, at)
}

// SampleMobileCrisis returns a valid mobile crisis report.
func SampleMobileCrisis() models.MobileCrisis {
	return models.MobileCrisis{
		ReferralSource:        "EMS",
		TotalDispatches:       2,
		DispatchCounty:        "marion co.",
		CrisisType:            models.CrisisAdultMentalHealth,
		Outcome:               "Stabilized in the Community",
		TotalResponseTime:     60,
		MeanResponseTime:      30,
		TotalOnSceneTime:      90,
		MeanOnSceneTime:       45,
		ReferralsGiven:        1,
		ReferralType:          "Other",
		NaloxoneDispensations: 0,
		FollowUpContacts:      1,
		IndividualsServed:     1,
		PrimaryInsurance:      "Uninsured",
		AgeGroup:              "25–44 years",
		VeteranStatus:         "No",
		ServingInMilitary:     "No",
	}
}

// SampleStabilization returns a valid stabilization visit report.
func SampleStabilization() models.Stabilization {
	return models.Stabilization{
		ReferralSource:        "Mobile Crisis Team",
		NumberOfVisits:        1,
		CrisisType:            models.CrisisSubstanceUse,
		Outcome:               "Stabilized in the Community",
		TotalTime:             240,
		MeanTime:              240,
		ReferralsGiven:        2,
		ReferralsByType:       "Other",
		NaloxoneDispensations: 1,
		FollowUpContacts:      1,
		IndividualsServed:     1,
		County:                "lake co.",
		PrimaryInsurance:      "Uninsured",
		AgeGroup:              "25–44 years",
		VeteranStatus:         "No",
		ServingInMilitary:     "No",
	}
}
