package submissionstore_test

import (
	"testing"
	"time"

	submissionstore "github.com/crisisline/crisishub/internal/app/store/submissions"
	"github.com/crisisline/crisishub/internal/domain/models"
	"github.com/crisisline/crisishub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Insert_CrisisCall(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := submissionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	call := &models.CrisisCall{County: "lake co.", CrisisType: models.CrisisOther}
	before := time.Now().Add(-time.Second)
	if err := store.Insert(ctx, call, "user-1"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if call.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if call.UserID != "user-1" {
		t.Errorf("UserID: got %q, want %q", call.UserID, "user-1")
	}
	if call.CreatedAt.Before(before) || !call.CreatedAt.Equal(call.UpdatedAt) {
		t.Errorf("timestamps: created %v updated %v", call.CreatedAt, call.UpdatedAt)
	}

	var raw bson.M
	if err := db.Collection(models.CollCrisisCalls).FindOne(ctx, bson.M{"_id": call.ID}).Decode(&raw); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if raw["callByCountry"] != "lake co." {
		t.Errorf("callByCountry: got %v, want %q", raw["callByCountry"], "lake co.")
	}
	if raw["userId"] != "user-1" {
		t.Errorf("userId: got %v", raw["userId"])
	}
}

func TestStore_Insert_RoutesByType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := submissionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := testutil.SampleMobileCrisis()
	s := testutil.SampleStabilization()
	if err := store.Insert(ctx, &m, "u"); err != nil {
		t.Fatalf("Insert mobile: %v", err)
	}
	if err := store.Insert(ctx, &s, "u"); err != nil {
		t.Fatalf("Insert stabilization: %v", err)
	}

	tests := []struct {
		coll string
		want int64
	}{
		{models.CollCrisisCalls, 0},
		{models.CollMobileCrises, 1},
		{models.CollStabilizations, 1},
	}
	for _, tt := range tests {
		n, err := db.Collection(tt.coll).CountDocuments(ctx, bson.M{})
		if err != nil {
			t.Fatalf("CountDocuments(%s): %v", tt.coll, err)
		}
		if n != tt.want {
			t.Errorf("%s: got %d, want %d", tt.coll, n, tt.want)
		}
	}
}
