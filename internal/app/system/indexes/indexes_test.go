package indexes_test

import (
	"context"
	"testing"
	"time"

	"github.com/crisisline/crisishub/internal/app/system/indexes"
	"github.com/crisisline/crisishub/internal/domain/models"
	"github.com/crisisline/crisishub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	err := indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// First call
	err := indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}

	// Second call should also succeed (idempotent)
	err = indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func indexSpecs(t *testing.T, ctx context.Context, coll *mongo.Collection) map[string]bson.M {
	t.Helper()
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	specs := make(map[string]bson.M)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			specs[name] = idx
		}
	}
	return specs
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tests := []struct {
		coll  string
		names []string
	}{
		{"users", []string{"uniq_users_email", "idx_users_status_createdat_id", "idx_users_createdat", "idx_users_nameci"}},
		{"admins", []string{"uniq_admins_email"}},
		{models.CollCrisisCalls, []string{"idx_crisiscalls_createdat", "idx_crisiscalls_userid_createdat"}},
		{models.CollMobileCrises, []string{"idx_mobilecrises_createdat", "idx_mobilecrises_userid_createdat"}},
		{models.CollStabilizations, []string{"idx_crisisstabilizations_createdat", "idx_crisisstabilizations_userid_createdat"}},
		{"otp_codes", []string{"uniq_otp_email_purpose", "ttl_otp_expiresat"}},
		{"audit_events", []string{"idx_audit_timestamp", "idx_audit_account_timestamp", "idx_audit_category_type_timestamp"}},
	}
	for _, tt := range tests {
		t.Run(tt.coll, func(t *testing.T) {
			specs := indexSpecs(t, ctx, db.Collection(tt.coll))
			for _, name := range tt.names {
				if _, ok := specs[name]; !ok {
					t.Errorf("expected index %q to exist on %s", name, tt.coll)
				}
			}
		})
	}
}

func TestEnsureAll_OTPExpiryIsTTL(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	specs := indexSpecs(t, ctx, db.Collection("otp_codes"))
	ttl, ok := specs["ttl_otp_expiresat"]
	if !ok {
		t.Fatal("ttl_otp_expiresat missing")
	}
	if _, ok := ttl["expireAfterSeconds"]; !ok {
		t.Errorf("ttl_otp_expiresat: expireAfterSeconds not set: %v", ttl)
	}
}

func TestEnsureAll_RenamesMisnamedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection(models.CollCrisisCalls)
	if _, err := coll.Indexes().DropOne(ctx, "idx_crisiscalls_createdat"); err != nil {
		t.Fatalf("DropOne failed: %v", err)
	}
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("createdAt_1"),
	})
	if err != nil {
		t.Fatalf("CreateOne failed: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	specs := indexSpecs(t, ctx, coll)
	if _, ok := specs["createdAt_1"]; ok {
		t.Error("legacy index name should have been replaced")
	}
	if _, ok := specs["idx_crisiscalls_createdat"]; !ok {
		t.Error("expected idx_crisiscalls_createdat after reconcile")
	}
}

func TestEnsureAll_UniqueIndexEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	users := db.Collection("users")
	now := time.Now()
	if _, err := users.InsertOne(ctx, bson.M{"email": "dup@example.com", "createdAt": now}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := users.InsertOne(ctx, bson.M{"email": "dup@example.com", "createdAt": now}); err == nil {
		t.Error("expected duplicate email insert to fail")
	}
}
