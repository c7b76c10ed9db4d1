// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crisisline/crisishub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureAdmins(ctx, db); err != nil {
		problems = append(problems, "admins: "+err.Error())
	}
	// every report filters on createdAt, the per-account summary adds userId
	for _, name := range []string{models.CollCrisisCalls, models.CollMobileCrises, models.CollStabilizations} {
		if err := ensureSubmissions(ctx, db, name); err != nil {
			problems = append(problems, name+": "+err.Error())
		}
	}
	if err := ensureOTPCodes(ctx, db); err != nil {
		problems = append(problems, "otp_codes: "+err.Error())
	}
	if err := ensureAuditEvents(ctx, db); err != nil {
		problems = append(problems, "audit_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name        string `bson:"name"`
	Key         bson.D `bson:"key"`
	Unique      *bool  `bson:"unique,omitempty"`
	ExpireAfter *int32 `bson:"expireAfterSeconds,omitempty"`
}

// desired is the part of an IndexModel that ensureIndexSet compares.
type desired struct {
	name        string
	sig         string
	unique      *bool
	expireAfter *int32
}

func describe(m mongo.IndexModel) desired {
	d := desired{sig: keySig(m.Keys.(bson.D))}
	if m.Options != nil {
		if m.Options.Name != nil {
			d.name = *m.Options.Name
		}
		d.unique = m.Options.Unique
		d.expireAfter = m.Options.ExpireAfterSeconds
	}
	return d
}

func (d desired) isUnique() bool { return d.unique != nil && *d.unique }

// sameOptions reports whether an existing index with the same keys can be
// reused as is.
func (d desired) sameOptions(ex existingIndex) bool {
	return sameBoolPtr(d.unique, ex.Unique) && sameInt32Ptr(d.expireAfter, ex.ExpireAfter)
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := false
	bv := false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

func sameInt32Ptr(a, b *int32) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

// createFailure formats a CreateOne error, pointing at the duplicate finder
// when a unique email index cannot be built.
func createFailure(coll *mongo.Collection, d desired, err error) string {
	if isDuplicateKeyErr(err) && d.isUnique() {
		helper := ""
		if strings.Contains(d.sig, "email:1") {
			helper = fmt.Sprintf(" (duplicates exist on %[1]s.email; find them with "+
				`db.%[1]s.aggregate([{ $group: { _id: "$email", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }]))`, coll.Name())
		}
		return fmt.Sprintf("%s(%s): cannot create unique index, duplicates present%s", coll.Name(), d.name, helper)
	}
	return fmt.Sprintf("%s(%s): %v", coll.Name(), d.name, err)
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{} // sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

// recreate drops an index and creates the desired one in its place.
func recreate(ctx context.Context, coll *mongo.Collection, oldName string, m mongo.IndexModel, d desired) error {
	if _, err := coll.Indexes().DropOne(ctx, oldName); err != nil {
		zap.L().Warn("drop existing index failed",
			zap.String("collection", coll.Name()),
			zap.String("name", oldName),
			zap.String("keys", d.sig),
			zap.Error(err))
		return fmt.Errorf("%s(%s): drop failed: %v", coll.Name(), d.name, err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
		return errors.New(createFailure(coll, d, err))
	}
	return nil
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		d := describe(m)
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", d.name),
			zap.String("keys", d.sig),
			zap.Bool("unique", d.isUnique()))
		log.Info("ensuring index")

		// 1) Same key pattern exists already: reuse, rename or rebuild.
		if ex, ok := listExisting(ctx, coll)[d.sig]; ok {
			switch {
			case d.sameOptions(ex) && (d.name == "" || ex.Name == d.name):
				log.Info("reusing existing index", zap.String("took", time.Since(start).String()))
			case d.sameOptions(ex):
				log.Info("renaming index to align with desired name", zap.String("from", ex.Name))
				if err := recreate(ctx, coll, ex.Name, m, d); err != nil {
					errs = append(errs, err.Error())
					continue
				}
				log.Info("index renamed", zap.String("took", time.Since(start).String()))
			default:
				// Options mismatch (e.g., upgrading to unique or a new TTL).
				if err := recreate(ctx, coll, ex.Name, m, d); err != nil {
					errs = append(errs, err.Error())
					continue
				}
				log.Info("index dropped and recreated", zap.String("took", time.Since(start).String()))
			}
			continue
		}

		// 2) No existing index with the same keys: create it.
		created, err := coll.Indexes().CreateOne(ctx, m)
		if err == nil {
			log.Info("index ensured",
				zap.String("created_name", created),
				zap.String("took", time.Since(start).String()))
			continue
		}
		if isOptionsConflictErr(err) {
			// Rare: the index appeared between listing and creating.
			if ex, ok := listExisting(ctx, coll)[d.sig]; ok {
				if d.sameOptions(ex) {
					log.Info("reusing existing index (post-conflict)", zap.String("took", time.Since(start).String()))
					continue
				}
				if rerr := recreate(ctx, coll, ex.Name, m, d); rerr != nil {
					errs = append(errs, rerr.Error())
					continue
				}
				log.Info("index dropped and recreated (post-conflict)", zap.String("took", time.Since(start).String()))
				continue
			}
		}
		log.Warn("index ensure failed", zap.String("took", time.Since(start).String()), zap.Error(err))
		errs = append(errs, createFailure(coll, d, err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// 1) Email is the login identifier; stored lower-cased.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},

		// 2) Management list: optional status filter, newest first.
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "createdAt", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().SetName("idx_users_status_createdat_id"),
		},

		// 3) Growth counts and the recent-accounts list.
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_users_createdat"),
		},

		// 4) Admin name search on the folded name.
		{
			Keys:    bson.D{{Key: "nameCi", Value: 1}},
			Options: options.Index().SetName("idx_users_nameci"),
		},
	})
}

func ensureAdmins(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("admins")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_admins_email"),
		},
	})
}

func ensureSubmissions(ctx context.Context, db *mongo.Database, name string) error {
	c := db.Collection(name)
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Monthly reports and dashboard windows.
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("idx_" + name + "_createdat"),
		},
		// Per-account counts, the latest-submission lookup and weekly insights.
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_" + name + "_userid_createdat"),
		},
	})
}

func ensureOTPCodes(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("otp_codes")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One live code per email and purpose.
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "purpose", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_otp_email_purpose"),
		},
		// Expired codes are removed by the server.
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_otp_expiresat"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("audit_events")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_account_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_category_type_timestamp"),
		},
	})
}
