// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/crisisline/crisishub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the app's collections when missing and attaches a
// JSON-Schema validator to each account and submission collection.
// Deployments that reject collMod (some DocumentDB versions) are logged and
// skipped; any other failure is collected and returned.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
			return
		}
		logger.Debug("validator ensured", zap.String("collection", coll))
	}

	// Accounts
	ensure("users", usersSchema())
	ensure("admins", adminsSchema())

	// Submissions
	ensure(models.CollCrisisCalls, crisisCallsSchema())
	ensure(models.CollMobileCrises, mobileCrisesSchema())
	ensure(models.CollStabilizations, stabilizationsSchema())

	// Written only by the app itself; no validator.
	ensure("otp_codes", nil)
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection creates name unless it already exists. A concurrent
// create from another instance counts as success.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) error {
	if exists, err := collectionExists(ctx, db, name); err == nil && exists {
		return nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	logger.Info("created collection", zap.String("collection", name))
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	return db.RunCommand(ctx, cmd).Err()
}

/* ------------------------- error helpers ------------------------- */

func commandError(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandError(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandError(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandError(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	count    = bson.M{"bsonType": "number", "minimum": 0}
	date     = bson.M{"bsonType": "date"}
)

func enumOf[T ~string](vals []T) bson.M {
	a := make(bson.A, 0, len(vals))
	for _, v := range vals {
		a = append(a, string(v))
	}
	return bson.M{"bsonType": "string", "enum": a}
}

func object(required bson.A, props bson.M) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   required,
			"properties": props,
		},
	}
}

// Pending signups carry only email and status until the code is verified.
func usersSchema() bson.M {
	return object(bson.A{"email", "status"}, bson.M{
		"email":         nonBlank,
		"name":          bson.M{"bsonType": "string"},
		"password":      bson.M{"bsonType": "string"},
		"status":        bson.M{"enum": bson.A{models.StatusActive, models.StatusInactive}},
		"isOtpVerified": bson.M{"bsonType": "bool"},
		"profileImage":  bson.M{"bsonType": "string"},
		"createdAt":     date,
		"updatedAt":     date,
	})
}

func adminsSchema() bson.M {
	return object(bson.A{"email", "name"}, bson.M{
		"email":     nonBlank,
		"name":      nonBlank,
		"password":  bson.M{"bsonType": "string"},
		"createdAt": date,
		"updatedAt": date,
	})
}

func crisisCallsSchema() bson.M {
	return object(bson.A{"userId", "callByCountry", "crisisType", "createdAt"}, bson.M{
		"userId":        nonBlank,
		"callByCountry": enumOf(models.Counties),
		"crisisType":    enumOf(models.CrisisTypes),
		"description":   bson.M{"bsonType": "string", "maxLength": 2000},
		"createdAt":     date,
	})
}

func mobileCrisesSchema() bson.M {
	return object(bson.A{"userId", "dispatchCounty", "crisisType", "outcome", "createdAt"}, bson.M{
		"userId":                nonBlank,
		"dispatchCounty":        enumOf(models.Counties),
		"crisisType":            enumOf(models.CrisisTypes),
		"outcome":               nonBlank,
		"totalDispatches":       count,
		"totalResponseTime":     count,
		"meanResponseTime":      count,
		"totalOnSceneTime":      count,
		"meanOnSceneTime":       count,
		"referralsGiven":        count,
		"naloxoneDispensations": count,
		"followUpContacts":      count,
		"individualsServed":     count,
		"createdAt":             date,
	})
}

func stabilizationsSchema() bson.M {
	return object(bson.A{"userId", "clientCountyOfResidence", "crisisTypes", "outcome", "createdAt"}, bson.M{
		"userId":                  nonBlank,
		"clientCountyOfResidence": enumOf(models.Counties),
		"crisisTypes":             enumOf(models.CrisisTypes),
		"outcome":                 nonBlank,
		"numberOfVisits":          count,
		"totalStabilizationTime":  count,
		"meanStabilizationTime":   count,
		"referralsGiven":          count,
		"naloxoneDispensations":   count,
		"followUpContacts":        count,
		"individualsServed":       count,
		"createdAt":               date,
	})
}
