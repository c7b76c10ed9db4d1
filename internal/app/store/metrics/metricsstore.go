package metricsstore

import (
	"context"
	"time"

	"github.com/crisisline/crisishub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// AccountCounts is the set of account totals used by dashboards.
type AccountCounts struct {
	Total    int64
	Active   int64
	Inactive int64
}

// FetchAccountCounts returns total, active and inactive user counts.
// Unlike per-widget counters these feed report percentages, so any failure
// is returned rather than reported as zero.
func FetchAccountCounts(ctx context.Context, db *mongo.Database) (AccountCounts, error) {
	var out AccountCounts
	users := db.Collection(usersCollection)

	n, err := users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return out, err
	}
	out.Total = n

	if out.Active, err = users.CountDocuments(ctx, bson.M{"status": models.StatusActive}); err != nil {
		return out, err
	}
	if out.Inactive, err = users.CountDocuments(ctx, bson.M{"status": models.StatusInactive}); err != nil {
		return out, err
	}
	return out, nil
}

// CountAccountsCreatedBefore counts users created strictly before t. It is
// the cumulative account total as of t.
func CountAccountsCreatedBefore(ctx context.Context, db *mongo.Database, t time.Time) (int64, error) {
	return db.Collection(usersCollection).CountDocuments(ctx, bson.M{"createdAt": bson.M{"$lt": t}})
}

// createdIn matches users created in [start, end).
func createdIn(start, end time.Time) bson.M {
	return bson.M{"createdAt": bson.M{"$gte": start, "$lt": end}}
}

// CountAccountsBetween counts users created in [start, end).
func CountAccountsBetween(ctx context.Context, db *mongo.Database, start, end time.Time) (int64, error) {
	return db.Collection(usersCollection).CountDocuments(ctx, createdIn(start, end))
}

// RecentAccount is the public projection of a newly created user.
type RecentAccount struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	ProfileImage string    `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RecentAccounts lists up to limit users created in [start, end), newest
// first.
func RecentAccounts(ctx context.Context, db *mongo.Database, start, end time.Time, limit int64) ([]RecentAccount, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{"name": 1, "email": 1, "status": 1, "profileImage": 1, "createdAt": 1})

	cur, err := db.Collection(usersCollection).Find(ctx, createdIn(start, end), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []RecentAccount{}
	for cur.Next(ctx) {
		var row struct {
			ID           primitive.ObjectID `bson:"_id"`
			Name         string             `bson:"name"`
			Email        string             `bson:"email"`
			Status       string             `bson:"status"`
			ProfileImage string             `bson:"profileImage"`
			CreatedAt    time.Time          `bson:"createdAt"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, RecentAccount{
			ID:           row.ID.Hex(),
			Name:         row.Name,
			Email:        row.Email,
			Status:       row.Status,
			ProfileImage: row.ProfileImage,
			CreatedAt:    row.CreatedAt,
		})
	}
	return out, cur.Err()
}
