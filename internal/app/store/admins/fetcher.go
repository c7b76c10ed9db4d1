package adminstore

import (
	"context"
	"errors"

	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/crisisline/crisishub/internal/app/system/timeouts"
	"github.com/crisisline/crisishub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.Fetcher for admin tokens.
type Fetcher struct {
	admins *mongo.Collection
}

func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{admins: db.Collection("admins")}
}

func (f *Fetcher) FetchPrincipal(ctx context.Context, adminID string) (*auth.Principal, error) {
	oid, err := primitive.ObjectIDFromHex(adminID)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var a models.Admin
	proj := options.FindOne().SetProjection(bson.M{"_id": 1, "name": 1, "email": 1})
	if err := f.admins.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &auth.Principal{ID: a.ID.Hex(), Kind: auth.KindAdmin, Name: a.Name, Email: a.Email}, nil
}
