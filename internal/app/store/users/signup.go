package userstore

import (
	"context"
	"time"

	"github.com/crisisline/crisishub/internal/app/system/normalize"
	"github.com/crisisline/crisishub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Self-service signup runs in three steps:
//
//  1. UpsertPending creates (or resets) an inactive account holding only
//     the email, ready for OTP verification.
//  2. MarkOtpVerified records that the emailed code was confirmed.
//  3. CompleteSignup sets name and password and activates the account.
//
// An account that already has a password never goes back to pending.

// UpsertPending creates an inactive, unverified account for email, or
// resets the verification flag of an existing pending one.
// Returns ErrAlreadyRegistered if the account already completed signup.
func (s *Store) UpsertPending(ctx context.Context, email string) (*models.User, error) {
	email = normalize.Email(email)

	existing, err := s.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.HasPassword():
		return nil, ErrAlreadyRegistered
	case err != nil && err != ErrNotFound:
		return nil, err
	}

	now := s.now().UTC()
	update := bson.M{
		"$set": bson.M{
			"isOtpVerified": false,
			"updatedAt":     now,
		},
		"$setOnInsert": bson.M{
			"_id":          primitive.NewObjectID(),
			"email":        email,
			"status":       models.StatusInactive,
			"profileImage": models.DefaultProfileImage,
			"createdAt":    now,
		},
	}
	// Only a pending account may be reset; the password guard keeps a
	// concurrent CompleteSignup from being undone.
	filter := bson.M{"email": email, "password": bson.M{"$exists": false}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var u models.User
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}
	return &u, nil
}

// MarkOtpVerified records a confirmed OTP for a pending account.
func (s *Store) MarkOtpVerified(ctx context.Context, email string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": normalize.Email(email)},
		bson.M{"$set": bson.M{"isOtpVerified": true, "updatedAt": s.now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteSignup sets the name and password of a verified pending account
// and activates it.
func (s *Store) CompleteSignup(ctx context.Context, email, name, passwordHash string) (*models.User, error) {
	email = normalize.Email(email)
	name = normalize.Name(name)

	filter := bson.M{
		"email":         email,
		"isOtpVerified": true,
		"password":      bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{
		"name":      name,
		"nameCi":    text.Fold(name),
		"password":  passwordHash,
		"status":    models.StatusActive,
		"updatedAt": s.now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u models.User
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u)
	if err == nil {
		return &u, nil
	}
	if notFound(err) != ErrNotFound {
		return nil, err
	}

	// Explain why the guarded update matched nothing.
	existing, gerr := s.GetByEmail(ctx, email)
	switch {
	case gerr != nil:
		return nil, gerr
	case existing.HasPassword():
		return nil, ErrAlreadyRegistered
	default:
		return nil, ErrNotVerified
	}
}

// PurgePending deletes pending accounts whose last OTP request is older
// than before. Accounts with a password are never touched.
func (s *Store) PurgePending(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{
		"password":  bson.M{"$exists": false},
		"updatedAt": bson.M{"$lt": before},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
