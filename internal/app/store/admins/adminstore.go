// Package adminstore persists the single administrator account.
package adminstore

import (
	"context"
	"errors"
	"time"

	"github.com/crisisline/crisishub/internal/app/system/normalize"
	"github.com/crisisline/crisishub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no admin matches.
	ErrNotFound = errors.New("admin not found")
	// ErrExists is returned when creating an admin while one already exists.
	ErrExists = errors.New("admin already exists")
)

type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("admins"), now: time.Now}
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// Exists reports whether the admin account has been created.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts the admin. PasswordHash must already be set.
func (s *Store) Create(ctx context.Context, a models.Admin) (models.Admin, error) {
	exists, err := s.Exists(ctx)
	if err != nil {
		return models.Admin{}, err
	}
	if exists {
		return models.Admin{}, ErrExists
	}

	a.ID = primitive.NewObjectID()
	a.Name = normalize.Name(a.Name)
	a.Email = normalize.Email(a.Email)
	now := s.now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Admin{}, ErrExists
		}
		return models.Admin{}, err
	}
	return a, nil
}

// GetByID loads the admin by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	var a models.Admin
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// GetByEmail loads the admin by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&a); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// SetPassword replaces the admin's password hash.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"password": passwordHash, "updatedAt": s.now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile changes the admin's name and profile image. Nil fields are
// left untouched.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, profileImage *string) (*models.Admin, error) {
	set := bson.M{"updatedAt": s.now().UTC()}
	if name != nil {
		set["name"] = normalize.Name(*name)
	}
	if profileImage != nil {
		set["profileImage"] = *profileImage
	}

	var a models.Admin
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&a); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}
