package userstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/crisisline/crisishub/internal/app/system/normalize"
	"github.com/crisisline/crisishub/internal/app/system/paging"
	"github.com/crisisline/crisishub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrAlreadyRegistered is returned when signup is attempted for an account that already has a password.
	ErrAlreadyRegistered = errors.New("user already registered")
	// ErrNotVerified is returned when signup is attempted before the OTP was verified.
	ErrNotVerified = errors.New("email not verified")
	errBadStatus   = errors.New(`status must be "active"|"inactive"`)
)

type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users"), now: time.Now}
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// Create inserts a fully signed-up user, as done by an administrator.
// PasswordHash must already be set.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.Email = normalize.Email(u.Email)
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	if u.Status != models.StatusActive && u.Status != models.StatusInactive {
		return models.User{}, errBadStatus
	}
	if u.ProfileImage == "" {
		u.ProfileImage = models.DefaultProfileImage
	}
	u.IsOtpVerified = true

	now := s.now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Update holds the fields an administrator may change. Nil fields are left
// untouched.
type Update struct {
	Name         *string
	Email        *string
	PasswordHash *string
	ProfileImage *string
}

// Update applies upd to the user and returns the updated document.
// Returns ErrDuplicateEmail if the new email belongs to another user.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.User, error) {
	set := bson.M{"updatedAt": s.now().UTC()}
	if upd.Name != nil {
		name := normalize.Name(*upd.Name)
		set["name"] = name
		set["nameCi"] = text.Fold(name)
	}
	if upd.Email != nil {
		email := normalize.Email(*upd.Email)
		exists, err := s.EmailExistsForOther(ctx, email, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateEmail
		}
		set["email"] = email
	}
	if upd.PasswordHash != nil {
		set["password"] = *upd.PasswordHash
	}
	if upd.ProfileImage != nil {
		set["profileImage"] = *upd.ProfileImage
	}

	var u models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, notFound(err)
	}
	return &u, nil
}

// UpdateProfile changes the caller's own name and profile image.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, profileImage *string) (*models.User, error) {
	return s.Update(ctx, id, Update{Name: name, ProfileImage: profileImage})
}

// ToggleStatus flips the user between active and inactive in a single
// update and returns the updated document.
func (s *Store) ToggleStatus(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"status": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", models.StatusActive}},
				models.StatusInactive,
				models.StatusActive,
			}},
			"updatedAt": s.now().UTC(),
		}}},
	}

	var u models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// Delete removes a user. Returns the number of documents deleted (0 or 1).
// Submissions owned by the user are kept.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EmailExistsForOther checks if an email already exists for a user other than the given ID.
func (s *Store) EmailExistsForOther(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"email": normalize.Email(email),
		"_id":   bson.M{"$ne": excludeID},
	}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// ListFilter narrows a user listing. Empty fields do not filter.
type ListFilter struct {
	Status string // active | inactive
	Search string // substring of the folded name
}

func (f ListFilter) match() bson.M {
	m := bson.M{}
	if f.Status != "" {
		m["status"] = f.Status
	}
	if f.Search != "" {
		m["nameCi"] = primitive.Regex{Pattern: regexp.QuoteMeta(text.Fold(f.Search))}
	}
	return m
}

// List returns one page of users matching f, newest first, and the total
// number of matches.
func (s *Store) List(ctx context.Context, f ListFilter, p paging.Params) ([]models.User, int64, error) {
	filter := f.match()

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	find := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.M{"password": 0})
	p.ApplyToFind(find)

	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	users := make([]models.User, 0, p.Limit)
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
