// internal/app/store/otp/store.go
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/crisisline/crisishub/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

const (
	// CodeLength is the length of a one-time code (6 digits).
	CodeLength = 6
	// DefaultExpiry is how long a code is valid.
	DefaultExpiry = 5 * time.Minute
	// BcryptCost for hashing codes.
	BcryptCost = 10
	// MaxVerifyAttempts is the maximum number of verification attempts per code.
	MaxVerifyAttempts = 5
	// MaxResends is the maximum number of resends within ResendWindow.
	MaxResends = 3
	// ResendWindow is the time window for tracking resend rate limiting.
	ResendWindow = 10 * time.Minute
)

// Purpose separates codes issued for different flows to the same address.
type Purpose string

const (
	PurposeSignup        Purpose = "signup"
	PurposePasswordReset Purpose = "password_reset"
)

var (
	// ErrNotFound is returned when no live code exists for the email and purpose.
	ErrNotFound = errors.New("code not found or expired")
	// ErrInvalidCode is returned when the code doesn't match.
	ErrInvalidCode = errors.New("invalid code")
	// ErrTooManyAttempts is returned when the attempt limit for a code is reached.
	ErrTooManyAttempts = errors.New("too many verification attempts")
	// ErrTooManyResends is returned when too many resend requests have been made.
	ErrTooManyResends = errors.New("too many resend requests")
)

// Code is a pending one-time code. Only the bcrypt hash is stored.
type Code struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Email       string             `bson:"email"`
	Purpose     Purpose            `bson:"purpose"`
	CodeHash    string             `bson:"codeHash"`
	ExpiresAt   time.Time          `bson:"expiresAt"` // TTL index field
	CreatedAt   time.Time          `bson:"createdAt"`
	Attempts    int                `bson:"attempts"`
	ResendCount int                `bson:"resendCount"`
	WindowStart time.Time          `bson:"windowStart"`
}

// Store manages one-time codes.
type Store struct {
	c      *mongo.Collection
	expiry time.Duration
	now    func() time.Time
}

// New creates a Store with the specified expiry.
// If expiry is 0 or negative, DefaultExpiry is used.
func New(db *mongo.Database, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{
		c:      db.Collection("otp_codes"),
		expiry: expiry,
		now:    time.Now,
	}
}

// Expiry returns how long issued codes stay valid.
func (s *Store) Expiry() time.Duration {
	return s.expiry
}

func (s *Store) filter(email string, purpose Purpose) bson.M {
	return bson.M{"email": normalize.Email(email), "purpose": purpose}
}

// Issue generates a new code for email and purpose, replacing any previous
// one, and returns the plain code to send. If isResend is true the request
// counts against the resend limit.
func (s *Store) Issue(ctx context.Context, email string, purpose Purpose, isResend bool) (string, error) {
	now := s.now().UTC()

	var existing Code
	err := s.c.FindOne(ctx, s.filter(email, purpose)).Decode(&existing)
	found := err == nil
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return "", err
	}

	resendCount := 0
	windowStart := now
	if found && now.Before(existing.WindowStart.Add(ResendWindow)) {
		if isResend && existing.ResendCount >= MaxResends {
			return "", ErrTooManyResends
		}
		windowStart = existing.WindowStart
		resendCount = existing.ResendCount
		if isResend {
			resendCount++
		}
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}

	replacement := Code{
		ID:          primitive.NewObjectID(),
		Email:       normalize.Email(email),
		Purpose:     purpose,
		CodeHash:    string(hash),
		ExpiresAt:   now.Add(s.expiry),
		CreatedAt:   now,
		ResendCount: resendCount,
		WindowStart: windowStart,
	}
	if found {
		replacement.ID = existing.ID
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.c.ReplaceOne(ctx, s.filter(email, purpose), replacement, opts); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}
	return code, nil
}

// Verify checks code against the live code for email and purpose. A
// matching code is consumed. Every call counts as an attempt.
func (s *Store) Verify(ctx context.Context, email string, purpose Purpose, code string) error {
	f := s.filter(email, purpose)
	f["expiresAt"] = bson.M{"$gt": s.now().UTC()}

	var c Code
	if err := s.c.FindOne(ctx, f).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}

	if c.Attempts >= MaxVerifyAttempts {
		return ErrTooManyAttempts
	}

	// Count the attempt before comparing so parallel guesses share the limit.
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$inc": bson.M{"attempts": 1}}); err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(c.CodeHash), []byte(code)); err != nil {
		return ErrInvalidCode
	}

	_, err := s.c.DeleteOne(ctx, bson.M{"_id": c.ID})
	return err
}

// Delete removes any code for email and purpose.
func (s *Store) Delete(ctx context.Context, email string, purpose Purpose) error {
	_, err := s.c.DeleteMany(ctx, s.filter(email, purpose))
	return err
}

// generateCode returns a uniformly random 6-digit code (100000..999999).
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
