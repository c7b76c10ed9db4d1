// Package submissionstore writes crisis call, mobile crisis and
// stabilization records. Records are immutable once written; reads go
// through the report queries.
package submissionstore

import (
	"context"
	"fmt"
	"time"

	"github.com/crisisline/crisishub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	db  *mongo.Database
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{db: db, now: time.Now}
}

// Insert stamps s with a fresh ID, the owning user and the current time,
// then writes it to the collection for its type.
func (s *Store) Insert(ctx context.Context, sub models.Submission, userID string) error {
	sub.Stamp(primitive.NewObjectID(), userID, s.now().UTC())
	if _, err := s.db.Collection(sub.Collection()).InsertOne(ctx, sub); err != nil {
		return fmt.Errorf("insert %s: %w", sub.Collection(), err)
	}
	return nil
}
