package audit

import (
	"context"
	"os"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const collectionName = "audit_entries"

// Entry is one before/after record of a mutating engine operation.
type Entry struct {
	ClubID    int64       `bson:"club_id"`
	ActorID   int64       `bson:"actor_id"`
	Action    string      `bson:"action"`
	Entity    string      `bson:"entity"`
	Before    interface{} `bson:"before,omitempty"`
	After     interface{} `bson:"after,omitempty"`
	CreatedAt time.Time   `bson:"created_at"`
	ExpiresAt time.Time   `bson:"expires_at"`
}

// Sink appends audit entries to Mongo. Entries are write-only from the
// engine's point of view; the admin console reads them elsewhere.
type Sink struct {
	col       *mongo.Collection
	retention time.Duration
}

func NewSink(db *mongo.Database) *Sink {
	retention := 365 * 24 * time.Hour
	if days, err := strconv.Atoi(os.Getenv("AUDIT_RETENTION_DAYS")); err == nil && days > 0 {
		retention = time.Duration(days) * 24 * time.Hour
	}
	return &Sink{col: db.Collection(collectionName), retention: retention}
}

func (s *Sink) Record(ctx context.Context, clubID, actorID int64, action, entity string, before, after interface{}) error {
	now := time.Now()
	_, err := s.col.InsertOne(ctx, Entry{
		ClubID:    clubID,
		ActorID:   actorID,
		Action:    action,
		Entity:    entity,
		Before:    before,
		After:     after,
		CreatedAt: now,
		ExpiresAt: now.Add(s.retention),
	})
	return err
}
