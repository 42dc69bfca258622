// Package mongostore persists session snapshots (the AgentState the
// kernel operates on, plus bookkeeping the session scheduler needs to
// resume after a restart) to MongoDB via the v2 driver.
//
// AgentState's repetition- and parse-failure-tracking fields are
// unexported and so are not persisted; a resumed session starts those
// counters fresh, which only means a brand new repetition/parse-failure
// streak has to reaccumulate post-restart rather than resuming mid-streak.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/agentkernel/agentkernel/agent/kernel"
)

// Snapshot is the durable record of one session at a point in time.
type Snapshot struct {
	SessionID    string            `bson:"session_id"`
	State        kernel.AgentState `bson:"state"`
	LogicalClock uint64            `bson:"logical_clock"`
	Step         int               `bson:"step"`
	UpdatedAt    time.Time         `bson:"updated_at"`
}

// Store persists and loads Snapshot documents.
type Store struct {
	collection *mongo.Collection
}

// Open connects to uri and returns a Store backed by database.collection.
// Store keeps no handle to the underlying *mongo.Client and has no Close
// method; the connection stays open for the life of the process.
func Open(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connecting: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongostore: pinging %s: %w", uri, err)
	}
	return &Store{collection: client.Database(database).Collection(collection)}, nil
}

// Save upserts the snapshot for snap.SessionID.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	snap.UpdatedAt = time.Now()
	filter := bson.M{"session_id": snap.SessionID}
	update := bson.M{"$set": snap}
	_, err := s.collection.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongostore: saving session %s: %w", snap.SessionID, err)
	}
	return nil
}

// Load fetches the most recent snapshot for sessionID. ok is false if no
// snapshot exists yet.
func (s *Store) Load(ctx context.Context, sessionID string) (snap Snapshot, ok bool, err error) {
	result := s.collection.FindOne(ctx, bson.M{"session_id": sessionID})
	if err := result.Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("mongostore: loading session %s: %w", sessionID, err)
	}
	if err := result.Decode(&snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("mongostore: decoding session %s: %w", sessionID, err)
	}
	return snap, true, nil
}

// Delete removes the snapshot for sessionID, if present.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return fmt.Errorf("mongostore: deleting session %s: %w", sessionID, err)
	}
	return nil
}
