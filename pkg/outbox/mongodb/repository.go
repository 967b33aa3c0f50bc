// Package mongodb stores outbox messages in the zone database.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/location-manager/zone-service/pkg/outbox"
)

const (
	CollectionName = "outbox_events"

	// published messages are dropped by a TTL index after this long
	publishedRetention = 7 * 24 * time.Hour
)

// OutboxRepository implements outbox.Repository
type OutboxRepository struct {
	collection *mongo.Collection
}

func NewOutboxRepository(db *mongo.Database) *OutboxRepository {
	return &OutboxRepository{collection: db.Collection(CollectionName)}
}

// Append inserts msg; a message with the same event id already present is a no-op
func (r *OutboxRepository) Append(ctx context.Context, msg *outbox.Message) error {
	_, err := r.collection.InsertOne(ctx, msg)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("append outbox message %s: %w", msg.ID, err)
	}
	return nil
}

func (r *OutboxRepository) Due(ctx context.Context, now time.Time, limit int) ([]*outbox.Message, error) {
	filter := bson.M{
		"publishedAt":   bson.M{"$exists": false},
		"abandoned":     bson.M{"$ne": true},
		"nextAttemptAt": bson.M{"$lte": now},
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("query due outbox messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := make([]*outbox.Message, 0, limit)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode outbox messages: %w", err)
	}
	return messages, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, bson.M{
		"$set":   bson.M{"publishedAt": at},
		"$unset": bson.M{"lastError": ""},
	})
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id, reason string, retryAt time.Time) error {
	set := bson.M{"lastError": reason}
	if retryAt.IsZero() {
		set["abandoned"] = true
	} else {
		set["nextAttemptAt"] = retryAt
	}
	return r.update(ctx, id, bson.M{
		"$set": set,
		"$inc": bson.M{"attempts": 1},
	})
}

func (r *OutboxRepository) update(ctx context.Context, id string, update bson.M) error {
	result, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("update outbox message %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("outbox message %s not found", id)
	}
	return nil
}

// EnsureIndexes creates the polling index and the retention TTL
func (r *OutboxRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "nextAttemptAt", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("due"),
		},
		{
			Keys:    bson.D{{Key: "publishedAt", Value: 1}},
			Options: options.Index().SetName("published_ttl").SetExpireAfterSeconds(int32(publishedRetention.Seconds())),
		},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create outbox indexes: %w", err)
	}
	return nil
}
