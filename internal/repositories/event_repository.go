package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/pkg/apperrors"
)

// DailyViewCount is one day's view total from the event log.
type DailyViewCount struct {
	Date  string `bson:"_id"` // YYYY-MM-DD
	Views int64  `bson:"views"`
}

// EventRepository defines the interface for the append-only engagement
// event log. Events are inserted once and never mutated or deleted.
type EventRepository interface {
	AppendEvent(ctx context.Context, userID uint, postID, eventType string, metadata bson.M) error
	// CountByType aggregates the per-event-type totals for one post.
	CountByType(ctx context.Context, postID string) (map[string]int64, error)
	// DailyViews aggregates view events per day since the cutoff.
	DailyViews(ctx context.Context, postID string, since time.Time) ([]DailyViewCount, error)
}

// MongoEventRepository implements EventRepository for MongoDB
type MongoEventRepository struct {
	collection *mongo.Collection
}

// NewMongoEventRepository creates a new MongoEventRepository
func NewMongoEventRepository(db *mongo.Database) *MongoEventRepository {
	return &MongoEventRepository{collection: db.Collection("engagement_events")}
}

// AppendEvent records one engagement fact. A pure insert; the only failure
// mode is the store being down.
func (r *MongoEventRepository) AppendEvent(ctx context.Context, userID uint, postID, eventType string, metadata bson.M) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return apperrors.Validation(fmt.Sprintf("invalid post ID format: %s", postID))
	}

	event := models.EngagementEvent{
		UserID:    userID,
		PostID:    objID,
		EventType: eventType,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return apperrors.Unavailable(err, "failed to append engagement event")
	}
	return nil
}

// CountByType groups a post's events by type.
func (r *MongoEventRepository) CountByType(ctx context.Context, postID string) (map[string]int64, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("invalid post ID format: %s", postID))
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"post_id": objID}}},
		{{Key: "$group", Value: bson.M{"_id": "$event_type", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to aggregate event breakdown")
	}
	defer cursor.Close(ctx)

	var rows []struct {
		EventType string `bson:"_id"`
		Count     int64  `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, apperrors.Unavailable(err, "failed to decode event breakdown")
	}

	breakdown := make(map[string]int64, len(rows))
	for _, row := range rows {
		breakdown[row.EventType] = row.Count
	}
	return breakdown, nil
}

// DailyViews buckets a post's view events per calendar day (UTC).
func (r *MongoEventRepository) DailyViews(ctx context.Context, postID string, since time.Time) ([]DailyViewCount, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("invalid post ID format: %s", postID))
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"post_id":    objID,
			"event_type": models.EventView,
			"created_at": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$created_at"}},
			"views": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to aggregate daily views")
	}
	defer cursor.Close(ctx)

	var rows []DailyViewCount
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, apperrors.Unavailable(err, "failed to decode daily views")
	}
	return rows, nil
}
