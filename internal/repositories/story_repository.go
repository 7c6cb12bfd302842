package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/pkg/apperrors"
)

// StoryRepository manages the ephemeral story subsystem. Feeds never read
// stories; only the periodic cleanup job touches this from the core.
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetActiveByUser(ctx context.Context, userID uint) ([]models.Story, error)
	// DeleteExpired removes expired story documents and their relational
	// seen/reaction rows. Returns the number of stories removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// MongoStoryRepository stores story documents in MongoDB with their
// seen/reaction rows in PostgreSQL.
type MongoStoryRepository struct {
	collection *mongo.Collection
	pg         *gorm.DB
}

// NewStoryRepository creates a new MongoStoryRepository
func NewStoryRepository(db *mongo.Database, pg *gorm.DB) *MongoStoryRepository {
	return &MongoStoryRepository{collection: db.Collection("stories"), pg: pg}
}

func (r *MongoStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	story.CreatedAt = time.Now()
	if story.ExpiresAt.IsZero() {
		story.ExpiresAt = story.CreatedAt.Add(24 * time.Hour)
	}
	if _, err := r.collection.InsertOne(ctx, story); err != nil {
		return apperrors.Unavailable(err, "failed to create story")
	}
	return nil
}

func (r *MongoStoryRepository) GetActiveByUser(ctx context.Context, userID uint) ([]models.Story, error) {
	filter := bson.M{"user_id": userID, "expires_at": bson.M{"$gt": time.Now()}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to query stories")
	}
	defer cursor.Close(ctx)

	var stories []models.Story
	if err = cursor.All(ctx, &stories); err != nil {
		return nil, apperrors.Unavailable(err, "failed to decode stories")
	}
	return stories, nil
}

// DeleteExpired removes expired stories and cleans up their seen/reaction
// rows. The relational cleanup is best-effort; orphaned rows are retried on
// the next run since the story IDs stay gone.
func (r *MongoStoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{"expires_at": bson.M{"$lte": now}}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return 0, apperrors.Unavailable(err, "failed to query expired stories")
	}
	var expired []models.Story
	if err = cursor.All(ctx, &expired); err != nil {
		return 0, apperrors.Unavailable(err, "failed to decode expired stories")
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]string, len(expired))
	for i, s := range expired {
		ids[i] = s.ID.Hex()
	}

	res, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, apperrors.Unavailable(err, "failed to delete expired stories")
	}

	r.pg.Where("story_id IN ?", ids).Delete(&models.StorySeen{})
	r.pg.Where("story_id IN ?", ids).Delete(&models.StoryReaction{})

	return res.DeletedCount, nil
}
