package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/pkg/apperrors"
)

// FeedQuery describes one feed page query against the post store. Only
// ready, non-deleted posts are ever returned.
type FeedQuery struct {
	AuthorIDs        []uint // restrict to these authors; nil means any
	ExcludeAuthorIDs []uint // drop these authors inside the query
	Visibilities     []string
	ReelsOnly        bool
	Skip             int64
	Limit            int64
}

// ScoreUpdate carries one recomputed engagement score for a bulk write.
type ScoreUpdate struct {
	PostID primitive.ObjectID
	Score  float64
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	// GetPostsByAuthor lists an author's posts, newest first. A nil
	// visibilities slice is the owner's own view and returns every
	// lifecycle state; otherwise only ready posts in the given
	// visibilities are returned.
	GetPostsByAuthor(ctx context.Context, authorID uint, visibilities []string, skip, limit int64) ([]models.Post, error)
	SoftDeletePost(ctx context.Context, id string) error

	// IncrementCounter atomically applies delta to one counter field and
	// returns the updated value. The mutation is a single store-side $inc,
	// never a read-then-write.
	IncrementCounter(ctx context.Context, postID, field string, delta float64) (float64, error)

	QueryFeed(ctx context.Context, q FeedQuery) ([]models.Post, error)

	// FindDueScheduled returns scheduled posts whose publish time has passed.
	FindDueScheduled(ctx context.Context, now time.Time) ([]models.Post, error)
	// MarkPublished transitions one post from scheduled to ready. Returns
	// false when the post was already published by a concurrent tick.
	MarkPublished(ctx context.Context, id primitive.ObjectID, now time.Time) (bool, error)

	// ForEachScorable streams ready, non-deleted posts created since the
	// given time into fn; a per-post fn error stops the iteration.
	ForEachScorable(ctx context.Context, since time.Time, fn func(*models.Post) error) error
	BulkUpdateScores(ctx context.Context, updates []ScoreUpdate) error

	// FindRecentReady returns ready, non-deleted posts created since the
	// given time, for trending aggregation.
	FindRecentReady(ctx context.Context, since time.Time) ([]models.Post, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return apperrors.Unavailable(err, "failed to create post")
	}
	return nil
}

// GetPostByID retrieves a post by ID from MongoDB. Soft-deleted posts are
// reported as not found.
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("invalid post ID format: %s", id))
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID, "is_deleted": false}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("post not found")
		}
		return nil, apperrors.Unavailable(err, "failed to load post")
	}
	return &post, nil
}

// GetPostsByAuthor retrieves posts by a specific author, newest first.
// Non-owner views see only ready posts in the allowed visibilities.
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, authorID uint, visibilities []string, skip, limit int64) ([]models.Post, error) {
	filter := bson.M{"author_id": authorID, "is_deleted": false}
	if visibilities != nil {
		filter["status"] = models.StatusReady
		filter["visibility"] = bson.M{"$in": visibilities}
	}
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to query posts")
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, apperrors.Unavailable(err, "failed to decode posts")
	}
	return posts, nil
}

// SoftDeletePost flags a post deleted; it disappears from all feed queries.
func (r *MongoPostRepository) SoftDeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.Validation(fmt.Sprintf("invalid post ID format: %s", id))
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "is_deleted": false},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now()}},
	)
	if err != nil {
		return apperrors.Unavailable(err, "failed to delete post")
	}
	if res.ModifiedCount == 0 {
		return apperrors.NotFound("post not found")
	}
	return nil
}

// IncrementCounter applies a single atomic $inc to one counter field and
// returns the updated value.
func (r *MongoPostRepository) IncrementCounter(ctx context.Context, postID, field string, delta float64) (float64, error) {
	if !models.IsCounterField(field) {
		return 0, apperrors.Validation(fmt.Sprintf("unknown counter field: %s", field))
	}
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return 0, apperrors.Validation(fmt.Sprintf("invalid post ID format: %s", postID))
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"counters": 1})

	var updated models.Post
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "is_deleted": false},
		bson.M{"$inc": bson.M{"counters." + field: delta}},
		opts,
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, apperrors.NotFound("post not found")
		}
		return 0, apperrors.Unavailable(err, "failed to increment counter")
	}

	switch field {
	case models.CounterLikes:
		return float64(updated.Counters.LikeCount), nil
	case models.CounterComments:
		return float64(updated.Counters.CommentCount), nil
	case models.CounterShares:
		return float64(updated.Counters.ShareCount), nil
	case models.CounterSaves:
		return float64(updated.Counters.SaveCount), nil
	case models.CounterViews:
		return float64(updated.Counters.ViewCount), nil
	case models.CounterWatchTime:
		return updated.Counters.WatchTimeSum, nil
	default:
		return updated.Counters.CompletionSum, nil
	}
}

// QueryFeed runs one feed page query: ready, non-deleted, sorted by
// engagement score descending with created_at as tie-break.
func (r *MongoPostRepository) QueryFeed(ctx context.Context, q FeedQuery) ([]models.Post, error) {
	filter := bson.M{
		"status":     models.StatusReady,
		"is_deleted": false,
	}
	if len(q.Visibilities) > 0 {
		filter["visibility"] = bson.M{"$in": q.Visibilities}
	}
	if q.AuthorIDs != nil {
		filter["author_id"] = bson.M{"$in": q.AuthorIDs}
	}
	if len(q.ExcludeAuthorIDs) > 0 {
		if in, ok := filter["author_id"]; ok {
			filter["$and"] = bson.A{
				bson.M{"author_id": in},
				bson.M{"author_id": bson.M{"$nin": q.ExcludeAuthorIDs}},
			}
			delete(filter, "author_id")
		} else {
			filter["author_id"] = bson.M{"$nin": q.ExcludeAuthorIDs}
		}
	}
	if q.ReelsOnly {
		filter["is_reel"] = true
	}

	findOptions := options.Find().
		SetSkip(q.Skip).
		SetLimit(q.Limit).
		SetSort(bson.D{
			{Key: "engagement_score", Value: -1},
			{Key: "created_at", Value: -1},
		})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to query feed")
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, apperrors.Unavailable(err, "failed to decode feed posts")
	}
	return posts, nil
}

// FindDueScheduled returns scheduled posts whose scheduled_for has passed.
func (r *MongoPostRepository) FindDueScheduled(ctx context.Context, now time.Time) ([]models.Post, error) {
	filter := bson.M{
		"status":        models.StatusScheduled,
		"is_deleted":    false,
		"scheduled_for": bson.M{"$lte": now},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to query due scheduled posts")
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, apperrors.Unavailable(err, "failed to decode scheduled posts")
	}
	return posts, nil
}

// MarkPublished transitions scheduled -> ready. The status filter makes the
// transition idempotent when two ticks race on the same post.
func (r *MongoPostRepository) MarkPublished(ctx context.Context, id primitive.ObjectID, now time.Time) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.StatusScheduled},
		bson.M{"$set": bson.M{"status": models.StatusReady, "updated_at": now}},
	)
	if err != nil {
		return false, apperrors.Unavailable(err, "failed to publish scheduled post")
	}
	return res.ModifiedCount == 1, nil
}

// ForEachScorable streams ready posts created since the cutoff through fn.
func (r *MongoPostRepository) ForEachScorable(ctx context.Context, since time.Time, fn func(*models.Post) error) error {
	filter := bson.M{
		"status":     models.StatusReady,
		"is_deleted": false,
		"created_at": bson.M{"$gte": since},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return apperrors.Unavailable(err, "failed to query scorable posts")
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var post models.Post
		if err := cursor.Decode(&post); err != nil {
			return apperrors.Unavailable(err, "failed to decode scorable post")
		}
		if err := fn(&post); err != nil {
			return err
		}
	}
	if err := cursor.Err(); err != nil {
		return apperrors.Unavailable(err, "scorable post cursor failed")
	}
	return nil
}

// BulkUpdateScores writes recomputed engagement scores in one unordered
// bulk operation.
func (r *MongoPostRepository) BulkUpdateScores(ctx context.Context, updates []ScoreUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, len(updates))
	now := time.Now()
	for i, u := range updates {
		writes[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": u.PostID}).
			SetUpdate(bson.M{"$set": bson.M{"engagement_score": u.Score, "updated_at": now}})
	}

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := r.collection.BulkWrite(ctx, writes, opts); err != nil {
		return apperrors.Unavailable(err, "failed to bulk update engagement scores")
	}
	return nil
}

// FindRecentReady returns ready posts created since the cutoff, hashtags and
// counters included, for trending aggregation.
func (r *MongoPostRepository) FindRecentReady(ctx context.Context, since time.Time) ([]models.Post, error) {
	filter := bson.M{
		"status":     models.StatusReady,
		"is_deleted": false,
		"created_at": bson.M{"$gte": since},
	}
	projection := bson.M{"hashtags": 1, "counters": 1, "is_reel": 1, "created_at": 1}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(projection))
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to query recent posts")
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, apperrors.Unavailable(err, "failed to decode recent posts")
	}
	return posts, nil
}
