package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/repositories"
	"github.com/pulsegram/backend/pkg/apperrors"
)

type counterPostRepo struct {
	repositories.PostRepository

	post     *models.Post
	counters map[string]float64
}

func newCounterPostRepo(authorID uint) *counterPostRepo {
	return &counterPostRepo{
		post: &models.Post{
			ID:        primitive.NewObjectID(),
			AuthorID:  authorID,
			Status:    models.StatusReady,
			CreatedAt: time.Now(),
		},
		counters: map[string]float64{},
	}
}

func (f *counterPostRepo) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	if id != f.post.ID.Hex() {
		return nil, apperrors.NotFound("post not found")
	}
	return f.post, nil
}

func (f *counterPostRepo) IncrementCounter(ctx context.Context, postID, field string, delta float64) (float64, error) {
	if !models.IsCounterField(field) {
		return 0, apperrors.Validation("unknown counter field")
	}
	f.counters[field] += delta
	return f.counters[field], nil
}

type memLikeRepo struct {
	repositories.LikeRepository

	likes map[string]bool
}

func (f *memLikeRepo) CreateLike(like *models.Like) error {
	f.likes[like.PostID] = true
	return nil
}

func (f *memLikeRepo) DeleteLike(postID string, userID uint) error {
	delete(f.likes, postID)
	return nil
}

func (f *memLikeRepo) HasUserLikedPost(postID string, userID uint) (bool, error) {
	return f.likes[postID], nil
}

type memSavedRepo struct {
	repositories.SavedPostRepository

	saved map[string]bool
}

func (f *memSavedRepo) SavePost(sp *models.SavedPost) error {
	f.saved[sp.PostID] = true
	return nil
}

func (f *memSavedRepo) UnsavePost(userID uint, postID string) error {
	delete(f.saved, postID)
	return nil
}

func (f *memSavedRepo) IsPostSaved(userID uint, postID string) (bool, error) {
	return f.saved[postID], nil
}

type memCommentRepo struct {
	repositories.CommentRepository

	created []*models.Comment
}

func (f *memCommentRepo) CreateComment(c *models.Comment) error {
	c.ID = uint(len(f.created) + 1)
	f.created = append(f.created, c)
	return nil
}

func (f *memCommentRepo) GetCommentByID(commentID uint) (*models.Comment, error) {
	for _, c := range f.created {
		if c.ID == commentID {
			return c, nil
		}
	}
	return nil, apperrors.NotFound("comment not found")
}

func (f *memCommentRepo) DeleteComment(commentID, userID uint) error {
	for i, c := range f.created {
		if c.ID == commentID && c.UserID == userID {
			f.created = append(f.created[:i], f.created[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("comment not found")
}

type recordingEventRepo struct {
	repositories.EventRepository

	events []string
	meta   []bson.M
	err    error
}

func (f *recordingEventRepo) AppendEvent(ctx context.Context, userID uint, postID, eventType string, metadata bson.M) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, eventType)
	f.meta = append(f.meta, metadata)
	return nil
}

type recordingDispatcher struct {
	enqueued []models.Notification
}

func (f *recordingDispatcher) Enqueue(ctx context.Context, n models.Notification) error {
	f.enqueued = append(f.enqueued, n)
	return nil
}

func (f *recordingDispatcher) EnqueueBatch(ctx context.Context, ns []models.Notification) (int, error) {
	f.enqueued = append(f.enqueued, ns...)
	return len(ns), nil
}

type engagementFixture struct {
	svc         *EngagementService
	postRepo    *counterPostRepo
	commentRepo *memCommentRepo
	eventRepo   *recordingEventRepo
	dispatcher  *recordingDispatcher
	postID      string
}

func newEngagementFixture(authorID uint) *engagementFixture {
	postRepo := newCounterPostRepo(authorID)
	commentRepo := &memCommentRepo{}
	eventRepo := &recordingEventRepo{}
	dispatcher := &recordingDispatcher{}
	svc := NewEngagementService(
		postRepo,
		&memLikeRepo{likes: map[string]bool{}},
		&memSavedRepo{saved: map[string]bool{}},
		commentRepo,
		eventRepo,
		dispatcher,
	)
	return &engagementFixture{
		svc:         svc,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		eventRepo:   eventRepo,
		dispatcher:  dispatcher,
		postID:      postRepo.post.ID.Hex(),
	}
}

func TestToggleLikeTwiceNetsToZero(t *testing.T) {
	fx := newEngagementFixture(7)
	ctx := context.Background()

	liked, count, err := fx.svc.ToggleLike(ctx, 42, fx.postID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), count)

	liked, count, err = fx.svc.ToggleLike(ctx, 42, fx.postID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(0), count)

	assert.Equal(t, []string{models.EventLike, models.EventUnlike}, fx.eventRepo.events)
}

func TestToggleLikeNotifiesAuthorOnce(t *testing.T) {
	fx := newEngagementFixture(7)
	ctx := context.Background()

	_, _, err := fx.svc.ToggleLike(ctx, 42, fx.postID)
	require.NoError(t, err)

	require.Len(t, fx.dispatcher.enqueued, 1)
	n := fx.dispatcher.enqueued[0]
	assert.Equal(t, models.NotificationLike, n.Type)
	assert.Equal(t, uint(7), n.RecipientID)

	// Unlike does not notify.
	_, _, err = fx.svc.ToggleLike(ctx, 42, fx.postID)
	require.NoError(t, err)
	assert.Len(t, fx.dispatcher.enqueued, 1)
}

func TestToggleLikeOwnPostSkipsNotification(t *testing.T) {
	fx := newEngagementFixture(42)

	_, _, err := fx.svc.ToggleLike(context.Background(), 42, fx.postID)
	require.NoError(t, err)
	assert.Empty(t, fx.dispatcher.enqueued)
}

func TestToggleLikeUnknownPost(t *testing.T) {
	fx := newEngagementFixture(7)

	_, _, err := fx.svc.ToggleLike(context.Background(), 42, primitive.NewObjectID().Hex())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestToggleBookmarkTwiceNetsToZero(t *testing.T) {
	fx := newEngagementFixture(7)
	ctx := context.Background()

	saved, count, err := fx.svc.ToggleBookmark(ctx, 42, fx.postID)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, int64(1), count)

	saved, count, err = fx.svc.ToggleBookmark(ctx, 42, fx.postID)
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, int64(0), count)
}

func TestRecordShareBumpsCounter(t *testing.T) {
	fx := newEngagementFixture(7)

	count, err := fx.svc.RecordShare(context.Background(), 42, fx.postID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, []string{models.EventShare}, fx.eventRepo.events)
}

func TestRecordWatchUpdatesAggregatesAndMilestones(t *testing.T) {
	fx := newEngagementFixture(7)

	views, err := fx.svc.RecordWatch(context.Background(), 42, fx.postID, 12.5, 80)
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)

	assert.Equal(t, 12.5, fx.postRepo.counters[models.CounterWatchTime])
	assert.InDelta(t, 0.8, fx.postRepo.counters[models.CounterCompletion], 1e-9)

	// 80% completion crosses the 25/50/75 thresholds but not 100.
	assert.Equal(t, []string{
		models.EventView,
		models.EventVideo25,
		models.EventVideo50,
		models.EventVideo75,
	}, fx.eventRepo.events)
}

func TestRecordWatchFullCompletion(t *testing.T) {
	fx := newEngagementFixture(7)

	_, err := fx.svc.RecordWatch(context.Background(), 42, fx.postID, 30, 100)
	require.NoError(t, err)
	assert.Contains(t, fx.eventRepo.events, models.EventVideoComplete)
}

func TestRecordWatchRejectsBadInput(t *testing.T) {
	fx := newEngagementFixture(7)
	ctx := context.Background()

	_, err := fx.svc.RecordWatch(ctx, 42, fx.postID, -1, 50)
	assert.True(t, apperrors.IsValidation(err))

	_, err = fx.svc.RecordWatch(ctx, 42, fx.postID, 10, 101)
	assert.True(t, apperrors.IsValidation(err))

	assert.Empty(t, fx.postRepo.counters)
}

func TestEventLogFailureDoesNotFailRequest(t *testing.T) {
	fx := newEngagementFixture(7)
	fx.eventRepo.err = assert.AnError

	count, err := fx.svc.RecordShare(context.Background(), 42, fx.postID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAddCommentBumpsCounterAndNotifies(t *testing.T) {
	fx := newEngagementFixture(7)

	comment, count, err := fx.svc.AddComment(context.Background(), 42, fx.postID, "nice one")
	require.NoError(t, err)
	require.NotNil(t, comment)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, "nice one", comment.Content)

	require.Len(t, fx.dispatcher.enqueued, 1)
	assert.Equal(t, models.NotificationComment, fx.dispatcher.enqueued[0].Type)
}

func TestDeleteCommentReversesCounter(t *testing.T) {
	fx := newEngagementFixture(7)
	ctx := context.Background()

	comment, count, err := fx.svc.AddComment(ctx, 42, fx.postID, "hot take")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = fx.svc.DeleteComment(ctx, 42, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	assert.Empty(t, fx.commentRepo.created)
	assert.Zero(t, fx.postRepo.counters[models.CounterComments])
	assert.Equal(t, []string{models.EventComment, models.EventUncomment}, fx.eventRepo.events)
}

func TestDeleteCommentAuthorOnly(t *testing.T) {
	fx := newEngagementFixture(7)
	ctx := context.Background()

	comment, _, err := fx.svc.AddComment(ctx, 42, fx.postID, "mine")
	require.NoError(t, err)

	_, err = fx.svc.DeleteComment(ctx, 99, comment.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))

	// The comment and its counter contribution survive.
	assert.Len(t, fx.commentRepo.created, 1)
	assert.Equal(t, 1.0, fx.postRepo.counters[models.CounterComments])
}

func TestDeleteCommentUnknown(t *testing.T) {
	fx := newEngagementFixture(7)

	_, err := fx.svc.DeleteComment(context.Background(), 42, 12345)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
