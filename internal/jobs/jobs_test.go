package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/repositories"
	"github.com/pulsegram/backend/internal/trending"
)

// fakePostRepo embeds the interface so only the methods a job touches
// need an implementation.
type fakePostRepo struct {
	repositories.PostRepository

	scorable    []models.Post
	bulkBatches [][]repositories.ScoreUpdate
	bulkErr     error

	due          []models.Post
	dueErr       error
	publishFail  map[primitive.ObjectID]bool
	published    []primitive.ObjectID
	alreadyReady map[primitive.ObjectID]bool

	recent    []models.Post
	recentErr error
}

func (f *fakePostRepo) ForEachScorable(ctx context.Context, since time.Time, fn func(*models.Post) error) error {
	for i := range f.scorable {
		if err := fn(&f.scorable[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakePostRepo) BulkUpdateScores(ctx context.Context, updates []repositories.ScoreUpdate) error {
	batch := make([]repositories.ScoreUpdate, len(updates))
	copy(batch, updates)
	f.bulkBatches = append(f.bulkBatches, batch)
	return f.bulkErr
}

func (f *fakePostRepo) FindDueScheduled(ctx context.Context, now time.Time) ([]models.Post, error) {
	return f.due, f.dueErr
}

func (f *fakePostRepo) MarkPublished(ctx context.Context, id primitive.ObjectID, now time.Time) (bool, error) {
	if f.publishFail[id] {
		return false, errors.New("write failed")
	}
	if f.alreadyReady[id] {
		return false, nil
	}
	f.published = append(f.published, id)
	return true, nil
}

func (f *fakePostRepo) FindRecentReady(ctx context.Context, since time.Time) ([]models.Post, error) {
	return f.recent, f.recentErr
}

type fakeFollowRepo struct {
	repositories.FollowRepository

	followers map[uint][]uint
	err       error
}

func (f *fakeFollowRepo) GetFollowerIDs(userID uint) ([]uint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.followers[userID], nil
}

type fakeDispatcher struct {
	enqueued []models.Notification
	err      error
}

func (f *fakeDispatcher) Enqueue(ctx context.Context, n models.Notification) error {
	f.enqueued = append(f.enqueued, n)
	return f.err
}

func (f *fakeDispatcher) EnqueueBatch(ctx context.Context, ns []models.Notification) (int, error) {
	f.enqueued = append(f.enqueued, ns...)
	if f.err != nil {
		return 0, f.err
	}
	return len(ns), nil
}

func readyPost(id primitive.ObjectID, likes int64, age time.Duration, now time.Time) models.Post {
	return models.Post{
		ID:        id,
		Status:    models.StatusReady,
		Counters:  models.Counters{LikeCount: likes},
		CreatedAt: now.Add(-age),
	}
}

func TestScoringJobUpdatesAllPosts(t *testing.T) {
	now := time.Now()
	repo := &fakePostRepo{
		scorable: []models.Post{
			readyPost(primitive.NewObjectID(), 10, time.Hour, now),
			readyPost(primitive.NewObjectID(), 0, 48*time.Hour, now),
			readyPost(primitive.NewObjectID(), 3, 10*time.Minute, now),
		},
	}
	job := NewScoringJob(repo)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, repo.bulkBatches, 1)
	updates := repo.bulkBatches[0]
	require.Len(t, updates, 3)
	for i, u := range updates {
		assert.Equal(t, repo.scorable[i].ID, u.PostID)
		assert.GreaterOrEqual(t, u.Score, 0.0)
	}
	// Fresher post with likes outranks the old one with none.
	assert.Greater(t, updates[0].Score, updates[1].Score)
}

func TestScoringJobFlushesInBatches(t *testing.T) {
	now := time.Now()
	repo := &fakePostRepo{}
	for i := 0; i < scoreBatchSize+7; i++ {
		repo.scorable = append(repo.scorable, readyPost(primitive.NewObjectID(), 1, time.Hour, now))
	}
	job := NewScoringJob(repo)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, repo.bulkBatches, 2)
	assert.Len(t, repo.bulkBatches[0], scoreBatchSize)
	assert.Len(t, repo.bulkBatches[1], 7)
}

func TestPublisherJobFansOutToFollowers(t *testing.T) {
	now := time.Now()
	postID := primitive.NewObjectID()
	postRepo := &fakePostRepo{
		due: []models.Post{{ID: postID, AuthorID: 7, Status: models.StatusScheduled}},
	}
	followRepo := &fakeFollowRepo{followers: map[uint][]uint{7: {1, 2, 3}}}
	dispatcher := &fakeDispatcher{}

	job := NewPublisherJob(postRepo, followRepo, dispatcher)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, []primitive.ObjectID{postID}, postRepo.published)
	require.Len(t, dispatcher.enqueued, 3)
	for i, n := range dispatcher.enqueued {
		assert.Equal(t, models.NotificationPostPublished, n.Type)
		assert.Equal(t, uint(7), n.ActorID)
		assert.Equal(t, uint(i+1), n.RecipientID)
		assert.Equal(t, postID.Hex(), n.TargetID)
	}
}

func TestPublisherJobIsolatesFailures(t *testing.T) {
	now := time.Now()
	bad := primitive.NewObjectID()
	good := primitive.NewObjectID()
	postRepo := &fakePostRepo{
		due: []models.Post{
			{ID: bad, AuthorID: 1, Status: models.StatusScheduled},
			{ID: good, AuthorID: 2, Status: models.StatusScheduled},
		},
		publishFail: map[primitive.ObjectID]bool{bad: true},
	}
	followRepo := &fakeFollowRepo{followers: map[uint][]uint{2: {9}}}
	dispatcher := &fakeDispatcher{}

	job := NewPublisherJob(postRepo, followRepo, dispatcher)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, []primitive.ObjectID{good}, postRepo.published)
	require.Len(t, dispatcher.enqueued, 1)
	assert.Equal(t, uint(9), dispatcher.enqueued[0].RecipientID)
}

func TestPublisherJobSkipsAlreadyPublished(t *testing.T) {
	now := time.Now()
	postID := primitive.NewObjectID()
	postRepo := &fakePostRepo{
		due:          []models.Post{{ID: postID, AuthorID: 5, Status: models.StatusScheduled}},
		alreadyReady: map[primitive.ObjectID]bool{postID: true},
	}
	dispatcher := &fakeDispatcher{}

	job := NewPublisherJob(postRepo, &fakeFollowRepo{}, dispatcher)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))

	assert.Empty(t, postRepo.published)
	assert.Empty(t, dispatcher.enqueued)
}

func TestTrendingJobReplacesSnapshot(t *testing.T) {
	now := time.Now()
	repo := &fakePostRepo{
		recent: []models.Post{
			{Hashtags: []string{"golang", "backend"}},
			{Hashtags: []string{"golang"}},
		},
	}
	cache := trending.NewCache()

	job := NewTrendingJob(repo, cache)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))

	top := cache.Top()
	require.Len(t, top, 2)
	assert.Equal(t, "golang", top[0].Tag)
	assert.Equal(t, int64(2), top[0].Count)
}

func TestTrendingJobKeepsSnapshotOnError(t *testing.T) {
	now := time.Now()
	cache := trending.NewCache()
	cache.Replace([]trending.Hashtag{{Tag: "stale", Count: 5}})

	repo := &fakePostRepo{recentErr: errors.New("mongo down")}
	job := NewTrendingJob(repo, cache)
	job.now = func() time.Time { return now }

	require.Error(t, job.Run(context.Background()))

	top := cache.Top()
	require.Len(t, top, 1)
	assert.Equal(t, "stale", top[0].Tag)
}
