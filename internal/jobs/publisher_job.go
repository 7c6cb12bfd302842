package jobs

import (
	"context"
	"time"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/notify"
	"github.com/pulsegram/backend/internal/repositories"
	"github.com/pulsegram/backend/pkg/logger"
)

// PublisherJob promotes scheduled posts whose publish time has passed and
// fans a notification out to the author's followers. Each post is handled
// in isolation so one failure never blocks the rest of the batch. Fan-out
// is at-least-once; duplicate notifications are tolerated downstream.
type PublisherJob struct {
	postRepo   repositories.PostRepository
	followRepo repositories.FollowRepository
	dispatcher notify.Dispatcher
	now        func() time.Time
}

// NewPublisherJob creates a new PublisherJob
func NewPublisherJob(postRepo repositories.PostRepository, followRepo repositories.FollowRepository, dispatcher notify.Dispatcher) *PublisherJob {
	return &PublisherJob{
		postRepo:   postRepo,
		followRepo: followRepo,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Run publishes every due scheduled post.
func (j *PublisherJob) Run(ctx context.Context) error {
	now := j.now()
	due, err := j.postRepo.FindDueScheduled(ctx, now)
	if err != nil {
		return err
	}

	var published int
	for i := range due {
		if j.publishOne(ctx, &due[i], now) {
			published++
		}
	}
	if len(due) > 0 {
		logger.InfoWithFields("publisher pass finished", logger.Fields{
			"due":       len(due),
			"published": published,
		})
	}
	return nil
}

func (j *PublisherJob) publishOne(ctx context.Context, post *models.Post, now time.Time) bool {
	ok, err := j.postRepo.MarkPublished(ctx, post.ID, now)
	if err != nil {
		logger.Log.Errorf("failed to publish post %s: %v", post.ID.Hex(), err)
		return false
	}
	if !ok {
		// Already published by a concurrent pass.
		return false
	}

	followers, err := j.followRepo.GetFollowerIDs(post.AuthorID)
	if err != nil {
		logger.Log.Errorf("follower lookup for post %s failed, skipping fan-out: %v", post.ID.Hex(), err)
		return true
	}
	if len(followers) == 0 {
		return true
	}

	notifications := make([]models.Notification, 0, len(followers))
	for _, followerID := range followers {
		notifications = append(notifications, models.Notification{
			Type:        models.NotificationPostPublished,
			ActorID:     post.AuthorID,
			RecipientID: followerID,
			TargetID:    post.ID.Hex(),
			TargetType:  "post",
			Title:       "New post",
			Message:     "Someone you follow published a new post",
		})
	}
	sent, err := j.dispatcher.EnqueueBatch(ctx, notifications)
	if err != nil {
		logger.Log.Warnf("fan-out for post %s delivered %d/%d notifications: %v", post.ID.Hex(), sent, len(notifications), err)
	}
	return true
}
