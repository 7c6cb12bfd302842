package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/notify"
	"github.com/pulsegram/backend/internal/repositories"
	"github.com/pulsegram/backend/pkg/apperrors"
	"github.com/pulsegram/backend/pkg/logger"
)

// Video milestone thresholds, in completion percent.
var milestones = []struct {
	percent float64
	event   string
}{
	{25, models.EventVideo25},
	{50, models.EventVideo50},
	{75, models.EventVideo75},
	{100, models.EventVideoComplete},
}

// EngagementService handles the engagement write path: atomic counter
// increments plus the append-only event log, synchronously per request.
type EngagementService struct {
	postRepo    repositories.PostRepository
	likeRepo    repositories.LikeRepository
	savedRepo   repositories.SavedPostRepository
	commentRepo repositories.CommentRepository
	eventRepo   repositories.EventRepository
	dispatcher  notify.Dispatcher
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(
	postRepo repositories.PostRepository,
	likeRepo repositories.LikeRepository,
	savedRepo repositories.SavedPostRepository,
	commentRepo repositories.CommentRepository,
	eventRepo repositories.EventRepository,
	dispatcher notify.Dispatcher,
) *EngagementService {
	return &EngagementService{
		postRepo:    postRepo,
		likeRepo:    likeRepo,
		savedRepo:   savedRepo,
		commentRepo: commentRepo,
		eventRepo:   eventRepo,
		dispatcher:  dispatcher,
	}
}

// appendEvent logs an engagement fact. The counter mutation has already
// landed when this runs, so a failed append is logged rather than failing
// the request; the event log tolerates gaps, counters do not.
func (s *EngagementService) appendEvent(ctx context.Context, userID uint, postID, eventType string, metadata bson.M) {
	if err := s.eventRepo.AppendEvent(ctx, userID, postID, eventType, metadata); err != nil {
		logger.Log.Warnf("failed to append %s event for post %s: %v", eventType, postID, err)
	}
}

// ToggleLike flips the user's like membership on a post and returns the new
// state plus the updated like count. Two rapid toggles from the same user
// may transiently double-count; the next toggle corrects it.
func (s *EngagementService) ToggleLike(ctx context.Context, userID uint, postID string) (bool, int64, error) {
	post, err := s.postRepo.GetPostByID(ctx, postID)
	if err != nil {
		return false, 0, err
	}

	hasLiked, err := s.likeRepo.HasUserLikedPost(postID, userID)
	if err != nil {
		return false, 0, err
	}

	if hasLiked {
		if err := s.likeRepo.DeleteLike(postID, userID); err != nil && !apperrors.IsNotFound(err) {
			return false, 0, err
		}
		count, err := s.postRepo.IncrementCounter(ctx, postID, models.CounterLikes, -1)
		if err != nil {
			return false, 0, err
		}
		s.appendEvent(ctx, userID, postID, models.EventUnlike, nil)
		return false, int64(count), nil
	}

	if err := s.likeRepo.CreateLike(&models.Like{PostID: postID, UserID: userID}); err != nil {
		return false, 0, err
	}
	count, err := s.postRepo.IncrementCounter(ctx, postID, models.CounterLikes, 1)
	if err != nil {
		return false, 0, err
	}
	s.appendEvent(ctx, userID, postID, models.EventLike, nil)

	if post.AuthorID != userID {
		if err := s.dispatcher.Enqueue(ctx, models.Notification{
			Type:        models.NotificationLike,
			ActorID:     userID,
			RecipientID: post.AuthorID,
			TargetID:    postID,
			TargetType:  "post",
			Message:     "liked your post",
		}); err != nil {
			logger.Log.Warnf("failed to enqueue like notification for post %s: %v", postID, err)
		}
	}
	return true, int64(count), nil
}

// ToggleBookmark flips the user's save membership and returns the new state
// plus the updated save count.
func (s *EngagementService) ToggleBookmark(ctx context.Context, userID uint, postID string) (bool, int64, error) {
	if _, err := s.postRepo.GetPostByID(ctx, postID); err != nil {
		return false, 0, err
	}

	isSaved, err := s.savedRepo.IsPostSaved(userID, postID)
	if err != nil {
		return false, 0, err
	}

	if isSaved {
		if err := s.savedRepo.UnsavePost(userID, postID); err != nil && !apperrors.IsNotFound(err) {
			return false, 0, err
		}
		count, err := s.postRepo.IncrementCounter(ctx, postID, models.CounterSaves, -1)
		if err != nil {
			return false, 0, err
		}
		s.appendEvent(ctx, userID, postID, models.EventUnsave, nil)
		return false, int64(count), nil
	}

	if err := s.savedRepo.SavePost(&models.SavedPost{UserID: userID, PostID: postID}); err != nil {
		return false, 0, err
	}
	count, err := s.postRepo.IncrementCounter(ctx, postID, models.CounterSaves, 1)
	if err != nil {
		return false, 0, err
	}
	s.appendEvent(ctx, userID, postID, models.EventSave, nil)
	return true, int64(count), nil
}

// RecordShare bumps the share counter and logs the event.
func (s *EngagementService) RecordShare(ctx context.Context, userID uint, postID string) (int64, error) {
	if _, err := s.postRepo.GetPostByID(ctx, postID); err != nil {
		return 0, err
	}

	count, err := s.postRepo.IncrementCounter(ctx, postID, models.CounterShares, 1)
	if err != nil {
		return 0, err
	}
	s.appendEvent(ctx, userID, postID, models.EventShare, nil)
	return int64(count), nil
}

// RecordWatch applies one watch session: a view, the watch-time and
// completion aggregates, and a milestone event per threshold the session
// reached.
func (s *EngagementService) RecordWatch(ctx context.Context, userID uint, postID string, watchTime, completionPercent float64) (int64, error) {
	if watchTime < 0 || completionPercent < 0 || completionPercent > 100 {
		return 0, apperrors.Validation("watch_time must be >= 0 and completion_percent within [0,100]")
	}
	if _, err := s.postRepo.GetPostByID(ctx, postID); err != nil {
		return 0, err
	}

	views, err := s.postRepo.IncrementCounter(ctx, postID, models.CounterViews, 1)
	if err != nil {
		return 0, err
	}
	if _, err := s.postRepo.IncrementCounter(ctx, postID, models.CounterWatchTime, watchTime); err != nil {
		return 0, err
	}
	if _, err := s.postRepo.IncrementCounter(ctx, postID, models.CounterCompletion, completionPercent/100); err != nil {
		return 0, err
	}

	s.appendEvent(ctx, userID, postID, models.EventView, bson.M{
		"watch_time":         watchTime,
		"completion_percent": completionPercent,
	})
	for _, m := range milestones {
		if completionPercent >= m.percent {
			s.appendEvent(ctx, userID, postID, m.event, nil)
		}
	}
	return int64(views), nil
}

// AddComment stores the comment row, bumps the comment counter, logs the
// event and notifies the post author.
func (s *EngagementService) AddComment(ctx context.Context, userID uint, postID, content string) (*models.Comment, int64, error) {
	post, err := s.postRepo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, 0, err
	}

	comment := &models.Comment{PostID: postID, UserID: userID, Content: content}
	if err := s.commentRepo.CreateComment(comment); err != nil {
		return nil, 0, err
	}
	count, err := s.postRepo.IncrementCounter(ctx, postID, models.CounterComments, 1)
	if err != nil {
		return nil, 0, err
	}
	s.appendEvent(ctx, userID, postID, models.EventComment, bson.M{"comment_id": fmt.Sprint(comment.ID)})

	if post.AuthorID != userID {
		if err := s.dispatcher.Enqueue(ctx, models.Notification{
			Type:        models.NotificationComment,
			ActorID:     userID,
			RecipientID: post.AuthorID,
			TargetID:    postID,
			TargetType:  "post",
			Message:     "commented on your post",
		}); err != nil {
			logger.Log.Warnf("failed to enqueue comment notification for post %s: %v", postID, err)
		}
	}
	return comment, int64(count), nil
}

// DeleteComment removes one of the user's comments, reverses its counter
// contribution and logs the event.
func (s *EngagementService) DeleteComment(ctx context.Context, userID, commentID uint) (int64, error) {
	comment, err := s.commentRepo.GetCommentByID(commentID)
	if err != nil {
		return 0, err
	}
	if comment.UserID != userID {
		return 0, apperrors.Forbidden("only the comment author may delete it")
	}

	if err := s.commentRepo.DeleteComment(commentID, userID); err != nil {
		return 0, err
	}
	count, err := s.postRepo.IncrementCounter(ctx, comment.PostID, models.CounterComments, -1)
	if err != nil {
		return 0, err
	}
	s.appendEvent(ctx, userID, comment.PostID, models.EventUncomment, bson.M{"comment_id": fmt.Sprint(commentID)})
	return int64(count), nil
}
