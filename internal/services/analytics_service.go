package services

import (
	"context"
	"time"

	"github.com/pulsegram/backend/internal/repositories"
	"github.com/pulsegram/backend/pkg/apperrors"
)

// AnalyticsSummary is the counter roll-up of one post.
type AnalyticsSummary struct {
	Views          int64   `json:"views"`
	Likes          int64   `json:"likes"`
	Comments       int64   `json:"comments"`
	Shares         int64   `json:"shares"`
	Saves          int64   `json:"saves"`
	WatchTime      float64 `json:"watch_time"`
	CompletionRate float64 `json:"completion_rate"`
}

// DailyViews is one day's view total, zero-filled for silent days.
type DailyViews struct {
	Date  string `json:"date"`
	Views int64  `json:"views"`
}

// PostAnalytics is the owner-only analytics response.
type PostAnalytics struct {
	Summary    AnalyticsSummary `json:"summary"`
	Breakdown  map[string]int64 `json:"breakdown"`
	DailyViews []DailyViews     `json:"daily_views"`
}

const dailyViewDays = 7

// AnalyticsService serves owner-only post analytics from the counters and
// the event log.
type AnalyticsService struct {
	postRepo  repositories.PostRepository
	eventRepo repositories.EventRepository
	now       func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(postRepo repositories.PostRepository, eventRepo repositories.EventRepository) *AnalyticsService {
	return &AnalyticsService{postRepo: postRepo, eventRepo: eventRepo, now: time.Now}
}

// GetPostAnalytics returns counters, event breakdown and a zero-filled
// 7-day view series. Only the post's author may read it.
func (s *AnalyticsService) GetPostAnalytics(ctx context.Context, userID uint, postID string) (*PostAnalytics, error) {
	post, err := s.postRepo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, apperrors.Forbidden("only the post owner may view analytics")
	}

	breakdown, err := s.eventRepo.CountByType(ctx, postID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	windowStart := now.AddDate(0, 0, -(dailyViewDays - 1)).Truncate(24 * time.Hour)
	rows, err := s.eventRepo.DailyViews(ctx, postID, windowStart)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]int64, len(rows))
	for _, row := range rows {
		byDate[row.Date] = row.Views
	}
	daily := make([]DailyViews, dailyViewDays)
	for i := 0; i < dailyViewDays; i++ {
		date := windowStart.AddDate(0, 0, i).Format("2006-01-02")
		daily[i] = DailyViews{Date: date, Views: byDate[date]}
	}

	return &PostAnalytics{
		Summary: AnalyticsSummary{
			Views:          post.Counters.ViewCount,
			Likes:          post.Counters.LikeCount,
			Comments:       post.Counters.CommentCount,
			Shares:         post.Counters.ShareCount,
			Saves:          post.Counters.SaveCount,
			WatchTime:      post.Counters.WatchTimeSum,
			CompletionRate: post.AvgCompletionRate(),
		},
		Breakdown:  breakdown,
		DailyViews: daily,
	}, nil
}
