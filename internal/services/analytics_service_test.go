package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/repositories"
	"github.com/pulsegram/backend/pkg/apperrors"
)

type analyticsEventRepo struct {
	repositories.EventRepository

	breakdown map[string]int64
	daily     []repositories.DailyViewCount
}

func (f *analyticsEventRepo) CountByType(ctx context.Context, postID string) (map[string]int64, error) {
	return f.breakdown, nil
}

func (f *analyticsEventRepo) DailyViews(ctx context.Context, postID string, since time.Time) ([]repositories.DailyViewCount, error) {
	return f.daily, nil
}

func TestGetPostAnalyticsOwnerOnly(t *testing.T) {
	postRepo := newCounterPostRepo(7)
	svc := NewAnalyticsService(postRepo, &analyticsEventRepo{})

	_, err := svc.GetPostAnalytics(context.Background(), 42, postRepo.post.ID.Hex())
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestGetPostAnalyticsZeroFillsDailyViews(t *testing.T) {
	postRepo := newCounterPostRepo(7)
	postRepo.post.Counters = models.Counters{
		ViewCount:     100,
		LikeCount:     10,
		CompletionSum: 60,
	}

	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	eventRepo := &analyticsEventRepo{
		breakdown: map[string]int64{models.EventView: 100, models.EventLike: 10},
		daily: []repositories.DailyViewCount{
			{Date: "2026-03-08", Views: 40},
			{Date: "2026-03-10", Views: 60},
		},
	}
	svc := NewAnalyticsService(postRepo, eventRepo)
	svc.now = func() time.Time { return now }

	analytics, err := svc.GetPostAnalytics(context.Background(), 7, postRepo.post.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, int64(100), analytics.Summary.Views)
	assert.InDelta(t, 0.6, analytics.Summary.CompletionRate, 1e-9)

	require.Len(t, analytics.DailyViews, 7)
	assert.Equal(t, "2026-03-04", analytics.DailyViews[0].Date)
	assert.Equal(t, "2026-03-10", analytics.DailyViews[6].Date)

	// Days without events report zero instead of being skipped.
	var total int64
	for _, d := range analytics.DailyViews {
		total += d.Views
		if d.Date != "2026-03-08" && d.Date != "2026-03-10" {
			assert.Zero(t, d.Views)
		}
	}
	assert.Equal(t, int64(100), total)
}
