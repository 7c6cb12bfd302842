package jobs

import (
	"context"
	"time"

	"github.com/pulsegram/backend/internal/repositories"
	"github.com/pulsegram/backend/internal/trending"
	"github.com/pulsegram/backend/pkg/logger"
)

const trendingWindow = 24 * time.Hour

// TrendingJob rebuilds the trending hashtag snapshot from recent posts.
// When the source query fails the previous snapshot stays in place.
type TrendingJob struct {
	postRepo repositories.PostRepository
	cache    *trending.Cache
	now      func() time.Time
}

// NewTrendingJob creates a new TrendingJob
func NewTrendingJob(postRepo repositories.PostRepository, cache *trending.Cache) *TrendingJob {
	return &TrendingJob{postRepo: postRepo, cache: cache, now: time.Now}
}

// Run executes one trending recomputation.
func (j *TrendingJob) Run(ctx context.Context) error {
	since := j.now().Add(-trendingWindow)
	posts, err := j.postRepo.FindRecentReady(ctx, since)
	if err != nil {
		logger.Log.Errorf("trending recompute failed, keeping previous snapshot: %v", err)
		return err
	}
	tags := trending.Compute(posts)
	j.cache.Replace(tags)
	logger.InfoWithFields("trending snapshot replaced", logger.Fields{
		"posts": len(posts),
		"tags":  len(tags),
	})
	return nil
}
