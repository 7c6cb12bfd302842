package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/pulsegram/backend/pkg/logger"
)

// Job intervals. Trending additionally runs once at startup so the
// snapshot is warm before the first tick.
const (
	scoringInterval   = 15 * time.Minute
	trendingInterval  = 30 * time.Minute
	publisherInterval = 1 * time.Minute
	cleanupInterval   = 5 * time.Minute
)

// Runner is a single background job.
type Runner interface {
	Run(ctx context.Context) error
}

// Scheduler owns the recurring background jobs. Every job body runs inside
// its own error boundary so a panic or error in one job never takes down
// the others or the scheduler itself.
type Scheduler struct {
	scoring   Runner
	trending  Runner
	publisher Runner
	cleanup   Runner
}

// NewScheduler creates a new Scheduler
func NewScheduler(scoring, trending, publisher, cleanup Runner) *Scheduler {
	return &Scheduler{
		scoring:   scoring,
		trending:  trending,
		publisher: publisher,
		cleanup:   cleanup,
	}
}

// Start registers and starts all jobs. The scheduler shuts down when ctx
// is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	entries := []struct {
		name     string
		interval time.Duration
		job      Runner
		opts     []gocron.JobOption
	}{
		{"engagement_scoring", scoringInterval, s.scoring, nil},
		{"trending_hashtags", trendingInterval, s.trending, []gocron.JobOption{
			gocron.WithStartAt(gocron.WithStartImmediately()),
		}},
		{"scheduled_publisher", publisherInterval, s.publisher, nil},
		{"story_cleanup", cleanupInterval, s.cleanup, nil},
	}

	for _, entry := range entries {
		if entry.job == nil {
			continue
		}
		_, err := cron.NewJob(
			gocron.DurationJob(entry.interval),
			gocron.NewTask(s.guarded(ctx, entry.name, entry.job)),
			entry.opts...,
		)
		if err != nil {
			return fmt.Errorf("failed to schedule %s job: %w", entry.name, err)
		}
	}

	cron.Start()
	logger.Log.Info("background job scheduler started")

	go func() {
		<-ctx.Done()
		if err := cron.Shutdown(); err != nil {
			logger.Log.Errorf("failed to shut down scheduler: %v", err)
		} else {
			logger.Log.Info("background job scheduler stopped")
		}
	}()

	return nil
}

func (s *Scheduler) guarded(ctx context.Context, name string, job Runner) func() {
	return func() {
		if ctx.Err() != nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				logger.Log.Errorf("%s job panicked: %v", name, r)
			}
		}()
		start := time.Now()
		if err := job.Run(ctx); err != nil {
			logger.Log.Errorf("%s job failed: %v", name, err)
			return
		}
		logger.Log.Debugf("%s job finished in %s", name, time.Since(start))
	}
}
