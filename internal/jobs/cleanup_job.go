package jobs

import (
	"context"
	"time"

	"github.com/pulsegram/backend/internal/repositories"
	"github.com/pulsegram/backend/pkg/logger"
)

// CleanupJob removes expired stories and their relational leftovers.
type CleanupJob struct {
	storyRepo repositories.StoryRepository
	now       func() time.Time
}

// NewCleanupJob creates a new CleanupJob
func NewCleanupJob(storyRepo repositories.StoryRepository) *CleanupJob {
	return &CleanupJob{storyRepo: storyRepo, now: time.Now}
}

// Run executes one cleanup pass.
func (j *CleanupJob) Run(ctx context.Context) error {
	removed, err := j.storyRepo.DeleteExpired(ctx, j.now())
	if err != nil {
		return err
	}
	if removed > 0 {
		logger.Log.Infof("removed %d expired stories", removed)
	}
	return nil
}
