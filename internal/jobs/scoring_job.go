package jobs

import (
	"context"
	"math"
	"time"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/repositories"
	"github.com/pulsegram/backend/internal/scoring"
	"github.com/pulsegram/backend/pkg/logger"
)

const (
	scoreBatchSize  = 500
	scoreWindowDays = 30
)

// ScoringJob recomputes the decayed engagement score of every ready post
// created within the scoring window. Per-post failures are counted and
// skipped; a failed batch flush loses only that batch.
type ScoringJob struct {
	postRepo repositories.PostRepository
	now      func() time.Time
}

// NewScoringJob creates a new ScoringJob
func NewScoringJob(postRepo repositories.PostRepository) *ScoringJob {
	return &ScoringJob{postRepo: postRepo, now: time.Now}
}

// Run executes one scoring pass.
func (j *ScoringJob) Run(ctx context.Context) error {
	now := j.now()
	since := now.AddDate(0, 0, -scoreWindowDays)

	batch := make([]repositories.ScoreUpdate, 0, scoreBatchSize)
	var scored, failed int

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := j.postRepo.BulkUpdateScores(ctx, batch); err != nil {
			failed += len(batch)
			logger.Log.Errorf("scoring batch of %d failed: %v", len(batch), err)
		} else {
			scored += len(batch)
		}
		batch = batch[:0]
	}

	err := j.postRepo.ForEachScorable(ctx, since, func(p *models.Post) error {
		score := scoring.Score(p, now)
		if math.IsNaN(score) || math.IsInf(score, 0) {
			failed++
			logger.Log.Warnf("skipping post %s: non-finite score", p.ID.Hex())
			return nil
		}
		batch = append(batch, repositories.ScoreUpdate{PostID: p.ID, Score: score})
		if len(batch) >= scoreBatchSize {
			flush()
		}
		return nil
	})
	flush()

	logger.InfoWithFields("engagement scoring pass finished", logger.Fields{
		"scored": scored,
		"failed": failed,
	})
	return err
}
