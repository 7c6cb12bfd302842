// Package scoring computes post engagement scores. Everything here is pure:
// the clock is passed in and there is no I/O, so identical inputs always
// produce identical outputs.
package scoring

import (
	"math"
	"time"

	"github.com/pulsegram/backend/internal/models"
)

// Engagement weights per action.
const (
	weightLike       = 1.0
	weightComment    = 2.5
	weightShare      = 4.0
	weightSave       = 3.0
	weightView       = 0.1
	weightCompletion = 5.0
)

// decayOffsetHours keeps brand-new posts at a large but finite boost
// instead of a division-by-zero singularity. decayExponent 1.5 halves a
// post's rank roughly every 12-18 hours without fresh engagement.
const (
	decayOffsetHours = 2.0
	decayExponent    = 1.5
)

// RawScore is the weighted engagement sum of a post's counters. Reels
// additionally earn a completion bonus; it is exactly 0 for non-reels and
// for reels with no views.
func RawScore(c models.Counters, isReel bool) float64 {
	score := float64(c.LikeCount)*weightLike +
		float64(c.CommentCount)*weightComment +
		float64(c.ShareCount)*weightShare +
		float64(c.SaveCount)*weightSave +
		float64(c.ViewCount)*weightView

	if isReel && c.ViewCount > 0 {
		avgCompletion := c.CompletionSum / float64(c.ViewCount)
		score += avgCompletion * weightCompletion
	}
	return score
}

// DecayedScore applies time decay to a raw score: raw / (hours+2)^1.5.
func DecayedScore(raw float64, createdAt, now time.Time) float64 {
	hours := now.Sub(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return raw / math.Pow(hours+decayOffsetHours, decayExponent)
}

// Score computes the decayed rank score of a post at the given instant.
func Score(p *models.Post, now time.Time) float64 {
	return DecayedScore(RawScore(p.Counters, p.IsReel), p.CreatedAt, now)
}
