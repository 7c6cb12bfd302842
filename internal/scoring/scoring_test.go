package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsegram/backend/internal/models"
)

func TestRawScoreWeightedSum(t *testing.T) {
	c := models.Counters{
		LikeCount:    10,
		CommentCount: 2,
		ShareCount:   0,
		SaveCount:    1,
		ViewCount:    100,
	}

	// 10*1.0 + 2*2.5 + 0 + 1*3.0 + 100*0.1 = 28
	assert.InDelta(t, 28.0, RawScore(c, false), 1e-9)
}

func TestRawScoreDeterministic(t *testing.T) {
	c := models.Counters{LikeCount: 7, CommentCount: 3, ShareCount: 2, SaveCount: 5, ViewCount: 321, CompletionSum: 100}

	first := RawScore(c, true)
	second := RawScore(c, true)
	assert.Equal(t, first, second)
}

func TestRawScoreReelBonus(t *testing.T) {
	c := models.Counters{ViewCount: 100, CompletionSum: 80}

	// avgCompletion 0.8 * 5.0 = 4.0 on top of 100 views * 0.1
	assert.InDelta(t, 14.0, RawScore(c, true), 1e-9)

	// no bonus when not a reel
	assert.InDelta(t, 10.0, RawScore(c, false), 1e-9)

	// no bonus without views even with a completion sum
	noViews := models.Counters{CompletionSum: 80}
	assert.InDelta(t, 0.0, RawScore(noViews, true), 1e-9)
}

func TestDecayedScoreWorkedScenario(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := models.Counters{LikeCount: 10, CommentCount: 2, SaveCount: 1, ViewCount: 100}

	raw := RawScore(c, false)
	require.InDelta(t, 28.0, raw, 1e-9)

	// 28 / (1+2)^1.5 = 28 / 5.196...
	got := DecayedScore(raw, t0, t0.Add(time.Hour))
	assert.InDelta(t, 5.39, got, 0.01)
}

func TestDecayedScoreStrictlyDecreasing(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	raw := 42.0

	prev := DecayedScore(raw, t0, t0)
	for h := 1; h <= 72; h++ {
		cur := DecayedScore(raw, t0, t0.Add(time.Duration(h)*time.Hour))
		require.GreaterOrEqual(t, cur, 0.0)
		require.Less(t, cur, prev, "score must strictly decrease as now advances (hour %d)", h)
		prev = cur
	}
}

func TestDecayedScoreClampsFutureCreatedAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// a post stamped slightly in the future decays as if brand new
	ahead := DecayedScore(28, now.Add(time.Minute), now)
	fresh := DecayedScore(28, now, now)
	assert.Equal(t, fresh, ahead)
}

func TestScoreUsesPostFields(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &models.Post{
		Counters:  models.Counters{LikeCount: 10, CommentCount: 2, SaveCount: 1, ViewCount: 100},
		CreatedAt: t0,
	}

	assert.InDelta(t, 5.39, Score(p, t0.Add(time.Hour)), 0.01)
}
