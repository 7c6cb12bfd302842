// Package trending holds the in-memory trending-hashtag snapshot. The
// snapshot is an immutable slice swapped atomically by the refresh job, so
// readers never observe a half-updated list.
package trending

import (
	"sort"
	"sync/atomic"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/scoring"
)

// Hashtag is one ranked trending entry.
type Hashtag struct {
	Tag   string  `json:"tag"`
	Count int64   `json:"count"`
	Score float64 `json:"score"`
}

const topN = 20

// engagementWeight scales a tag's summed engagement against its raw
// occurrence count in the ranking score.
const engagementWeight = 0.1

// Cache is the process-wide trending snapshot.
type Cache struct {
	snapshot atomic.Value // []Hashtag
}

// NewCache creates a cache initialized to an empty snapshot.
func NewCache() *Cache {
	c := &Cache{}
	c.snapshot.Store([]Hashtag{})
	return c
}

// Top returns the current snapshot. The slice is shared and must not be
// mutated by callers.
func (c *Cache) Top() []Hashtag {
	return c.snapshot.Load().([]Hashtag)
}

// Replace swaps in a new snapshot. Callers only invoke this with a fully
// computed list; on a failed recompute the previous snapshot stays.
func (c *Cache) Replace(snapshot []Hashtag) {
	if snapshot == nil {
		snapshot = []Hashtag{}
	}
	c.snapshot.Store(snapshot)
}

// Compute ranks hashtags across the given posts by occurrence count plus
// weighted engagement, keeping the top 20. The sort is stable so exact
// score ties keep their aggregation order across runs on identical input.
func Compute(posts []models.Post) []Hashtag {
	counts := make(map[string]int64)
	engagement := make(map[string]float64)
	order := make([]string, 0)

	for i := range posts {
		p := &posts[i]
		raw := scoring.RawScore(p.Counters, p.IsReel)
		for _, tag := range p.Hashtags {
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
			engagement[tag] += raw
		}
	}

	ranked := make([]Hashtag, 0, len(order))
	for _, tag := range order {
		ranked = append(ranked, Hashtag{
			Tag:   tag,
			Count: counts[tag],
			Score: float64(counts[tag]) + engagementWeight*engagement[tag],
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
