package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pulsegram/backend/internal/cache"
	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/repositories"
	"github.com/pulsegram/backend/pkg/apperrors"
)

// Per-feed cache policy. Following pages are personal and go stale fastest;
// explore and reels pages are shared across users and tolerate more.
const (
	followingFeedTTL = 5 * time.Minute
	exploreFeedTTL   = 15 * time.Minute
	reelsFeedTTL     = 10 * time.Minute

	followingKeyPrefix = "feed:following:"
	exploreKeyPrefix   = "feed:explore:"
	reelsKeyPrefix     = "feed:reels:"

	defaultPageSize = 10
	maxPageSize     = 50
)

// FeedPost is one post in a feed response, enriched with its author and the
// requesting user's own like/save flags.
type FeedPost struct {
	models.Post
	Author  models.UserCompact `json:"author"`
	IsLiked bool               `json:"is_liked"`
	IsSaved bool               `json:"is_saved"`
}

// FeedPage is one page of a feed view.
type FeedPage struct {
	Posts   []FeedPost `json:"posts"`
	HasMore bool       `json:"has_more"`
	Page    int        `json:"page"`
	Limit   int        `json:"limit"`
}

// cachedFeedPage is the user-agnostic payload stored in the cache. Per-user
// block filtering and like/save flags are applied after the cache read so a
// single shared entry can serve every user.
type cachedFeedPage struct {
	Posts   []FeedPost `json:"posts"`
	HasMore bool       `json:"has_more"`
}

// FeedService builds the three feed views through the cache layer.
type FeedService struct {
	postRepo   repositories.PostRepository
	followRepo repositories.FollowRepository
	likeRepo   repositories.LikeRepository
	savedRepo  repositories.SavedPostRepository
	userRepo   repositories.UserRepository
	cache      *cache.Cache
}

// NewFeedService creates a new FeedService
func NewFeedService(
	postRepo repositories.PostRepository,
	followRepo repositories.FollowRepository,
	likeRepo repositories.LikeRepository,
	savedRepo repositories.SavedPostRepository,
	userRepo repositories.UserRepository,
	c *cache.Cache,
) *FeedService {
	return &FeedService{
		postRepo:   postRepo,
		followRepo: followRepo,
		likeRepo:   likeRepo,
		savedRepo:  savedRepo,
		userRepo:   userRepo,
		cache:      c,
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// GetFollowingFeed returns posts from the users the given user follows,
// ranked by engagement score. A user following nobody gets an empty page
// without any post-store or cache access.
func (s *FeedService) GetFollowingFeed(ctx context.Context, userID uint, page, limit int) (*FeedPage, error) {
	page, limit = normalizePage(page, limit)

	following, err := s.followRepo.GetFollowingIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(following) == 0 {
		return &FeedPage{Posts: []FeedPost{}, HasMore: false, Page: page, Limit: limit}, nil
	}

	blocked, err := s.followRepo.GetBlockedIDs(userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s%d:%d:%d", followingKeyPrefix, userID, page, limit)
	payload, err := s.cache.Cached(ctx, key, followingFeedTTL, func(ctx context.Context) ([]byte, error) {
		cached, err := s.buildPage(ctx, repositories.FeedQuery{
			AuthorIDs:        following,
			ExcludeAuthorIDs: blocked,
			Visibilities:     []string{models.VisibilityPublic, models.VisibilityFollowers},
			Skip:             int64((page - 1) * limit),
			Limit:            int64(limit + 1),
		}, limit)
		if err != nil {
			return nil, err
		}
		return json.Marshal(cached)
	})
	if err != nil {
		return nil, err
	}

	return s.finishPage(ctx, payload, userID, nil, page, limit)
}

// GetExploreFeed returns the shared public feed page. The cached payload is
// identical for every user; the caller's block set is applied after the
// cache read.
func (s *FeedService) GetExploreFeed(ctx context.Context, userID uint, page, limit int) (*FeedPage, error) {
	return s.sharedFeed(ctx, userID, page, limit, exploreKeyPrefix, exploreFeedTTL, false)
}

// GetReelsFeed returns the shared reels page, same pattern as explore but
// restricted to reels.
func (s *FeedService) GetReelsFeed(ctx context.Context, userID uint, page, limit int) (*FeedPage, error) {
	return s.sharedFeed(ctx, userID, page, limit, reelsKeyPrefix, reelsFeedTTL, true)
}

func (s *FeedService) sharedFeed(ctx context.Context, userID uint, page, limit int, prefix string, ttl time.Duration, reelsOnly bool) (*FeedPage, error) {
	page, limit = normalizePage(page, limit)

	key := fmt.Sprintf("%s%d:%d", prefix, page, limit)
	payload, err := s.cache.Cached(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		cached, err := s.buildPage(ctx, repositories.FeedQuery{
			Visibilities: []string{models.VisibilityPublic},
			ReelsOnly:    reelsOnly,
			Skip:         int64((page - 1) * limit),
			Limit:        int64(limit + 1),
		}, limit)
		if err != nil {
			return nil, err
		}
		return json.Marshal(cached)
	})
	if err != nil {
		return nil, err
	}

	blocked, err := s.followRepo.GetBlockedIDs(userID)
	if err != nil {
		return nil, err
	}

	return s.finishPage(ctx, payload, userID, blocked, page, limit)
}

// buildPage runs the authoritative feed query with one overfetched row and
// attaches author summaries.
func (s *FeedService) buildPage(ctx context.Context, q repositories.FeedQuery, limit int) (*cachedFeedPage, error) {
	posts, err := s.postRepo.QueryFeed(ctx, q)
	if err != nil {
		return nil, err
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	authorIDs := make([]uint, 0, len(posts))
	seen := make(map[uint]bool, len(posts))
	for i := range posts {
		if !seen[posts[i].AuthorID] {
			seen[posts[i].AuthorID] = true
			authorIDs = append(authorIDs, posts[i].AuthorID)
		}
	}
	authors, err := s.userRepo.GetUsersByIDs(authorIDs)
	if err != nil {
		return nil, err
	}

	feedPosts := make([]FeedPost, len(posts))
	for i, p := range posts {
		author := authors[p.AuthorID]
		feedPosts[i] = FeedPost{Post: p, Author: author.ToCompact()}
	}
	return &cachedFeedPage{Posts: feedPosts, HasMore: hasMore}, nil
}

// finishPage decodes a cached payload and applies the per-user parts:
// block filtering (for shared pages) and like/save flags.
func (s *FeedService) finishPage(ctx context.Context, payload []byte, userID uint, blocked []uint, page, limit int) (*FeedPage, error) {
	var cached cachedFeedPage
	if err := json.Unmarshal(payload, &cached); err != nil {
		return nil, apperrors.Wrap(err, "corrupt cached feed page")
	}

	posts := cached.Posts
	if len(blocked) > 0 {
		blockedSet := make(map[uint]bool, len(blocked))
		for _, id := range blocked {
			blockedSet[id] = true
		}
		filtered := posts[:0]
		for _, p := range posts {
			if !blockedSet[p.AuthorID] {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}

	postIDs := make([]string, len(posts))
	for i := range posts {
		postIDs[i] = posts[i].ID.Hex()
	}
	liked, err := s.likeRepo.GetLikedPostIDs(userID, postIDs)
	if err != nil {
		return nil, err
	}
	saved, err := s.savedRepo.GetSavedPostIDs(userID, postIDs)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].IsLiked = liked[postIDs[i]]
		posts[i].IsSaved = saved[postIDs[i]]
	}

	if posts == nil {
		posts = []FeedPost{}
	}
	return &FeedPage{Posts: posts, HasMore: cached.HasMore, Page: page, Limit: limit}, nil
}

// InvalidateFollowingFeed drops every cached following-feed page of one
// user, e.g. after a follow or block change.
func (s *FeedService) InvalidateFollowingFeed(ctx context.Context, userID uint) {
	s.cache.DeleteByPrefix(ctx, fmt.Sprintf("%s%d:", followingKeyPrefix, userID))
}

// InvalidateSharedFeeds drops the shared explore and reels pages, e.g.
// after a post deletion.
func (s *FeedService) InvalidateSharedFeeds(ctx context.Context) {
	s.cache.DeleteByPrefix(ctx, exploreKeyPrefix)
	s.cache.DeleteByPrefix(ctx, reelsKeyPrefix)
}
