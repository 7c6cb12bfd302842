package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pulsegram/backend/internal/services"
	"github.com/pulsegram/backend/internal/trending"
)

// FeedHandler handles HTTP requests for the ranked feed views
type FeedHandler struct {
	feedService   *services.FeedService
	trendingCache *trending.Cache
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feedService *services.FeedService, trendingCache *trending.Cache) *FeedHandler {
	return &FeedHandler{
		feedService:   feedService,
		trendingCache: trendingCache,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed/following", h.GetFollowingFeed)
	g.GET("/feed/explore", h.GetExploreFeed)
	g.GET("/feed/reels", h.GetReelsFeed)
	g.GET("/trending/hashtags", h.GetTrendingHashtags)
}

// GetFollowingFeed returns the score-ranked feed of followed authors
func (h *FeedHandler) GetFollowingFeed(c echo.Context) error {
	userID := getUserIDFromContext(c)
	page, limit := pagination(c)

	feed, err := h.feedService.GetFollowingFeed(c.Request().Context(), userID, page, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, feed)
}

// GetExploreFeed returns the global ranked discovery feed
func (h *FeedHandler) GetExploreFeed(c echo.Context) error {
	userID := getUserIDFromContext(c)
	page, limit := pagination(c)

	feed, err := h.feedService.GetExploreFeed(c.Request().Context(), userID, page, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, feed)
}

// GetReelsFeed returns the ranked short-video feed
func (h *FeedHandler) GetReelsFeed(c echo.Context) error {
	userID := getUserIDFromContext(c)
	page, limit := pagination(c)

	feed, err := h.feedService.GetReelsFeed(c.Request().Context(), userID, page, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, feed)
}

// GetTrendingHashtags returns the current trending hashtag snapshot
func (h *FeedHandler) GetTrendingHashtags(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"hashtags": h.trendingCache.Top(),
	})
}

// pagination reads page/limit query params with the same defaults across
// all feed endpoints.
func pagination(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit == 0 {
		limit = 10
	}
	return page, limit
}
