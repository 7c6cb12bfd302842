package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/repositories"
	"github.com/pulsegram/backend/internal/services"
	"github.com/pulsegram/backend/pkg/logger"
	"github.com/pulsegram/backend/pkg/mediastore"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository   repositories.PostRepository
	followRepository repositories.FollowRepository
	feedService      *services.FeedService
	mediaStore       mediastore.Store
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, followRepo repositories.FollowRepository, feedService *services.FeedService, mediaStore mediastore.Store) *PostHandler {
	return &PostHandler{
		postRepository:   postRepo,
		followRepository: followRepo,
		feedService:      feedService,
		mediaStore:       mediaStore,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/posts", h.GetPosts)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	media := req.NormalizeMedia()
	if len(media) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "A post needs at least one media item")
	}
	if len(media) > 10 {
		return echo.NewHTTPError(http.StatusBadRequest, "A post can carry at most 10 media items")
	}

	now := time.Now()
	status := models.StatusReady
	switch {
	case req.Draft:
		status = models.StatusDraft
	case req.ScheduledFor != nil && req.ScheduledFor.After(now):
		status = models.StatusScheduled
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}

	post := &models.Post{
		AuthorID:     userID,
		Caption:      req.Caption,
		Media:        media,
		Visibility:   visibility,
		Status:       status,
		ScheduledFor: req.ScheduledFor,
		Hashtags:     models.ExtractHashtags(req.Caption),
		IsReel:       models.DeriveIsReel(media),
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID. Drafts and scheduled posts are only
// visible to their author.
func (h *PostHandler) GetPost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}
	if post.Status != models.StatusReady && post.AuthorID != userID {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	return c.JSON(http.StatusOK, post)
}

// GetPosts retrieves posts by author. The author sees all of their posts;
// everyone else sees only ready public posts, plus followers-only posts
// when they follow the author.
func (h *PostHandler) GetPosts(c echo.Context) error {
	userID := getUserIDFromContext(c)
	authorID, err := strconv.ParseUint(c.QueryParam("author_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "author_id is required")
	}
	skip, _ := strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit == 0 {
		limit = 10
	}

	var visibilities []string
	if uint(authorID) != userID {
		visibilities = []string{models.VisibilityPublic}
		follows, err := h.followRepository.IsFollowing(userID, uint(authorID))
		if err != nil {
			return httpError(err)
		}
		if follows {
			visibilities = append(visibilities, models.VisibilityFollowers)
		}
	}

	posts, err := h.postRepository.GetPostsByAuthor(c.Request().Context(), uint(authorID), visibilities, skip, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// DeletePost soft deletes a post owned by the current user and releases
// its media
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}
	if post.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.postRepository.SoftDeletePost(c.Request().Context(), postID); err != nil {
		return httpError(err)
	}

	// Media release is best effort; the post is already gone for readers.
	for _, url := range post.AllMediaURLs() {
		if err := h.mediaStore.Delete(c.Request().Context(), url); err != nil {
			logger.Log.Warnf("failed to release media %s: %v", url, err)
		}
	}

	h.feedService.InvalidateSharedFeeds(c.Request().Context())

	return c.NoContent(http.StatusNoContent)
}
