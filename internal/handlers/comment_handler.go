package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pulsegram/backend/internal/repositories"
	"github.com/pulsegram/backend/internal/services"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	engagementService *services.EngagementService
	commentRepository repositories.CommentRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(engagementService *services.EngagementService, commentRepo repositories.CommentRepository) *CommentHandler {
	return &CommentHandler{
		engagementService: engagementService,
		commentRepository: commentRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.AddComment)
	g.GET("/posts/:id/comments", h.GetComments)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// AddCommentRequest is the payload for creating a comment
type AddCommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// AddComment creates a comment on a post
func (h *CommentHandler) AddComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	var req AddCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, commentCount, err := h.engagementService.AddComment(c.Request().Context(), userID, postID, req.Content)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"comment":       comment,
		"comment_count": commentCount,
	})
}

// GetComments lists comments on a post
func (h *CommentHandler) GetComments(c echo.Context) error {
	postID := c.Param("id")
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit == 0 {
		limit = 20
	}

	comments, err := h.commentRepository.GetCommentsByPostID(postID, page, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, comments)
}

// DeleteComment deletes one of the current user's comments and reverses
// its counter contribution
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	commentCount, err := h.engagementService.DeleteComment(c.Request().Context(), userID, uint(commentID))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"comment_count": commentCount,
	})
}
