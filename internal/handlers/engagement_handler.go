package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulsegram/backend/internal/services"
)

// EngagementHandler handles HTTP requests for engagement actions on posts
type EngagementHandler struct {
	engagementService *services.EngagementService
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(engagementService *services.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagementService: engagementService}
}

// RegisterEngagementRoutes registers engagement-related routes
func (h *EngagementHandler) RegisterEngagementRoutes(g *echo.Group) {
	g.PUT("/posts/:id/like", h.ToggleLike)
	g.PUT("/posts/:id/bookmark", h.ToggleBookmark)
	g.POST("/posts/:id/share", h.RecordShare)
	g.POST("/posts/:id/watch", h.RecordWatch)
}

// WatchRequest is the payload for a video watch report
type WatchRequest struct {
	WatchTime         float64 `json:"watch_time" validate:"min=0"`
	CompletionPercent float64 `json:"completion_percent" validate:"min=0,max=100"`
}

// ToggleLike likes or unlikes a post for the current user
func (h *EngagementHandler) ToggleLike(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	liked, likeCount, err := h.engagementService.ToggleLike(c.Request().Context(), userID, postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"liked":      liked,
		"like_count": likeCount,
	})
}

// ToggleBookmark saves or unsaves a post for the current user
func (h *EngagementHandler) ToggleBookmark(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	saved, saveCount, err := h.engagementService.ToggleBookmark(c.Request().Context(), userID, postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"saved":      saved,
		"save_count": saveCount,
	})
}

// RecordShare records one share of a post
func (h *EngagementHandler) RecordShare(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	shareCount, err := h.engagementService.RecordShare(c.Request().Context(), userID, postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"share_count": shareCount,
	})
}

// RecordWatch records a video view with watch time and completion
func (h *EngagementHandler) RecordWatch(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	var req WatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	viewCount, err := h.engagementService.RecordWatch(c.Request().Context(), userID, postID, req.WatchTime, req.CompletionPercent)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"view_count": viewCount,
	})
}
