package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulsegram/backend/internal/services"
)

// AnalyticsHandler handles HTTP requests for per-post analytics
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// RegisterAnalyticsRoutes registers analytics-related routes
func (h *AnalyticsHandler) RegisterAnalyticsRoutes(g *echo.Group) {
	g.GET("/posts/:id/analytics", h.GetPostAnalytics)
}

// GetPostAnalytics returns the engagement breakdown for one of the
// current user's posts
func (h *AnalyticsHandler) GetPostAnalytics(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID := c.Param("id")

	analytics, err := h.analyticsService.GetPostAnalytics(c.Request().Context(), userID, postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, analytics)
}
