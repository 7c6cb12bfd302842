package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/notify"
	"github.com/pulsegram/backend/internal/repositories"
	"github.com/pulsegram/backend/internal/services"
	"github.com/pulsegram/backend/pkg/logger"
)

// FollowHandler handles HTTP requests for the follow and block graph
type FollowHandler struct {
	followRepository repositories.FollowRepository
	feedService      *services.FeedService
	dispatcher       notify.Dispatcher
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, feedService *services.FeedService, dispatcher notify.Dispatcher) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		feedService:      feedService,
		dispatcher:       dispatcher,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.PUT("/users/:id/follow", h.Follow)
	g.DELETE("/users/:id/follow", h.Unfollow)
	g.PUT("/users/:id/block", h.Block)
	g.DELETE("/users/:id/block", h.Unblock)
}

func targetUserID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	return uint(id), nil
}

// Follow makes the current user follow the target user
func (h *FollowHandler) Follow(c echo.Context) error {
	userID := getUserIDFromContext(c)
	targetID, err := targetUserID(c)
	if err != nil {
		return err
	}
	if targetID == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}

	already, err := h.followRepository.IsFollowing(userID, targetID)
	if err != nil {
		return httpError(err)
	}
	if !already {
		if err := h.followRepository.CreateFollow(&models.Follow{FollowerID: userID, FollowingID: targetID}); err != nil {
			return httpError(err)
		}
		if err := h.dispatcher.Enqueue(c.Request().Context(), models.Notification{
			Type:        models.NotificationFollow,
			ActorID:     userID,
			RecipientID: targetID,
			TargetID:    strconv.FormatUint(uint64(userID), 10),
			TargetType:  "user",
			Title:       "New follower",
			Message:     "started following you",
		}); err != nil {
			logger.Log.Warnf("failed to enqueue follow notification: %v", err)
		}
	}

	h.feedService.InvalidateFollowingFeed(c.Request().Context(), userID)

	return c.JSON(http.StatusOK, map[string]any{"following": true})
}

// Unfollow makes the current user unfollow the target user
func (h *FollowHandler) Unfollow(c echo.Context) error {
	userID := getUserIDFromContext(c)
	targetID, err := targetUserID(c)
	if err != nil {
		return err
	}

	if err := h.followRepository.DeleteFollow(userID, targetID); err != nil {
		return httpError(err)
	}
	h.feedService.InvalidateFollowingFeed(c.Request().Context(), userID)

	return c.JSON(http.StatusOK, map[string]any{"following": false})
}

// Block hides the target user's posts from every feed of the current user
func (h *FollowHandler) Block(c echo.Context) error {
	userID := getUserIDFromContext(c)
	targetID, err := targetUserID(c)
	if err != nil {
		return err
	}
	if targetID == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot block yourself")
	}

	if err := h.followRepository.CreateBlock(&models.Block{BlockerID: userID, BlockedID: targetID}); err != nil {
		return httpError(err)
	}
	// Blocking also severs any follow in either direction.
	if err := h.followRepository.DeleteFollow(userID, targetID); err != nil {
		logger.Log.Warnf("failed to remove follow after block: %v", err)
	}
	if err := h.followRepository.DeleteFollow(targetID, userID); err != nil {
		logger.Log.Warnf("failed to remove reverse follow after block: %v", err)
	}
	h.feedService.InvalidateFollowingFeed(c.Request().Context(), userID)

	return c.JSON(http.StatusOK, map[string]any{"blocked": true})
}

// Unblock lifts a block placed by the current user
func (h *FollowHandler) Unblock(c echo.Context) error {
	userID := getUserIDFromContext(c)
	targetID, err := targetUserID(c)
	if err != nil {
		return err
	}

	if err := h.followRepository.DeleteBlock(userID, targetID); err != nil {
		return httpError(err)
	}
	h.feedService.InvalidateFollowingFeed(c.Request().Context(), userID)

	return c.JSON(http.StatusOK, map[string]any{"blocked": false})
}
