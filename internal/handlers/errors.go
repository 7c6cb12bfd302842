package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulsegram/backend/pkg/apperrors"
)

// httpError maps an application error onto the HTTP status the client
// should see. Store outages become a retryable 503.
func httpError(err error) *echo.HTTPError {
	switch {
	case apperrors.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, apperrors.GetMessage(err))
	case apperrors.IsForbidden(err):
		return echo.NewHTTPError(http.StatusForbidden, apperrors.GetMessage(err))
	case apperrors.IsValidation(err):
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.GetMessage(err))
	case apperrors.IsStoreUnavailable(err):
		return echo.NewHTTPError(http.StatusServiceUnavailable, map[string]any{
			"message":   "Temporarily unavailable, please retry",
			"retryable": true,
		})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, apperrors.GetMessage(err))
	}
}

// getUserIDFromContext returns the authenticated user's ID set by the auth
// middleware.
func getUserIDFromContext(c echo.Context) uint {
	if id, ok := c.Get("userID").(uint); ok {
		return id
	}
	return 0
}
