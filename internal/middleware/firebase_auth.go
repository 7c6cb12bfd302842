package middleware

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"github.com/pulsegram/backend/internal/repositories"
	"github.com/pulsegram/backend/pkg/apperrors"
)

// FirebaseAuthMiddleware creates an Echo middleware that verifies Firebase
// ID tokens and resolves the caller to an application user. The resolved
// user ID lands in the context under "userID".
func FirebaseAuthMiddleware(authClient *auth.Client, userRepo repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is missing")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
			}

			token, err := authClient.VerifyIDToken(c.Request().Context(), tokenParts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}

			user, err := userRepo.GetUserByFirebaseUID(token.UID)
			if err != nil {
				if apperrors.IsNotFound(err) {
					return echo.NewHTTPError(http.StatusUnauthorized, "No account for this token")
				}
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Temporarily unavailable, please retry")
			}

			c.Set("firebaseUID", token.UID)
			c.Set("userID", user.ID)

			return next(c)
		}
	}
}
