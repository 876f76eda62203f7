package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"tryon-service/pkg/auth"
	"tryon-service/pkg/repository"
)

// Context keys set by BearerAuth.
const (
	ContextKeyUID     = "provider_uid"
	ContextKeyEmail   = "email"
	ContextKeyProfile = "profile"
)

// TokenVerifier validates identity provider bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// ProfileProvider resolves (and on first contact provisions) the backend
// profile for a provider uid.
type ProfileProvider interface {
	GetOrCreate(ctx context.Context, providerUID, email string) (*repository.Profile, error)
}

// BearerAuth validates the identity provider's ID token and attaches the
// provider uid, email and backend profile to the request context.
func BearerAuth(verifier TokenVerifier, profiles ProfileProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			}

			if profiles != nil {
				profile, err := profiles.GetOrCreate(c.Request().Context(), claims.UID(), claims.Email)
				if err != nil {
					return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to resolve user profile"})
				}
				c.Set(ContextKeyProfile, profile)
			}

			// Store identity info in context
			c.Set(ContextKeyUID, claims.UID())
			c.Set(ContextKeyEmail, claims.Email)

			return next(c)
		}
	}
}

// ProfileFromContext returns the profile attached by BearerAuth, or nil when
// the route is not behind the middleware.
func ProfileFromContext(c echo.Context) *repository.Profile {
	profile, _ := c.Get(ContextKeyProfile).(*repository.Profile)
	return profile
}

// UIDFromContext returns the provider uid attached by BearerAuth.
func UIDFromContext(c echo.Context) string {
	uid, _ := c.Get(ContextKeyUID).(string)
	return uid
}
