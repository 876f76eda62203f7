package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tryon-service/pkg/middleware"
)

type UserRoutes struct{}

func NewUserRoutes() *UserRoutes {
	return &UserRoutes{}
}

// Me returns the authenticated user's backend profile.
func (ur *UserRoutes) Me(c echo.Context) error {
	profile := middleware.ProfileFromContext(c)

	return c.JSON(http.StatusOK, map[string]any{
		"id":          profile.ID,
		"email":       profile.Email,
		"providerUid": profile.ProviderUID,
		"createdAt":   profile.CreatedAt,
	})
}
