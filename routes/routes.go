package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"tryon-service/config"
	"tryon-service/pkg/metrics"
	"tryon-service/pkg/middleware"
	"tryon-service/pkg/repository"
)

// ObjectStore is the slice of the storage backend the handlers need.
type ObjectStore interface {
	SignedUploadURL(key, contentType string) (string, error)
	SignedDownloadURL(key string) (string, error)
	ObjectExists(key string) (bool, error)
	DeleteObject(key string) error
}

// ProfileStore persists mannequin state on user profiles.
type ProfileStore interface {
	GetOrCreate(ctx context.Context, providerUID, email string) (*repository.Profile, error)
	SetMannequin(ctx context.Context, profileID int64, path, url string, uploadedAt time.Time) error
	UpdateMannequinURL(ctx context.Context, profileID int64, url string) error
	ClearMannequin(ctx context.Context, profileID int64) error
}

// WardrobeStore persists wardrobe item records.
type WardrobeStore interface {
	CreateItem(ctx context.Context, id uuid.UUID, profileID int64, category, imagePath, imageURL string) (*repository.WardrobeItem, error)
	ListByProfile(ctx context.Context, profileID int64, category string) ([]repository.WardrobeItem, error)
	GetItem(ctx context.Context, id uuid.UUID, profileID int64) (*repository.WardrobeItem, error)
	UpdateItemURL(ctx context.Context, id uuid.UUID, url string) error
	DeleteItem(ctx context.Context, id uuid.UUID, profileID int64) error
}

// Dependencies carries everything RegisterRoutes wires together.
type Dependencies struct {
	Config   *config.Config
	Storage  ObjectStore
	Profiles ProfileStore
	Wardrobe WardrobeStore
	Verifier middleware.TokenVerifier
	Metrics  *metrics.Metrics
	Limiter  *middleware.RateLimiter
}

// RegisterRoutes registers all the routes for the application
func RegisterRoutes(e *echo.Echo, deps *Dependencies) {
	// Define route for testing the server
	e.GET("/ping", ping)

	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware())
		e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))
	}

	api := e.Group("/api/auth", middleware.BearerAuth(deps.Verifier, deps.Profiles))
	if deps.Limiter != nil {
		api.Use(deps.Limiter.Middleware())
	}

	userRoutes := NewUserRoutes()
	api.GET("/me", userRoutes.Me)

	mannequinRoutes := NewMannequinRoutes(deps.Storage, deps.Profiles, deps.Metrics)
	api.POST("/mannequin/upload-url", mannequinRoutes.GetUploadURL)
	api.POST("/mannequin/confirm", mannequinRoutes.ConfirmUpload)
	api.GET("/mannequin", mannequinRoutes.GetMannequin)
	api.DELETE("/mannequin/delete", mannequinRoutes.DeleteMannequin)

	wardrobeRoutes := NewWardrobeRoutes(deps.Storage, deps.Wardrobe, deps.Metrics)
	api.POST("/wardrobe/upload-url", wardrobeRoutes.GetUploadURL)
	api.POST("/wardrobe/confirm", wardrobeRoutes.ConfirmUpload)
	api.GET("/wardrobe", wardrobeRoutes.ListItems)
	api.DELETE("/wardrobe/:itemId", wardrobeRoutes.DeleteItem)
}

func ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "try-on asset service is running",
	})
}
