package routes

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "tryon-service/pkg/errors"
	"tryon-service/pkg/metrics"
	"tryon-service/pkg/middleware"
	"tryon-service/pkg/storage"
	"tryon-service/pkg/validator"
)

const (
	kindMannequin = "mannequin"
	stageTicket   = "ticket"
	stageConfirm  = "confirm"
)

type MannequinRoutes struct {
	store    ObjectStore
	profiles ProfileStore
	metrics  *metrics.Metrics
}

func NewMannequinRoutes(store ObjectStore, profiles ProfileStore, metrics *metrics.Metrics) *MannequinRoutes {
	return &MannequinRoutes{
		store:    store,
		profiles: profiles,
		metrics:  metrics,
	}
}

func (mr *MannequinRoutes) recordUpload(stage string) {
	if mr.metrics != nil {
		mr.metrics.RecordUpload(kindMannequin, stage)
	}
}

// GetUploadURL issues a single-use signed PUT URL for the caller's mannequin
// image. The storage path is fixed per user, so a new upload overwrites the
// previous image.
func (mr *MannequinRoutes) GetUploadURL(c echo.Context) error {
	var req struct {
		Filename    string `json:"filename"`
		ContentType string `json:"contentType"`
		FileSize    int64  `json:"fileSize"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.Filename == "" || req.ContentType == "" || req.FileSize == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "filename, contentType, and fileSize are required"})
	}

	if _, err := validator.FileExtension(req.Filename); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := validator.FileSize(req.FileSize); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := validator.ContentType(req.ContentType); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	filePath := storage.MannequinKey(middleware.UIDFromContext(c))

	uploadURL, err := mr.store.SignedUploadURL(filePath, req.ContentType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to generate upload URL"})
	}

	mr.recordUpload(stageTicket)

	return c.JSON(http.StatusOK, map[string]any{
		"uploadUrl": uploadURL,
		"filePath":  filePath,
	})
}

// ConfirmUpload verifies the object landed in storage and records it on the
// caller's profile. Tickets for paths outside the caller's namespace are
// rejected.
func (mr *MannequinRoutes) ConfirmUpload(c echo.Context) error {
	var req struct {
		FilePath string `json:"filePath"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.FilePath == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "filePath is required"})
	}

	expectedPath := storage.MannequinKey(middleware.UIDFromContext(c))
	if req.FilePath != expectedPath {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "invalid filePath. path does not belong to authenticated user"})
	}

	exists, err := mr.store.ObjectExists(req.FilePath)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to check storage"})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "file not found in storage. upload may have failed"})
	}

	downloadURL, err := mr.store.SignedDownloadURL(req.FilePath)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to generate download URL"})
	}

	profile := middleware.ProfileFromContext(c)
	uploadedAt := time.Now().UTC().Truncate(time.Second)

	if err := mr.profiles.SetMannequin(c.Request().Context(), profile.ID, req.FilePath, downloadURL, uploadedAt); err != nil {
		return c.JSON(apperrors.HTTPStatus(err), map[string]string{"error": "failed to record mannequin"})
	}

	mr.recordUpload(stageConfirm)

	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"url":        downloadURL,
		"uploadedAt": uploadedAt,
	})
}

// GetMannequin returns the caller's mannequin image, or nulls when none is
// set. The download URL is regenerated on every read because signed URLs
// expire.
func (mr *MannequinRoutes) GetMannequin(c echo.Context) error {
	profile := middleware.ProfileFromContext(c)

	if profile.MannequinPath == nil {
		return c.JSON(http.StatusOK, map[string]any{
			"url":        nil,
			"uploadedAt": nil,
		})
	}

	downloadURL, err := mr.store.SignedDownloadURL(*profile.MannequinPath)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to generate download URL"})
	}

	if profile.MannequinURL == nil || downloadURL != *profile.MannequinURL {
		if err := mr.profiles.UpdateMannequinURL(c.Request().Context(), profile.ID, downloadURL); err != nil {
			log.Printf("failed to refresh mannequin url for profile %d: %v", profile.ID, err)
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"url":        downloadURL,
		"uploadedAt": profile.MannequinUploadedAt,
	})
}

// DeleteMannequin removes the mannequin object and clears the profile
// reference.
func (mr *MannequinRoutes) DeleteMannequin(c echo.Context) error {
	profile := middleware.ProfileFromContext(c)

	if profile.MannequinPath == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no mannequin image to delete"})
	}

	if err := mr.store.DeleteObject(*profile.MannequinPath); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete file from storage"})
	}

	if err := mr.profiles.ClearMannequin(c.Request().Context(), profile.ID); err != nil {
		return c.JSON(apperrors.HTTPStatus(err), map[string]string{"error": "failed to clear mannequin"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "mannequin image deleted successfully",
	})
}
