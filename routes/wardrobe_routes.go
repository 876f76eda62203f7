package routes

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "tryon-service/pkg/errors"
	"tryon-service/pkg/metrics"
	"tryon-service/pkg/middleware"
	"tryon-service/pkg/storage"
	"tryon-service/pkg/validator"
)

const kindWardrobe = "wardrobe"

type WardrobeRoutes struct {
	store    ObjectStore
	wardrobe WardrobeStore
	metrics  *metrics.Metrics
}

func NewWardrobeRoutes(store ObjectStore, wardrobe WardrobeStore, metrics *metrics.Metrics) *WardrobeRoutes {
	return &WardrobeRoutes{
		store:    store,
		wardrobe: wardrobe,
		metrics:  metrics,
	}
}

func (wr *WardrobeRoutes) recordUpload(stage string) {
	if wr.metrics != nil {
		wr.metrics.RecordUpload(kindWardrobe, stage)
	}
}

// GetUploadURL issues a signed PUT URL for a new wardrobe item. Each ticket
// mints a fresh item id; items accumulate rather than replace.
func (wr *WardrobeRoutes) GetUploadURL(c echo.Context) error {
	var req struct {
		Category    string `json:"category"`
		Filename    string `json:"filename"`
		ContentType string `json:"contentType"`
		FileSize    int64  `json:"fileSize"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.Category == "" || req.Filename == "" || req.ContentType == "" || req.FileSize == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "category, filename, contentType, and fileSize are required"})
	}

	if err := validator.Category(req.Category); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	extension, err := validator.FileExtension(req.Filename)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := validator.FileSize(req.FileSize); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := validator.ContentType(req.ContentType); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	itemID := uuid.New()
	filePath := storage.WardrobeItemKey(middleware.UIDFromContext(c), req.Category, itemID.String(), extension)

	uploadURL, err := wr.store.SignedUploadURL(filePath, req.ContentType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to generate upload URL"})
	}

	wr.recordUpload(stageTicket)

	return c.JSON(http.StatusOK, map[string]any{
		"uploadUrl": uploadURL,
		"itemId":    itemID.String(),
		"filePath":  filePath,
	})
}

// ConfirmUpload verifies the object landed in storage and creates the
// wardrobe item record. The category is derived from the storage path the
// ticket was issued for.
func (wr *WardrobeRoutes) ConfirmUpload(c echo.Context) error {
	var req struct {
		ItemID   string `json:"itemId"`
		FilePath string `json:"filePath"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.ItemID == "" || req.FilePath == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "itemId and filePath are required"})
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid itemId format"})
	}

	uid := middleware.UIDFromContext(c)
	if !storage.KeyInWardrobe(req.FilePath, uid) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "invalid filePath. path does not belong to authenticated user"})
	}

	category := storage.CategoryFromKey(req.FilePath)
	if err := validator.Category(category); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid category in filePath"})
	}

	exists, err := wr.store.ObjectExists(req.FilePath)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to check storage"})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "file not found in storage. upload may have failed"})
	}

	downloadURL, err := wr.store.SignedDownloadURL(req.FilePath)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to generate download URL"})
	}

	profile := middleware.ProfileFromContext(c)

	item, err := wr.wardrobe.CreateItem(c.Request().Context(), itemID, profile.ID, category, req.FilePath, downloadURL)
	if err != nil {
		return c.JSON(apperrors.HTTPStatus(err), map[string]string{"error": "failed to record wardrobe item"})
	}

	wr.recordUpload(stageConfirm)

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"item":    item,
	})
}

// ListItems returns the caller's wardrobe, optionally filtered by category,
// newest first. Download URLs are refreshed on every read.
func (wr *WardrobeRoutes) ListItems(c echo.Context) error {
	category := c.QueryParam("category")
	if category != "" {
		if err := validator.Category(category); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}

	profile := middleware.ProfileFromContext(c)

	items, err := wr.wardrobe.ListByProfile(c.Request().Context(), profile.ID, category)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list wardrobe items"})
	}

	for i := range items {
		freshURL, err := wr.store.SignedDownloadURL(items[i].ImagePath)
		if err != nil {
			log.Printf("failed to refresh url for item %s: %v", items[i].ID, err)
			continue
		}
		if freshURL != items[i].ImageURL {
			items[i].ImageURL = freshURL
			if err := wr.wardrobe.UpdateItemURL(c.Request().Context(), items[i].ID, freshURL); err != nil {
				log.Printf("failed to persist refreshed url for item %s: %v", items[i].ID, err)
			}
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

// DeleteItem removes one wardrobe item. The storage delete is best-effort;
// the record delete is authoritative.
func (wr *WardrobeRoutes) DeleteItem(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid item ID format"})
	}

	profile := middleware.ProfileFromContext(c)

	item, err := wr.wardrobe.GetItem(c.Request().Context(), itemID, profile.ID)
	if err != nil {
		return c.JSON(apperrors.HTTPStatus(err), map[string]string{"error": "item not found or does not belong to user"})
	}

	if err := wr.store.DeleteObject(item.ImagePath); err != nil {
		log.Printf("failed to delete object %s from storage: %v", item.ImagePath, err)
	}

	if err := wr.wardrobe.DeleteItem(c.Request().Context(), itemID, profile.ID); err != nil {
		return c.JSON(apperrors.HTTPStatus(err), map[string]string{"error": "failed to delete wardrobe item"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "item deleted successfully",
	})
}
