package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "tryon-service/pkg/errors"
)

// WardrobeItem is a confirmed clothing photo owned by one profile.
type WardrobeItem struct {
	ID         uuid.UUID `json:"id"`
	ProfileID  int64     `json:"-"`
	Category   string    `json:"category"`
	ImagePath  string    `json:"-"`
	ImageURL   string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type WardrobeRepository struct {
	db *sql.DB
}

func NewWardrobeRepository(db *sql.DB) *WardrobeRepository {
	return &WardrobeRepository{db: db}
}

const wardrobeColumns = `id, profile_id, category, image_path, image_url, uploaded_at`

// CreateItem inserts a confirmed wardrobe item and returns it with the
// database-assigned upload timestamp.
func (r *WardrobeRepository) CreateItem(ctx context.Context, id uuid.UUID, profileID int64, category, imagePath, imageURL string) (*WardrobeItem, error) {
	item := &WardrobeItem{}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO wardrobe_items (id, profile_id, category, image_path, image_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+wardrobeColumns,
		id, profileID, category, imagePath, imageURL,
	).Scan(&item.ID, &item.ProfileID, &item.Category, &item.ImagePath, &item.ImageURL, &item.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create wardrobe item: %w", err)
	}

	return item, nil
}

// ListByProfile returns the profile's wardrobe items, newest first. An empty
// category returns all items.
func (r *WardrobeRepository) ListByProfile(ctx context.Context, profileID int64, category string) ([]WardrobeItem, error) {
	query := `SELECT ` + wardrobeColumns + ` FROM wardrobe_items WHERE profile_id = $1`
	args := []any{profileID}
	if category != "" {
		query += ` AND category = $2`
		args = append(args, category)
	}
	query += ` ORDER BY uploaded_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list wardrobe items: %w", err)
	}
	defer rows.Close()

	items := []WardrobeItem{}
	for rows.Next() {
		var item WardrobeItem
		if err := rows.Scan(&item.ID, &item.ProfileID, &item.Category, &item.ImagePath, &item.ImageURL, &item.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wardrobe item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wardrobe items: %w", err)
	}

	return items, nil
}

// GetItem returns one item, enforcing ownership by profile id.
func (r *WardrobeRepository) GetItem(ctx context.Context, id uuid.UUID, profileID int64) (*WardrobeItem, error) {
	item := &WardrobeItem{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+wardrobeColumns+` FROM wardrobe_items WHERE id = $1 AND profile_id = $2`,
		id, profileID,
	).Scan(&item.ID, &item.ProfileID, &item.Category, &item.ImagePath, &item.ImageURL, &item.UploadedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("item not found or does not belong to user")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wardrobe item: %w", err)
	}

	return item, nil
}

// UpdateItemURL refreshes the cached download URL for an item.
func (r *WardrobeRepository) UpdateItemURL(ctx context.Context, id uuid.UUID, url string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE wardrobe_items SET image_url = $1 WHERE id = $2`,
		url, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update item url: %w", err)
	}

	return requireRowAffected(result, "item not found")
}

// DeleteItem removes one item, enforcing ownership by profile id.
func (r *WardrobeRepository) DeleteItem(ctx context.Context, id uuid.UUID, profileID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM wardrobe_items WHERE id = $1 AND profile_id = $2`,
		id, profileID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete wardrobe item: %w", err)
	}

	return requireRowAffected(result, "item not found or does not belong to user")
}
