package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperrors "tryon-service/pkg/errors"
)

// Profile is the backend-side record for an identity provider account. The
// mannequin columns are nil until the user confirms a mannequin upload.
type Profile struct {
	ID                  int64      `json:"id"`
	ProviderUID         string     `json:"providerUid"`
	Email               string     `json:"email"`
	MannequinPath       *string    `json:"-"`
	MannequinURL        *string    `json:"-"`
	MannequinUploadedAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, provider_uid, email, mannequin_path, mannequin_url, mannequin_uploaded_at, created_at, updated_at`

func (r *ProfileRepository) scanProfile(row *sql.Row) (*Profile, error) {
	p := &Profile{}
	err := row.Scan(
		&p.ID,
		&p.ProviderUID,
		&p.Email,
		&p.MannequinPath,
		&p.MannequinURL,
		&p.MannequinUploadedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByProviderUID returns the profile for a provider uid.
func (r *ProfileRepository) GetByProviderUID(ctx context.Context, providerUID string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE provider_uid = $1`,
		providerUID,
	)

	profile, err := r.scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("profile not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

// GetOrCreate returns the profile for a provider uid, provisioning it on the
// first authenticated request. Concurrent first requests for the same uid are
// resolved by the unique constraint: the losing insert falls back to a read.
func (r *ProfileRepository) GetOrCreate(ctx context.Context, providerUID, email string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO user_profiles (provider_uid, email)
		 VALUES ($1, $2)
		 ON CONFLICT (provider_uid) DO NOTHING
		 RETURNING `+profileColumns,
		providerUID, email,
	)

	profile, err := r.scanProfile(row)
	if err == sql.ErrNoRows {
		// Insert lost to an existing row; read it instead.
		return r.GetByProviderUID(ctx, providerUID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return profile, nil
}

// SetMannequin records a confirmed mannequin upload on the profile.
func (r *ProfileRepository) SetMannequin(ctx context.Context, profileID int64, path, url string, uploadedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE user_profiles
		 SET mannequin_path = $1, mannequin_url = $2, mannequin_uploaded_at = $3, updated_at = now()
		 WHERE id = $4`,
		path, url, uploadedAt, profileID,
	)
	if err != nil {
		return fmt.Errorf("failed to set mannequin: %w", err)
	}

	return requireRowAffected(result, "profile not found")
}

// UpdateMannequinURL refreshes the cached download URL without touching the
// upload timestamp.
func (r *ProfileRepository) UpdateMannequinURL(ctx context.Context, profileID int64, url string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE user_profiles
		 SET mannequin_url = $1, updated_at = now()
		 WHERE id = $2`,
		url, profileID,
	)
	if err != nil {
		return fmt.Errorf("failed to update mannequin url: %w", err)
	}

	return requireRowAffected(result, "profile not found")
}

// ClearMannequin removes the mannequin reference from the profile.
func (r *ProfileRepository) ClearMannequin(ctx context.Context, profileID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE user_profiles
		 SET mannequin_path = NULL, mannequin_url = NULL, mannequin_uploaded_at = NULL, updated_at = now()
		 WHERE id = $1`,
		profileID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear mannequin: %w", err)
	}

	return requireRowAffected(result, "profile not found")
}

func requireRowAffected(result sql.Result, notFoundMsg string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFound(notFoundMsg)
	}
	return nil
}
