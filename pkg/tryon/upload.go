package tryon

import (
	"context"
	"io"
	"net/http"

	"tryon-service/pkg/validator"
)

// File is a local image staged for upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

const (
	classMannequin = "mannequin"
	classWardrobe  = "wardrobe"
)

// AssetClass selects the target of an upload: the mannequin singleton, or a
// wardrobe category.
type AssetClass struct {
	kind     string
	category Category
}

func MannequinClass() AssetClass {
	return AssetClass{kind: classMannequin}
}

func WardrobeClass(category Category) AssetClass {
	return AssetClass{kind: classWardrobe, category: category}
}

func (a AssetClass) String() string {
	if a.kind == classWardrobe {
		return classWardrobe + "/" + string(a.category)
	}
	return a.kind
}

// UploadAsset runs the three-step signed-URL upload flow: request a ticket
// from the backend, PUT the bytes directly to object storage, confirm with
// the backend. Steps are strictly sequential; any failure aborts the
// remaining steps and the ticket is discarded unused. On success the
// canonical Asset is returned exactly as the backend produced it; nothing is
// synthesized locally.
func (c *Client) UploadAsset(ctx context.Context, file File, class AssetClass) (*Asset, error) {
	if err := validateFile(file, class); err != nil {
		return nil, err
	}

	ticket, err := c.requestTicket(ctx, file, class)
	if err != nil {
		return nil, err
	}

	if err := c.transferBytes(ctx, ticket.UploadURL, file); err != nil {
		// The ticket is single-use; it must not be retried here.
		return nil, err
	}

	asset, err := c.confirmUpload(ctx, ticket, class)
	if err != nil {
		// The object may already exist in storage without an asset
		// record. Reconciliation is the backend's job; the flow only
		// reports it.
		return nil, newFailure(FailureOrphanedUpload, "upload completed but confirmation failed", err)
	}

	return asset, nil
}

// validateFile runs the advisory client-side checks. The server re-validates
// everything; this only fails fast before any network call.
func validateFile(file File, class AssetClass) error {
	if file.Body == nil {
		return newFailure(FailureValidation, "no file provided", nil)
	}
	if _, err := validator.FileExtension(file.Name); err != nil {
		return newFailure(FailureValidation, err.Error(), nil)
	}
	if err := validator.FileSize(file.Size); err != nil {
		return newFailure(FailureValidation, err.Error(), nil)
	}
	if err := validator.ContentType(file.ContentType); err != nil {
		return newFailure(FailureValidation, err.Error(), nil)
	}
	if class.kind == classWardrobe {
		if err := validator.Category(string(class.category)); err != nil {
			return newFailure(FailureValidation, err.Error(), nil)
		}
	}
	return nil
}

func (c *Client) requestTicket(ctx context.Context, file File, class AssetClass) (*UploadTicket, error) {
	if class.kind == classWardrobe {
		return c.CreateWardrobeTicket(ctx, class.category, file.Name, file.ContentType, file.Size)
	}
	return c.CreateMannequinTicket(ctx, file.Name, file.ContentType, file.Size)
}

// transferBytes PUTs the raw file to the signed URL. This talks straight to
// the storage provider: no backend, no bearer token.
func (c *Client) transferBytes(ctx context.Context, uploadURL string, file File) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, file.Body)
	if err != nil {
		return newFailure(FailureNetwork, "failed to build storage request", err)
	}
	req.Header.Set("Content-Type", file.ContentType)
	req.ContentLength = file.Size

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return newFailure(FailureNetwork, "storage upload timed out", err)
		}
		return newFailure(FailureNetwork, "storage upload failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return newFailure(FailureServer, "storage rejected the upload", nil)
	}
	return nil
}

func (c *Client) confirmUpload(ctx context.Context, ticket *UploadTicket, class AssetClass) (*Asset, error) {
	if class.kind == classWardrobe {
		return c.ConfirmWardrobe(ctx, ticket.ItemID, ticket.FilePath)
	}
	return c.ConfirmMannequin(ctx, ticket.FilePath)
}
