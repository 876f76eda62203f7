// Package validator enforces the file and category constraints shared by the
// upload endpoints and the client SDK's advisory pre-checks. The server is
// always the authority; clients run the same checks to fail fast.
package validator

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	MaxFileSizeMB    = 10
	MaxFileSizeBytes = int64(MaxFileSizeMB * 1024 * 1024)

	maxFileNameLen = 255

	errFilenameEmptyFmt      = "filename cannot be empty"
	errFilenameMaxLengthFmt  = "filename must not exceed %d characters"
	errFilenamePathSepFmt    = "filename cannot contain path separators"
	errFilenameNoExtFmt      = "filename must have an extension"
	errExtensionInvalidFmt   = "invalid file type. allowed types: %s"
	errContentTypeInvalidFmt = "invalid content type. must be one of: %s"
	errFileSizeNonPositive   = "file size must be positive"
	errFileSizeMaxFmt        = "file size must be less than %dMB"
	errCategoryInvalidFmt    = "invalid category. must be one of: %s"
)

// Allowed image file extensions, lower-cased, without the leading dot.
var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"heic": true,
	"heif": true,
	"webp": true,
}

// Standard MIME types matching the extension allow-list.
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/heic": true,
	"image/heif": true,
	"image/webp": true,
}

// Wardrobe item categories.
var validCategories = []string{"top", "bottom"}

// FileExtension validates the filename and returns its lower-cased extension
// without the leading dot.
func FileExtension(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf(errFilenameEmptyFmt)
	}
	if len(filename) > maxFileNameLen {
		return "", fmt.Errorf(errFilenameMaxLengthFmt, maxFileNameLen)
	}
	if strings.ContainsAny(filename, "/\\") {
		return "", fmt.Errorf(errFilenamePathSepFmt)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return "", fmt.Errorf(errFilenameNoExtFmt)
	}
	if !allowedExtensions[ext] {
		return "", fmt.Errorf(errExtensionInvalidFmt, strings.Join(AllowedExtensions(), ", "))
	}

	return ext, nil
}

// ContentType validates a declared MIME type against the image allow-list.
func ContentType(contentType string) error {
	if !allowedContentTypes[contentType] {
		return fmt.Errorf(errContentTypeInvalidFmt, strings.Join(AllowedContentTypes(), ", "))
	}
	return nil
}

// FileSize validates an upload size in bytes.
func FileSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf(errFileSizeNonPositive)
	}
	if size > MaxFileSizeBytes {
		return fmt.Errorf(errFileSizeMaxFmt, MaxFileSizeMB)
	}
	return nil
}

// Category validates a wardrobe category.
func Category(category string) error {
	for _, c := range validCategories {
		if category == c {
			return nil
		}
	}
	return fmt.Errorf(errCategoryInvalidFmt, strings.Join(validCategories, ", "))
}

// AllowedExtensions returns the extension allow-list in stable order.
func AllowedExtensions() []string {
	return []string{"jpg", "jpeg", "png", "heic", "heif", "webp"}
}

// AllowedContentTypes returns the MIME allow-list in stable order.
func AllowedContentTypes() []string {
	return []string{"image/jpeg", "image/png", "image/heic", "image/heif", "image/webp"}
}

// Categories returns the valid wardrobe categories.
func Categories() []string {
	return append([]string(nil), validCategories...)
}
