// Package storage wraps the S3 object store behind the operations the asset
// flows need: signed PUT/GET URLs, existence checks and deletes.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"tryon-service/config"
)

const notFoundCode = "NotFound"

// Store represents the Amazon S3 backed object store.
type Store struct {
	bucketName  string
	svc         *s3.S3
	uploadTTL   time.Duration
	downloadTTL time.Duration
}

// NewStore creates a new Store from the application configuration.
func NewStore(config *config.Config) (*Store, error) {
	// Create a new AWS session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AwsAccessKeyID,
			config.AwsSecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, err
	}

	return &Store{
		bucketName:  config.BucketName,
		svc:         s3.New(sess),
		uploadTTL:   config.UploadURLExpiry,
		downloadTTL: config.DownloadURLExpiry,
	}, nil
}

// SignedUploadURL returns a presigned PUT URL bound to the declared content
// type. The client must send the same Content-Type header or storage rejects
// the write.
func (s *Store) SignedUploadURL(key, contentType string) (string, error) {
	req, _ := s.svc.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})

	url, err := req.Presign(s.uploadTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return url, nil
}

// SignedDownloadURL returns a presigned GET URL for an existing object.
func (s *Store) SignedDownloadURL(key string) (string, error) {
	req, _ := s.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})

	url, err := req.Presign(s.downloadTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}

	return url, nil
}

// ObjectExists reports whether an object is physically present at key.
func (s *Store) ObjectExists(key string) (bool, error) {
	_, err := s.svc.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && (aerr.Code() == notFoundCode || aerr.Code() == s3.ErrCodeNoSuchKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DeleteObject removes an object. Deleting a missing key is not an error.
func (s *Store) DeleteObject(key string) error {
	_, err := s.svc.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	return err
}

// MannequinKey returns the storage path for a user's mannequin image. The
// path is fixed per user, so a new upload overwrites the previous image.
func MannequinKey(uid string) string {
	return fmt.Sprintf("users/%s/mannequin", uid)
}

// WardrobeItemKey returns the storage path for a wardrobe item image, e.g.
// users/{uid}/wardrobe/tops/{itemId}.jpg.
func WardrobeItemKey(uid, category, itemID, extension string) string {
	return fmt.Sprintf("users/%s/wardrobe/%ss/%s.%s", uid, category, itemID, extension)
}

// WardrobePrefix returns the storage prefix that owns all wardrobe items of a
// user. Confirm handlers use it for path ownership checks.
func WardrobePrefix(uid string) string {
	return fmt.Sprintf("users/%s/wardrobe/", uid)
}

// KeyInWardrobe reports whether a storage key lies inside the user's
// wardrobe namespace.
func KeyInWardrobe(key, uid string) bool {
	return strings.HasPrefix(key, WardrobePrefix(uid))
}

// CategoryFromKey extracts the category segment ("top" or "bottom") from a
// wardrobe item key, or an empty string when the key has no such segment.
func CategoryFromKey(key string) string {
	parts := strings.Split(key, "/")
	if len(parts) < 4 {
		return ""
	}
	return strings.TrimSuffix(parts[3], "s")
}
