package storage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/config"
)

// downloadURLExpiry matches the one-hour validity the upload clients
// are told to expect.
const downloadURLExpiry = time.Hour

// Store is the content-store client. Object keys are bucket-relative
// paths; public URLs are derived from the endpoint and bucket.
type Store struct {
	client   *minio.Client
	endpoint string
	bucket   string
	useSSL   bool
}

func NewStore(cfg *config.StorageConfig) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &Store{
		client:   client,
		endpoint: cfg.Endpoint,
		bucket:   cfg.Bucket,
		useSSL:   cfg.UseSSL,
	}, nil
}

// SignedDownloadURL returns a time-limited URL for reading an object.
func (s *Store) SignedDownloadURL(ctx context.Context, objectPath string) (string, error) {
	signed, err := s.client.PresignedGetObject(ctx, s.bucket, objectPath, downloadURLExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to sign download url for %s: %w", objectPath, err)
	}
	return signed.String(), nil
}

// SignedUploadURL returns a time-limited URL a client can PUT an
// object to.
func (s *Store) SignedUploadURL(ctx context.Context, objectPath string) (string, error) {
	signed, err := s.client.PresignedPutObject(ctx, s.bucket, objectPath, downloadURLExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign upload url for %s: %w", objectPath, err)
	}
	return signed.String(), nil
}

// Upload stores a local file under destPath and returns its public URL.
func (s *Store) Upload(ctx context.Context, localPath, destPath, contentType string) (string, error) {
	_, err := s.client.FPutObject(ctx, s.bucket, destPath, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", destPath, err)
	}

	return s.PublicURL(destPath), nil
}

func (s *Store) PublicURL(objectPath string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, objectPath)
}
