package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"tripdesk/pkg/config"
	"tripdesk/pkg/logger"
)

type s3Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
	log       *logger.Logger
}

// NewS3Store connects to the configured S3-compatible endpoint. Returns a
// no-op store when storage is not configured so the rest of the service
// keeps working without media support.
func NewS3Store(cfg *config.Config) (ObjectStore, error) {
	if !cfg.StorageConfigured() {
		cfg.Log.Warn("Object storage not configured, media operations are disabled")
		return &noopStore{log: cfg.Log}, nil
	}

	client, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
		Region: cfg.StorageRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	publicURL := cfg.StoragePublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.StorageUseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.StorageEndpoint, cfg.StorageBucket)
	}

	cfg.Log.Info("Object storage initialized",
		"endpoint", cfg.StorageEndpoint,
		"bucket", cfg.StorageBucket,
	)

	return &s3Store{
		client:    client,
		bucket:    cfg.StorageBucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       cfg.Log,
	}, nil
}

func (s *s3Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}

func (s *s3Store) PresignPut(ctx context.Context, key string, expiry time.Duration) (string, string, error) {
	uploadURL, err := s.client.PresignedPutObject(ctx, s.bucket, key, expiry)
	if err != nil {
		return "", "", fmt.Errorf("failed to presign upload for %s: %w", key, err)
	}
	return uploadURL.String(), s.publicURL + "/" + key, nil
}

func (s *s3Store) Delete(ctx context.Context, url string) error {
	key, err := s.keyFromURL(url)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func (s *s3Store) DeleteMany(ctx context.Context, urls []string) (int, error) {
	var firstErr error
	deleted := 0
	for _, url := range urls {
		if err := s.Delete(ctx, url); err != nil {
			s.log.Warn("Failed to delete object", "url", url, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		deleted++
	}
	return deleted, firstErr
}

// keyFromURL maps a public URL back to its object key. URLs not under this
// store's public base are rejected rather than guessed at.
func (s *s3Store) keyFromURL(url string) (string, error) {
	key, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok || key == "" {
		return "", fmt.Errorf("url %q is not served from bucket %s", url, s.bucket)
	}
	return key, nil
}

type noopStore struct {
	log *logger.Logger
}

func (n *noopStore) Put(_ context.Context, key string, _ io.Reader, _ int64, _ string) (string, error) {
	return "", fmt.Errorf("object storage not configured, cannot upload %s", key)
}

func (n *noopStore) PresignPut(_ context.Context, key string, _ time.Duration) (string, string, error) {
	return "", "", fmt.Errorf("object storage not configured, cannot presign %s", key)
}

func (n *noopStore) Delete(_ context.Context, url string) error {
	n.log.Debug("Skipping media delete, storage not configured", "url", url)
	return nil
}

func (n *noopStore) DeleteMany(_ context.Context, urls []string) (int, error) {
	n.log.Debug("Skipping media delete, storage not configured", "count", len(urls))
	return 0, nil
}
