// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/taibuivan/toonhive/internal/platform/config"
)

// bucketCheckTimeout bounds the startup bucket existence probe.
const bucketCheckTimeout = 10 * time.Second

// Client implements [BlobStore] on top of a MinIO/S3-compatible endpoint.
type Client struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *slog.Logger
}

// NewClient connects to the configured object storage endpoint and ensures
// the target bucket exists.
//
// # Parameters
//   - ctx: Context for the startup bucket probe.
//   - cfg: Loaded application configuration (MINIO_* settings).
//   - logger: Structured logger for storage events.
func NewClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	minioClient, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to initialize client: %w", err)
	}

	probeCtx, cancel := context.WithTimeout(ctx, bucketCheckTimeout)
	defer cancel()

	exists, err := minioClient.BucketExists(probeCtx, cfg.StorageBucket)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to check bucket %q: %w", cfg.StorageBucket, err)
	}
	if !exists {
		if err := minioClient.MakeBucket(probeCtx, cfg.StorageBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: failed to create bucket %q: %w", cfg.StorageBucket, err)
		}
		logger.Info("storage_bucket_created", slog.String("bucket", cfg.StorageBucket))
	}

	publicURL := strings.TrimSpace(cfg.StoragePublicURL)
	if publicURL == "" {
		scheme := "http"
		if cfg.StorageUseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, cfg.StorageEndpoint)
	}

	logger.Info("storage client connected",
		slog.String("endpoint", cfg.StorageEndpoint),
		slog.String("bucket", cfg.StorageBucket),
	)

	return &Client{
		client:    minioClient,
		bucket:    cfg.StorageBucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		logger:    logger,
	}, nil
}

// Ping verifies the bucket is still reachable. Used by readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("storage: ping failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("storage: bucket %q is gone", c.bucket)
	}
	return nil
}

// # BlobStore Implementation

/*
Upload writes the object at key with upsert semantics.

Parameters:
  - ctx: context.Context
  - key: string (Full object key inside the bucket)
  - reader: io.Reader (Object content)
  - size: int64 (Content length; -1 streams with unknown length)
  - contentType: string (MIME type stored with the object)

Returns:
  - string: The key the object was written to
  - error: Transport or bucket errors
*/
func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	options := minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=3600",
	}

	info, err := c.client.PutObject(ctx, c.bucket, key, reader, size, options)
	if err != nil {
		return "", fmt.Errorf("storage: failed to upload %s: %w", key, err)
	}

	return info.Key, nil
}

// PublicURL resolves a stored key to its public URL. Returns "" for an empty key.
func (c *Client) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", c.publicURL, c.bucket, key)
}

// SignedURL resolves a stored key to a presigned GET URL valid for ttl.
func (c *Client) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	signed, err := c.client.PresignedGetObject(ctx, c.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("storage: failed to presign %s: %w", key, err)
	}
	return signed.String(), nil
}

/*
Remove deletes the given objects.

Description: Missing keys are silently ignored to keep cleanup paths
idempotent; transport failures are returned.
*/
func (c *Client) Remove(ctx context.Context, keys ...string) error {
	var removalErrors []error

	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			removalErrors = append(removalErrors, fmt.Errorf("storage: failed to remove %s: %w", key, err))
		}
	}

	return errors.Join(removalErrors...)
}

// List returns all objects stored under the given key prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	listing := c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    strings.TrimSuffix(prefix, "/") + "/",
		Recursive: true,
	})

	for object := range listing {
		if object.Err != nil {
			return nil, fmt.Errorf("storage: failed to list %s: %w", prefix, object.Err)
		}
		objects = append(objects, ObjectInfo{Key: object.Key, Size: object.Size})
	}

	return objects, nil
}

/*
RemoveFolder lists and deletes every object under the given prefix.

Description: Used for cascade cleanup when a chapter or webtoon is deleted.
An empty prefix is rejected to guard against wiping the whole bucket.
*/
func (c *Client) RemoveFolder(ctx context.Context, prefix string) error {
	if strings.Trim(prefix, "/") == "" {
		return fmt.Errorf("storage: refusing to remove empty prefix")
	}

	objects, err := c.List(ctx, prefix)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(objects))
	for _, object := range objects {
		keys = append(keys, object.Key)
	}

	if len(keys) == 0 {
		return nil
	}

	return c.Remove(ctx, keys...)
}
