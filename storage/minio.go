package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"MwFM/config"
	"MwFM/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore is the object-store backend. Audio and cover assets live in one
// bucket under the "audio/" and "covers/" prefixes.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to MinIO and ensures the bucket exists.
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", cfg.MinioBucket, err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{
			Region: cfg.MinioRegion,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", cfg.MinioBucket, err)
		}
		logger.Info("Created MinIO bucket", logger.String("bucket", cfg.MinioBucket))
	}

	return &MinioStore{client: client, bucket: cfg.MinioBucket}, nil
}

// Put stores a new asset and returns its ref.
func (s *MinioStore) Put(ctx context.Context, kind Kind, originalName string, r io.Reader, size int64, contentType string) (AssetRef, error) {
	key, err := objectKey(originalName)
	if err != nil {
		return AssetRef{}, err
	}
	ref := AssetRef{Kind: kind, Key: key}

	opts := minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: true,
	}
	if _, err := s.client.PutObject(ctx, s.bucket, ref.ObjectPath(), r, size, opts); err != nil {
		return AssetRef{}, fmt.Errorf("failed to upload %s to MinIO: %w", ref.ObjectPath(), err)
	}
	return ref, nil
}

// Exists reports whether the referenced object is present in the bucket.
func (s *MinioStore) Exists(ctx context.Context, ref AssetRef) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, ref.ObjectPath(), minio.StatObjectOptions{})
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", ref.ObjectPath(), err)
	}
	return true, nil
}

// Remove deletes the referenced object.
func (s *MinioStore) Remove(ctx context.Context, ref AssetRef) error {
	err := s.client.RemoveObject(ctx, s.bucket, ref.ObjectPath(), minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", ref.ObjectPath(), err)
	}
	return nil
}

// Open streams a stored object back by its object path.
func (s *MinioStore) Open(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	object, err := s.client.GetObject(ctx, s.bucket, objectPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", objectPath, err)
	}
	// GetObject is lazy; Stat forces the first round trip so missing objects
	// surface here instead of on first read.
	if _, err := object.Stat(); err != nil {
		object.Close()
		return nil, fmt.Errorf("failed to open %s: %w", objectPath, err)
	}
	return object, nil
}
