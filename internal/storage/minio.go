package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ImageStorage is the hosted-image contract used by the book service.
type ImageStorage interface {
	// Upload stores a decoded image under a fresh object key and returns
	// the public URL together with the key for later deletion.
	Upload(ctx context.Context, img *ImageData) (url, key string, err error)
	// Delete removes a previously uploaded object.
	Delete(ctx context.Context, key string) error
}

// MinioConfig holds the connection parameters for the object store.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStorage implements ImageStorage on a MinIO (S3-compatible) bucket.
type MinioStorage struct {
	client *minio.Client
	cfg    MinioConfig
}

// NewMinioStorage connects to MinIO and ensures the image bucket exists.
func NewMinioStorage(ctx context.Context, cfg MinioConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket %q: %w", cfg.Bucket, err)
		}
		slog.Info("created image bucket", "bucket", cfg.Bucket)
	}

	return &MinioStorage{client: client, cfg: cfg}, nil
}

// Upload stores the image under a uuid-based key.
func (s *MinioStorage) Upload(ctx context.Context, img *ImageData) (string, string, error) {
	key := uuid.NewString() + img.Ext

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key,
		bytes.NewReader(img.Bytes), int64(len(img.Bytes)),
		minio.PutObjectOptions{ContentType: img.ContentType},
	)
	if err != nil {
		return "", "", fmt.Errorf("uploading image %q: %w", key, err)
	}

	return s.objectURL(key), key, nil
}

// Delete removes the object for the given key.
func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.cfg.Bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("deleting image %q: %w", key, err)
	}
	return nil
}

func (s *MinioStorage) objectURL(key string) string {
	scheme := "http"
	if s.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.Endpoint, s.cfg.Bucket, key)
}
