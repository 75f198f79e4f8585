// Package storage holds the object store used to archive CSV exports.
package storage

import (
	"cardiostent/internal/config"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// presignTTL is how long archive download links stay valid
const presignTTL = 24 * time.Hour

// ArchiveStore writes export files to a MinIO or S3 bucket
type ArchiveStore struct {
	client *minio.Client
	bucket string
}

// NewArchiveStore connects to the bucket and creates it when missing
func NewArchiveStore(ctx context.Context, cfg config.MinioConfig) (*ArchiveStore, error) {
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &ArchiveStore{client: cli, bucket: cfg.Bucket}, nil
}

// Put uploads r under key and returns a presigned download URL
func (s *ArchiveStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, presignTTL, url.Values{})
	if err != nil {
		// the object is stored; fall back to the plain path
		return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, key), nil
	}
	return u.String(), nil
}
