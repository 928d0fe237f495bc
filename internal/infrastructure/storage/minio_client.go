package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"campusfinder/internal/domain/entity"
	"campusfinder/internal/domain/service"
	"campusfinder/pkg/errors"
	"campusfinder/pkg/logger"
)

type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL overrides the base of returned URLs, e.g. a CDN in front of
	// the bucket. Defaults to the client endpoint.
	PublicURL string
	Folder    string
}

// MinioStorage stores report images in an S3-compatible bucket.
type MinioStorage struct {
	client  *minio.Client
	bucket  string
	folder  string
	baseURL string
	now     func() time.Time
}

var _ service.ImageStore = (*MinioStorage)(nil)

func NewMinioStorage(ctx context.Context, opts MinioOptions) (*MinioStorage, error) {
	logger.Info("Initializing MinIO storage at %s (bucket %s, ssl %v)", opts.Endpoint, opts.Bucket, opts.UseSSL)

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", opts.Endpoint, err)
	}

	if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, errBucketExists := client.BucketExists(ctx, opts.Bucket)
		if errBucketExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", opts.Bucket, err, errBucketExists)
		}
		logger.Debug("MinIO bucket %s already exists", opts.Bucket)
	} else {
		logger.Info("MinIO bucket %s created", opts.Bucket)
	}

	baseURL := opts.PublicURL
	if baseURL == "" {
		baseURL = client.EndpointURL().String()
	}

	return &MinioStorage{
		client:  client,
		bucket:  opts.Bucket,
		folder:  strings.Trim(opts.Folder, "/"),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}, nil
}

func (s *MinioStorage) Upload(ctx context.Context, file entity.ImageFile) (string, error) {
	if file.Size() == 0 {
		return "", errors.Upload("Refusing to upload empty image", nil)
	}

	objectKey := objectName(s.folder, file.ContentType, s.now())

	info, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(file.Data), file.Size(), minio.PutObjectOptions{
		ContentType:  file.ContentType,
		CacheControl: "public, max-age=86400",
	})
	if err != nil {
		return "", errors.Upload("Failed to upload image", fmt.Errorf("put %s/%s: %w", s.bucket, objectKey, err))
	}

	logger.Debug("Uploaded %s (%d bytes, etag %s)", info.Key, info.Size, info.ETag)
	return s.objectURL(objectKey), nil
}

func (s *MinioStorage) Delete(ctx context.Context, fileURL string) error {
	objectKey, err := s.objectKeyFromURL(fileURL)
	if err != nil {
		return errors.Upload("Cannot delete image", err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return errors.Upload("Failed to delete image", err)
	}
	return nil
}

func (s *MinioStorage) objectURL(objectKey string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, objectKey)
}

func (s *MinioStorage) objectKeyFromURL(fileURL string) (string, error) {
	prefix := s.baseURL + "/" + s.bucket + "/"
	if !strings.HasPrefix(fileURL, prefix) || len(fileURL) == len(prefix) {
		return "", fmt.Errorf("url %q is not an object in bucket %s", fileURL, s.bucket)
	}
	return strings.TrimPrefix(fileURL, prefix), nil
}
