package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"campusfinder/internal/domain/entity"
	"campusfinder/internal/domain/service"
	"campusfinder/pkg/errors"
	"campusfinder/pkg/logger"
)

const gcsPublicHost = "https://storage.googleapis.com/"

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
	folder     string
	now        func() time.Time
}

var _ service.ImageStore = (*CloudStorageClient)(nil)

func NewCloudStorageClient(ctx context.Context, bucketName, folder string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	storageClient := &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
		folder:     strings.Trim(folder, "/"),
		now:        time.Now,
	}

	if err := storageClient.setBucketCORS(ctx); err != nil {
		logger.Warn("Failed to set CORS configuration on bucket %s: %v", bucketName, err)
	}

	return storageClient, nil
}

func (c *CloudStorageClient) setBucketCORS(ctx context.Context) error {
	bucket := c.client.Bucket(c.bucketName)

	corsConfig := storage.CORS{
		MaxAge:          3600,
		Methods:         []string{"GET", "HEAD"},
		Origins:         []string{"*"},
		ResponseHeaders: []string{"Content-Type"},
	}

	bucketAttrs, err := bucket.Attrs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bucket attributes: %v", err)
	}

	if len(bucketAttrs.CORS) == 0 {
		_, err := bucket.Update(ctx, storage.BucketAttrsToUpdate{CORS: []storage.CORS{corsConfig}})
		if err != nil {
			return fmt.Errorf("failed to update bucket CORS: %v", err)
		}
	}

	return nil
}

// Upload writes the image under the configured folder and makes it publicly
// readable. The returned URL is the object's public https URL.
func (c *CloudStorageClient) Upload(ctx context.Context, file entity.ImageFile) (string, error) {
	if file.Size() == 0 {
		return "", errors.Upload("Refusing to upload empty image", nil)
	}

	filename := objectName(c.folder, file.ContentType, c.now())

	obj := c.client.Bucket(c.bucketName).Object(filename)
	wc := obj.NewWriter(ctx)
	wc.ContentType = file.ContentType
	wc.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(wc, bytes.NewReader(file.Data)); err != nil {
		wc.Close()
		return "", errors.Upload("Failed to write image to Cloud Storage", err)
	}

	if err := wc.Close(); err != nil {
		return "", errors.Upload("Failed to write image to Cloud Storage", err)
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		// The object exists but no URL reaches the caller, so nobody else can remove it.
		deleteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if delErr := obj.Delete(deleteCtx); delErr != nil {
			logger.Warn("Failed to delete private object %s after ACL failure: %v", filename, delErr)
		}
		return "", errors.Upload("Failed to make image public", err)
	}

	return gcsPublicHost + c.bucketName + "/" + filename, nil
}

func (c *CloudStorageClient) Delete(ctx context.Context, fileURL string) error {
	objectName, err := gcsObjectFromURL(c.bucketName, fileURL)
	if err != nil {
		return errors.Upload("Cannot delete image", err)
	}

	if err := c.client.Bucket(c.bucketName).Object(objectName).Delete(ctx); err != nil {
		return errors.Upload("Failed to delete image", err)
	}

	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}

// gcsObjectFromURL extracts the object name from
// https://storage.googleapis.com/<bucket>/<object>.
func gcsObjectFromURL(bucket, fileURL string) (string, error) {
	if !strings.HasPrefix(fileURL, gcsPublicHost) {
		return "", fmt.Errorf("invalid GCS URL format")
	}

	parts := strings.SplitN(strings.TrimPrefix(fileURL, gcsPublicHost), "/", 2)
	if len(parts) != 2 || parts[0] != bucket || parts[1] == "" {
		return "", fmt.Errorf("invalid GCS URL format or bucket mismatch")
	}

	return parts[1], nil
}

// objectName builds <folder>/<uuid>-<timestamp><ext>. Names never repeat, so
// concurrent uploads of identical bytes get distinct URLs.
func objectName(folder, contentType string, now time.Time) string {
	name := fmt.Sprintf("%s-%s%s", uuid.New().String(), now.UTC().Format("20060102150405"), extensionFor(contentType))
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	case "image/heif":
		return ".heif"
	default:
		return ".bin"
	}
}
