package service

import (
	"context"

	"campusfinder/internal/domain/entity"
)

// ImageStore persists image bytes in external object storage.
type ImageStore interface {
	// Upload stores one object and returns its public URL.
	Upload(ctx context.Context, file entity.ImageFile) (string, error)
	// Delete removes the object behind a URL previously returned by Upload.
	Delete(ctx context.Context, fileURL string) error
}
