package handler

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/h2non/filetype"

	"campusfinder/internal/domain/entity"
	"campusfinder/pkg/errors"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/heif": true,
}

// readImageFile loads an uploaded part and checks its size and, by magic
// bytes, that it really is one of the accepted image formats. The declared
// Content-Type header is ignored.
func readImageFile(fh *multipart.FileHeader, maxSize int64) (entity.ImageFile, error) {
	if fh.Size > maxSize {
		return entity.ImageFile{}, errors.BadRequest(fmt.Sprintf("File size exceeds maximum allowed (%dMB)", maxSize/(1024*1024)), nil)
	}

	src, err := fh.Open()
	if err != nil {
		return entity.ImageFile{}, errors.BadRequest("Failed to read uploaded file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return entity.ImageFile{}, errors.BadRequest("Failed to read uploaded file", err)
	}
	if int64(len(data)) > maxSize {
		return entity.ImageFile{}, errors.BadRequest(fmt.Sprintf("File size exceeds maximum allowed (%dMB)", maxSize/(1024*1024)), nil)
	}
	if len(data) == 0 {
		return entity.ImageFile{}, errors.BadRequest("Uploaded file is empty", nil)
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown || !allowedImageTypes[kind.MIME.Value] {
		return entity.ImageFile{}, errors.BadRequest("File type not supported", err)
	}

	return entity.ImageFile{
		Filename:    fh.Filename,
		ContentType: kind.MIME.Value,
		Data:        data,
	}, nil
}
