package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"campusfinder/internal/usecase"
	"campusfinder/pkg/errors"
	"campusfinder/pkg/logger"
	"campusfinder/pkg/response"
)

type UploadHandler struct {
	submissionUseCase *usecase.ReportSubmissionUseCase
	maxFileSize       int64
}

func NewUploadHandler(submissionUseCase *usecase.ReportSubmissionUseCase, maxFileSize int64) *UploadHandler {
	return &UploadHandler{
		submissionUseCase: submissionUseCase,
		maxFileSize:       maxFileSize,
	}
}

// UploadImage stores a single "file" part and returns its public URL.
func (h *UploadHandler) UploadImage(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("No file uploaded", err))
	}

	logger.Debug("Received file: %s, size: %d bytes, declared type: %s", fh.Filename, fh.Size, fh.Header.Get("Content-Type"))

	file, err := readImageFile(fh, h.maxFileSize)
	if err != nil {
		return response.Error(c, err)
	}

	url, err := h.submissionUseCase.UploadImage(c.Request().Context(), file)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]interface{}{
		"url": url,
	})
}
