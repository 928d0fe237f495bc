package response

import (
	"errors"
	"net/http"
	"strings"

	apperrors "campusfinder/pkg/errors"
	"campusfinder/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Success bool        `json:"success"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// Success writes {"success": true, ...fields} with the given status.
func Success(c echo.Context, status int, fields map[string]interface{}) error {
	body := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	return c.JSON(status, body)
}

func Created(c echo.Context, fields map[string]interface{}) error {
	return Success(c, http.StatusCreated, fields)
}

func NewPagination(total, page, pageSize int) *Pagination {
	totalPages := 0
	if pageSize > 0 {
		totalPages = total / pageSize
		if total%pageSize > 0 {
			totalPages++
		}
	}
	return &Pagination{
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

func Error(c echo.Context, err error) error {
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return handleValidationError(c, validationErr)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			logger.Error("%s %s failed: %v", c.Request().Method, c.Path(), appErr)
		}
		return c.JSON(appErr.Status, ErrorResponse{
			Success: false,
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		})
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Success: false,
			Code:    apperrors.CodeBadRequest,
			Message: message,
		})
	}

	logger.Error("%s %s failed with unexpected error: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Code:    apperrors.CodeInternal,
		Message: "An unexpected error occurred",
	})
}

func handleValidationError(c echo.Context, validationErr validator.ValidationErrors) error {
	fields := make([]string, 0, len(validationErr))
	var message string
	for _, err := range validationErr {
		field := lowerFirst(err.Field())
		fields = append(fields, field)
		if message != "" {
			continue
		}

		switch err.Tag() {
		case "required":
			message = field + " is required"
		case "min":
			message = field + " must be at least " + err.Param()
		case "max":
			message = field + " must be at most " + err.Param()
		case "gte", "lte":
			message = field + " is out of range"
		case "oneof":
			message = field + " must be one of: " + err.Param()
		case "email":
			message = field + " must be a valid email address"
		case "url":
			message = field + " must be a valid URL"
		case "datetime":
			message = field + " must be a date formatted as " + err.Param()
		default:
			message = field + " is invalid"
		}
	}
	if message == "" {
		message = "Invalid input data"
	}

	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Code:    apperrors.CodeValidation,
		Message: message,
		Details: map[string]interface{}{"fields": fields},
	})
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
