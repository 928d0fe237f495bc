package router

import (
	"fmt"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"campusfinder/internal/adapter/api/handler"
	"campusfinder/internal/adapter/api/middleware"
	"campusfinder/internal/infrastructure/ratelimit"
)

func SetupUploadRouter(e *echo.Echo, uploadLimiter *ratelimit.RateLimiter, maxFileSize int64) {
	uploadHandler := handler.GetUploadHandler()

	e.POST("/api/upload", uploadHandler.UploadImage,
		middleware.RateLimit(uploadLimiter),
		echomiddleware.BodyLimit(bodyLimit(maxFileSize, 1)),
	)
}

// bodyLimit allows n images of maxFileSize each plus 1 MiB for form fields
// and multipart framing.
func bodyLimit(maxFileSize int64, n int) string {
	return fmt.Sprintf("%dK", (maxFileSize*int64(n))/1024+1024)
}
