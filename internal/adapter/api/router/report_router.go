package router

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"campusfinder/internal/adapter/api/handler"
	"campusfinder/internal/adapter/api/middleware"
	"campusfinder/internal/domain/entity"
	"campusfinder/internal/infrastructure/ratelimit"
)

func SetupReportRouter(e *echo.Echo, uploadLimiter *ratelimit.RateLimiter, maxFileSize int64) {
	reportHandler := handler.GetReportHandler()

	reports := e.Group("/api/reports")

	reports.POST("", reportHandler.CreateReport, echomiddleware.BodyLimit("64K"))
	reports.GET("", reportHandler.ListReports)
	reports.GET("/:id", reportHandler.GetReport)

	// Server-side image upload, limited per client IP.
	reports.POST("/submit", reportHandler.SubmitReport,
		middleware.RateLimit(uploadLimiter),
		echomiddleware.BodyLimit(bodyLimit(maxFileSize, entity.MaxImages)),
	)
}
