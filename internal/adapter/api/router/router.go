package router

import (
	"github.com/labstack/echo/v4"

	"campusfinder/internal/infrastructure/metrics"
	"campusfinder/internal/infrastructure/ratelimit"
)

func Setup(e *echo.Echo, uploadLimiter *ratelimit.RateLimiter, metricsManager *metrics.MetricsManager, maxFileSize int64) {
	SetupReportRouter(e, uploadLimiter, maxFileSize)
	SetupUploadRouter(e, uploadLimiter, maxFileSize)
	SetupHealthRouter(e)
	SetupMetricsRouter(e, metricsManager)
}
