package router

import (
	"github.com/labstack/echo/v4"

	"campusfinder/internal/adapter/api/handler"
	"campusfinder/internal/infrastructure/metrics"
)

func SetupHealthRouter(e *echo.Echo) {
	healthHandler := handler.GetHealthHandler()
	e.GET("/health", healthHandler.CheckHealth)
}

func SetupMetricsRouter(e *echo.Echo, metricsManager *metrics.MetricsManager) {
	e.GET("/metrics", echo.WrapHandler(metricsManager.Handler()))
}
