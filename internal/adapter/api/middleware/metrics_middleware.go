package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"campusfinder/internal/infrastructure/metrics"
)

// Metrics records request latency per route and counts error responses.
func Metrics(m *metrics.MetricsManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.APILatency.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())

			if status := c.Response().Status; status >= 400 {
				m.APIErrorsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
			}

			return nil
		}
	}
}
