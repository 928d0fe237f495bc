package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"campusfinder/internal/infrastructure/ratelimit"
	"campusfinder/pkg/errors"
	"campusfinder/pkg/logger"
	"campusfinder/pkg/response"
)

// RateLimit rejects requests from a client IP that has used up its bucket.
func RateLimit(rl *ratelimit.RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			if ok, wait := rl.Allow(ip); !ok {
				logger.Warn("RATE LIMIT: blocked %s %s from %s (retry in %v)", c.Request().Method, c.Path(), ip, wait)
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				return response.Error(c, errors.TooManyRequests("Too many uploads, please try again later"))
			}

			return next(c)
		}
	}
}
