package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimit returns a per-IP rate limiter backed by an in-memory store.
// Rejections carry the same JSON error shape and CORS origin as proxied responses.
func RateLimit(requestsPerSecond float64) echo.MiddlewareFunc {
	store := echomw.NewRateLimiterMemoryStore(rate.Limit(requestsPerSecond))
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Skipper: echomw.DefaultSkipper,
		Store:   store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return rejectJSON(c, http.StatusForbidden, "Proxy error: could not identify client")
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return rejectJSON(c, http.StatusTooManyRequests, "Proxy error: rate limit exceeded")
		},
	})
}

func rejectJSON(c echo.Context, status int, msg string) error {
	c.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, "*")
	return c.JSON(status, map[string]string{"message": msg})
}
