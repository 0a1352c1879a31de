package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Values sent on every preflight response.
const (
	PreflightAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	PreflightAllowHeaders = "Content-Type, Authorization, Accept"
)

// CORSPreflight answers every OPTIONS request, on any path, with 200 and
// permissive CORS headers. Other methods pass through untouched.
func CORSPreflight() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodOptions {
				return next(c)
			}

			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, "*")
			h.Set(echo.HeaderAccessControlAllowMethods, PreflightAllowMethods)
			h.Set(echo.HeaderAccessControlAllowHeaders, PreflightAllowHeaders)
			return c.NoContent(http.StatusOK)
		}
	}
}
