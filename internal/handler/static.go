package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"tempmail-proxy/internal/config"
	"tempmail-proxy/internal/service"
)

// StaticFiles returns echo's static middleware rooted at cfg.Static.Root.
// It never sees /api/ paths, and only answers GET and HEAD.
func StaticFiles(cfg *config.Config) echo.MiddlewareFunc {
	return echomw.StaticWithConfig(echomw.StaticConfig{
		Skipper: func(c echo.Context) bool {
			req := c.Request()
			if req.Method != http.MethodGet && req.Method != http.MethodHead {
				return true
			}
			return strings.HasPrefix(req.URL.Path, service.APIPrefix+"/")
		},
		Root:       ".",
		Filesystem: http.Dir(cfg.Static.Root),
		Index:      "index.html",
		Browse:     cfg.Static.BrowseEnabled(),
	})
}
