package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"tempmail-proxy/internal/service"
)

// apiErrorHandler answers errors raised before a proxied handler runs
// (405 from the router, 413 from the body limit) in the same shape as
// proxied responses: {"message": ...} with the CORS origin header.
// Paths outside /api/ keep echo's default handling.
func apiErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if !strings.HasPrefix(c.Request().URL.Path, service.APIPrefix+"/") {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "Proxy error: " + err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
		}

		if werr := writeMessage(c, code, msg); werr != nil {
			e.Logger.Error(werr)
		}
	}
}
