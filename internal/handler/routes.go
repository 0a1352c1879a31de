package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tempmail-proxy/internal/config"
	"tempmail-proxy/internal/metrics"
	"tempmail-proxy/internal/service"
)

// proxiedMethods are the methods forwarded upstream. OPTIONS never gets here;
// preflight middleware answers it first.
var proxiedMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// RegisterRoutes wires all route handlers onto the Echo instance. Paths with no
// route fall through to the static file middleware. m may be nil when metrics
// are disabled.
func RegisterRoutes(e *echo.Echo, cfg *config.Config, proxy *ProxyHandler, health *HealthHandler, m *metrics.Metrics) {
	e.HTTPErrorHandler = apiErrorHandler(e)
	e.Use(StaticFiles(cfg))

	e.GET("/healthz", health.Healthz)
	e.GET("/proxy/status", health.Status)

	if cfg.Metrics.Enabled && m != nil {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}

	e.Match(proxiedMethods, service.APIPrefix+"/*", proxy.Handle)
}
