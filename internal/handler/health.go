package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tempmail-proxy/internal/config"
	"tempmail-proxy/internal/service"
)

// Version is a string type for dependency injection of the build version.
type Version string

// ProxyStatus describes how the running proxy is wired.
type ProxyStatus struct {
	Status           string `json:"status"`
	Version          string `json:"version"`
	UpstreamURL      string `json:"upstream_url"`
	APIPrefix        string `json:"api_prefix"`
	TimeoutSeconds   int    `json:"upstream_timeout_seconds"`
	StaticRoot       string `json:"static_root"`
	DirectoryListing bool   `json:"directory_listing"`
	RateLimited      bool   `json:"rate_limited"`
}

// HealthHandler serves /healthz and /proxy/status.
type HealthHandler struct {
	status ProxyStatus
}

// NewHealthHandler snapshots the loaded configuration; it does not change at runtime.
func NewHealthHandler(cfg *config.Config, v Version) *HealthHandler {
	return &HealthHandler{status: ProxyStatus{
		Status:           "ok",
		Version:          string(v),
		UpstreamURL:      cfg.Upstream.BaseURL,
		APIPrefix:        service.APIPrefix + "/",
		TimeoutSeconds:   cfg.Upstream.TimeoutSeconds,
		StaticRoot:       cfg.Static.Root,
		DirectoryListing: cfg.Static.BrowseEnabled(),
		RateLimited:      cfg.Server.RateLimit.Enabled,
	}}
}

// Healthz is the liveness probe. It never contacts the upstream.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Status reports the proxy's version and wiring.
func (h *HealthHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.status)
}
