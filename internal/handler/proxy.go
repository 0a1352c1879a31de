package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"tempmail-proxy/internal/model"
	"tempmail-proxy/internal/service"
)

// ProxyHandler forwards /api/ requests to the upstream TempMail API.
type ProxyHandler struct {
	service *service.ProxyService
	logger  *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(svc *service.ProxyService, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		logger:  logger.With("component", "proxy_handler"),
	}
}

// Handle forwards the request upstream and relays the buffered response.
// Upstream error statuses are relayed like successes.
func (h *ProxyHandler) Handle(c echo.Context) error {
	req := c.Request()
	if !strings.HasPrefix(req.URL.Path, service.APIPrefix+"/") {
		return echo.ErrNotFound
	}

	pr := &model.ProxyRequest{
		Ctx:           req.Context(),
		Method:        req.Method,
		URI:           req.URL.RequestURI(),
		Header:        req.Header,
		ContentLength: req.ContentLength,
		Body:          req.Body,
	}

	resp, err := h.service.Forward(pr)
	if err != nil {
		return h.mapError(c, err)
	}

	return writeJSON(c, resp.StatusCode, resp.Body)
}

func (h *ProxyHandler) mapError(c echo.Context, err error) error {
	path := c.Request().URL.Path

	var te *service.TransportError
	if errors.As(err, &te) {
		h.logger.Error("network error", "err", te.Err, "path", path)
		return writeMessage(c, http.StatusInternalServerError, "Network error: "+te.Err.Error())
	}

	cause := err
	var ie *service.InternalError
	if errors.As(err, &ie) {
		cause = ie.Err
	}
	h.logger.Error("proxy error", "err", cause, "path", path)
	return writeMessage(c, http.StatusInternalServerError, "Proxy error: "+cause.Error())
}

// writeJSON writes body verbatim as an application/json response with the CORS origin header.
func writeJSON(c echo.Context, status int, body []byte) error {
	c.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, "*")
	return c.Blob(status, echo.MIMEApplicationJSON, body)
}

// writeMessage writes {"message": "<msg>"}.
func writeMessage(c echo.Context, status int, msg string) error {
	quoted, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode error message: %w", err)
	}
	return writeJSON(c, status, []byte(`{"message": `+string(quoted)+`}`))
}
