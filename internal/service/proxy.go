// Package service implements the core proxy forwarding logic.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"tempmail-proxy/internal/client"
	"tempmail-proxy/internal/config"
	"tempmail-proxy/internal/model"
)

// APIPrefix is the inbound path prefix routed to the upstream. It is stripped,
// without its trailing slash, before the path is appended to the upstream base.
const APIPrefix = "/api"

const userAgent = "TempMail-Proxy/1.0"

// apiErrorBody replaces an upstream error body that could not be read.
var apiErrorBody = []byte(`{"message": "API Error"}`)

// allowedUpstreamHosts restricts which hosts the proxy will forward to.
var allowedUpstreamHosts = map[string]bool{
	"api.tempmail.co": true,
}

// TransportError reports a forwarded request that got no HTTP response from
// the upstream: DNS failure, refused connection, TLS failure or timeout.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "network error: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// InternalError reports any other failure while forwarding a request.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string { return "proxy error: " + e.Err.Error() }

func (e *InternalError) Unwrap() error { return e.Err }

// Upstream executes a prepared upstream request.
type Upstream interface {
	Do(req *http.Request) (*model.ProxyResponse, error)
}

// ProxyService turns inbound /api/ requests into upstream requests.
type ProxyService struct {
	client  Upstream
	logger  *slog.Logger
	baseURL string
}

// NewProxyService creates a ProxyService for the configured upstream base URL.
func NewProxyService(c *client.TempMailClient, cfg *config.Config, logger *slog.Logger) (*ProxyService, error) {
	u, err := url.Parse(cfg.Upstream.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream base_url: %w", err)
	}

	if !allowedUpstreamHosts[u.Hostname()] {
		return nil, fmt.Errorf("upstream host %q is not in the allowlist", u.Hostname())
	}

	return newProxyService(c, cfg, logger), nil
}

// NewProxyServiceForTest creates a ProxyService without host allowlist validation.
// This is intended only for tests that use httptest servers on localhost.
func NewProxyServiceForTest(c Upstream, cfg *config.Config, logger *slog.Logger) *ProxyService {
	return newProxyService(c, cfg, logger)
}

func newProxyService(c Upstream, cfg *config.Config, logger *slog.Logger) *ProxyService {
	return &ProxyService{
		client:  c,
		logger:  logger.With("component", "proxy_service"),
		baseURL: strings.TrimRight(cfg.Upstream.BaseURL, "/"),
	}
}

// BaseURL returns the upstream base URL requests are forwarded to.
func (s *ProxyService) BaseURL() string {
	return s.baseURL
}

// Forward sends a ProxyRequest to the upstream exactly once and returns the
// buffered response. Upstream error statuses are returned as responses, not errors.
//
// Errors are either *TransportError or *InternalError.
func (s *ProxyService) Forward(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	upstreamURL, err := s.BuildUpstreamURL(pr.URI)
	if err != nil {
		return nil, &InternalError{Err: err}
	}

	body, err := readBody(pr.Body, pr.ContentLength)
	if err != nil {
		return nil, &InternalError{Err: err}
	}

	// Once issued the upstream call runs to completion or timeout,
	// even if the client goes away.
	ctx := pr.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithoutCancel(ctx)

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, pr.Method, upstreamURL, r)
	if err != nil {
		return nil, &InternalError{Err: fmt.Errorf("build upstream request: %w", err)}
	}
	req.Header = buildRequestHeaders(pr.Header, body != nil)

	s.logger.Info("proxying request",
		"method", pr.Method,
		"url", req.URL.Redacted(),
	)
	if auth := pr.Header.Get("Authorization"); auth != "" {
		s.logger.Debug("using auth", "authorization", truncate(auth, 20)+"...")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		var rbe *client.ReadBodyError
		if errors.As(err, &rbe) {
			if rbe.StatusCode >= http.StatusBadRequest {
				s.logger.Warn("upstream error body unreadable", "status", rbe.StatusCode, "err", rbe.Err)
				return &model.ProxyResponse{StatusCode: rbe.StatusCode, Body: apiErrorBody}, nil
			}
			return nil, &InternalError{Err: rbe}
		}
		return nil, &TransportError{Err: transportCause(err)}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		s.logger.Info("upstream API error", "status", resp.StatusCode)
	} else {
		s.logger.Info("upstream success", "status", resp.StatusCode)
	}
	return resp, nil
}

// BuildUpstreamURL maps an inbound request URI such as "/api/addresses?page=2"
// onto the upstream base: "https://api.tempmail.co/v1/addresses?page=2".
func (s *ProxyService) BuildUpstreamURL(uri string) (string, error) {
	if !strings.HasPrefix(uri, APIPrefix+"/") {
		return "", fmt.Errorf("path %q is not under %s/", uri, APIPrefix)
	}
	raw := s.baseURL + uri[len(APIPrefix):]
	if _, err := url.Parse(raw); err != nil {
		return "", fmt.Errorf("invalid upstream URL: %w", err)
	}
	return raw, nil
}

// readBody buffers exactly contentLength bytes. A non-positive length means no body.
func readBody(body io.Reader, contentLength int64) ([]byte, error) {
	if contentLength <= 0 || body == nil {
		return nil, nil
	}
	buf := make([]byte, contentLength)
	if _, err := io.ReadFull(body, buf); err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return buf, nil
}

// buildRequestHeaders returns the only headers sent upstream.
func buildRequestHeaders(src http.Header, hasBody bool) http.Header {
	dst := make(http.Header)
	if auth := src.Get("Authorization"); auth != "" {
		dst.Set("Authorization", auth)
	}
	if hasBody {
		dst.Set("Content-Type", "application/json")
	}
	dst.Set("Accept", "application/json")
	dst.Set("User-Agent", userAgent)
	return dst
}

// transportCause strips the *url.Error wrapper so the request URL is not
// echoed back to clients.
func transportCause(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
