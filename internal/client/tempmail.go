// Package client provides the upstream HTTP client for the TempMail API.
package client

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"tempmail-proxy/internal/config"
	"tempmail-proxy/internal/metrics"
	"tempmail-proxy/internal/model"
)

// ReadBodyError reports an upstream response whose status arrived but whose
// body could not be read in full.
type ReadBodyError struct {
	StatusCode int
	Err        error
}

func (e *ReadBodyError) Error() string {
	return fmt.Sprintf("read upstream body (status %d): %v", e.StatusCode, e.Err)
}

func (e *ReadBodyError) Unwrap() error { return e.Err }

// TempMailClient sends requests to the upstream TempMail API.
type TempMailClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewTempMailClient creates a TempMailClient with connection pooling and a
// whole-exchange timeout. The metrics parameter is optional; pass nil to
// disable upstream metrics recording.
func NewTempMailClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *TempMailClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.Upstream.IdleConnections,
		MaxIdleConnsPerHost: cfg.Upstream.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &TempMailClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
		},
		logger:  logger.With("component", "tempmail_client"),
		metrics: m,
	}
}

// Do executes an HTTP request against the upstream and buffers the whole response body.
// Errors other than *ReadBodyError mean no HTTP response was obtained.
func (c *TempMailClient) Do(req *http.Request) (*model.ProxyResponse, error) {
	c.logger.Debug("upstream request",
		"method", req.Method,
		"url", req.URL.Redacted(),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	method := metrics.NormalizeMethod(req.Method)

	if err != nil {
		if c.metrics != nil {
			c.metrics.UpstreamDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
			c.metrics.UpstreamErrors.WithLabelValues(method).Inc()
		}
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if c.metrics != nil {
		c.metrics.UpstreamDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		c.metrics.UpstreamResponses.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	}
	if err != nil {
		return nil, &ReadBodyError{StatusCode: resp.StatusCode, Err: err}
	}

	return &model.ProxyResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
