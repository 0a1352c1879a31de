package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"tempmail-proxy/internal/metrics"
)

// requestCount returns the tempmail_proxy_http_requests_total value for the
// given labels, and whether such a series exists.
func requestCount(t *testing.T, m *metrics.Metrics, want map[string]string) (float64, bool) {
	t.Helper()
	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() != "tempmail_proxy_http_requests_total" {
			continue
		}
	series:
		for _, metric := range f.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue series
				}
			}
			return metric.GetCounter().GetValue(), true
		}
	}
	return 0, false
}

func serve(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMetricsMiddleware_CountsProxiedRequests(t *testing.T) {
	m := metrics.New()
	e := echo.New()
	e.Use(MetricsMiddleware(m, "/metrics"))
	e.GET("/api/*", func(c echo.Context) error {
		return c.String(http.StatusCreated, "ok")
	})

	serve(e, http.MethodGet, "/api/addresses")
	serve(e, http.MethodGet, "/api/emails")

	v, ok := requestCount(t, m, map[string]string{"path_prefix": "/api", "status_code": "201", "method": "GET"})
	if !ok {
		t.Fatal("expected tempmail_proxy_http_requests_total with path_prefix=/api")
	}
	if v != 2 {
		t.Errorf("counter value = %v, want 2", v)
	}
}

func TestMetricsMiddleware_RecordsDuration(t *testing.T) {
	m := metrics.New()
	e := echo.New()
	e.Use(MetricsMiddleware(m, "/metrics"))
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	serve(e, http.MethodGet, "/healthz")

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() != "tempmail_proxy_http_request_duration_seconds" {
			continue
		}
		for _, metric := range f.GetMetric() {
			if metric.GetHistogram().GetSampleCount() > 0 {
				return
			}
		}
	}
	t.Error("expected tempmail_proxy_http_request_duration_seconds with at least one sample")
}

func TestMetricsMiddleware_HTTPErrorStatus(t *testing.T) {
	m := metrics.New()
	e := echo.New()
	e.Use(MetricsMiddleware(m, "/metrics"))
	e.GET("/api/*", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	})

	serve(e, http.MethodGet, "/api/addresses")

	if _, ok := requestCount(t, m, map[string]string{"path_prefix": "/api", "status_code": "404"}); !ok {
		t.Error("expected status_code=404 for a handler returning *echo.HTTPError")
	}
}

func TestMetricsMiddleware_PreflightCounted(t *testing.T) {
	m := metrics.New()
	e := echo.New()
	e.Use(MetricsMiddleware(m, "/metrics"))
	e.Use(CORSPreflight())

	serve(e, http.MethodOptions, "/api/addresses")

	if _, ok := requestCount(t, m, map[string]string{"method": "OPTIONS", "status_code": "200", "path_prefix": "/api"}); !ok {
		t.Error("expected preflight to be recorded with method=OPTIONS, status_code=200")
	}
}

func TestMetricsMiddleware_StaticPathsAreOther(t *testing.T) {
	m := metrics.New()
	e := echo.New()
	e.Use(MetricsMiddleware(m, "/metrics"))

	rec := serve(e, http.MethodGet, "/js/app.js")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	if _, ok := requestCount(t, m, map[string]string{"path_prefix": "other", "method": "GET", "status_code": "404"}); !ok {
		t.Error("expected path_prefix=other, method=GET, status_code=404")
	}
}

func TestMetricsMiddleware_SkipsScrapePath(t *testing.T) {
	m := metrics.New()
	e := echo.New()
	e.Use(MetricsMiddleware(m, "/metrics"))
	e.GET("/metrics", func(c echo.Context) error {
		return c.String(http.StatusOK, "")
	})

	serve(e, http.MethodGet, "/metrics")

	if _, ok := requestCount(t, m, map[string]string{"path_prefix": "/metrics"}); ok {
		t.Error("scrape requests should not be counted")
	}
}
