package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRateLimit_Enabled(t *testing.T) {
	e := echo.New()

	// 1 request per second, burst of 1: later requests should be rejected.
	e.Use(RateLimit(1))
	e.GET("/api/addresses", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/addresses", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want %d", rec.Code, http.StatusOK)
	}

	var limited *httptest.ResponseRecorder
	for i := 0; i < 10; i++ {
		req = httptest.NewRequest(http.MethodGet, "/api/addresses", http.NoBody)
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = rec
			break
		}
	}
	if limited == nil {
		t.Fatal("expected at least one 429 response after burst, got none")
	}

	if v := limited.Header().Get(echo.HeaderAccessControlAllowOrigin); v != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", v, "*")
	}
	var body map[string]string
	if err := json.Unmarshal(limited.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["message"] == "" {
		t.Error("expected non-empty message in 429 body")
	}
}

func TestRateLimit_PerClient(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(1))
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("first request from %s: status = %d, want %d", ip, rec.Code, http.StatusOK)
		}
	}
}
