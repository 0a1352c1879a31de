package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestCORSPreflight_AnyPath(t *testing.T) {
	e := echo.New()
	e.Use(CORSPreflight())
	e.GET("/api/*", func(c echo.Context) error {
		t.Error("preflight reached the route handler")
		return c.NoContent(http.StatusTeapot)
	})

	for _, path := range []string{"/api/addresses", "/index.html", "/", "/no/such/route"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, path, http.NoBody)
			req.Header.Set("Origin", "http://localhost:3000")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Body.String())
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Content-Type, Authorization, Accept", rec.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}

func TestCORSPreflight_WithoutOrigin(t *testing.T) {
	e := echo.New()
	e.Use(CORSPreflight())

	req := httptest.NewRequest(http.MethodOptions, "/api/addresses", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight_PassesOtherMethods(t *testing.T) {
	e := echo.New()
	e.Use(CORSPreflight())
	e.GET("/index.html", func(c echo.Context) error {
		return c.String(http.StatusOK, "page")
	})

	req := httptest.NewRequest(http.MethodGet, "/index.html", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "page", rec.Body.String())
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}
