// Package model defines shared types for the proxy.
package model

import (
	"context"
	"io"
	"net/http"
)

// ProxyRequest is an inbound /api/ request after routing, ready to be forwarded.
type ProxyRequest struct {
	Ctx    context.Context
	Method string
	// URI is the raw request target: escaped path plus query.
	URI           string
	Header        http.Header
	ContentLength int64
	Body          io.Reader
}

// ProxyResponse is a fully buffered upstream response.
type ProxyResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
