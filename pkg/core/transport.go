package core

import (
	"context"
	"net/http"

	"github.com/bytedance/sonic"
)

// Transport sends one HTTP request and returns whatever the server answered.
// Implementations return an error only when no status was obtained; non-2xx
// responses are returned as a Response for the caller to classify.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
	Close() error
}

// Response represents an HTTP response with its status code, body, and headers.
type Response struct {
	// StatusCode is the HTTP status code returned by the server.
	StatusCode int
	// Headers contains the response headers. Lookups are case-insensitive.
	Headers http.Header
	// Body contains the raw response body bytes. It may be empty for error
	// statuses whose body could not be read.
	Body []byte
	// URL is the absolute URL the request was sent to.
	URL string
}

// IsSuccess returns true for 2xx statuses.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Unmarshal decodes the body into v.
func (r *Response) Unmarshal(v any) error {
	return sonic.Unmarshal(r.Body, v)
}
