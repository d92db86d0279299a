package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrorType represents the category of a client error.
type ErrorType int

// Error type constants separate local failures from remote ones.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeValidation indicates a request rejected locally before anything was sent.
	ErrorTypeValidation
	// ErrorTypeTransport indicates a failure with no HTTP status: network, timeout,
	// cancellation or an undecodable body.
	ErrorTypeTransport
	// ErrorTypeStatus indicates a non-2xx HTTP response.
	ErrorTypeStatus
	// ErrorTypeItem indicates an error object returned inside a 2xx response.
	ErrorTypeItem
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	if t < ErrorTypeUnknown || t > ErrorTypeItem {
		return "UNKNOWN"
	}
	return [...]string{
		"UNKNOWN",
		"VALIDATION",
		"TRANSPORT",
		"STATUS",
		"ITEM",
	}[t]
}

// Sentinel errors for common error conditions.
var (
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrCircuitBreakerOpen is returned when circuit breaker is open.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
	// ErrNoAPIKey is returned when a key ring has no usable key left.
	ErrNoAPIKey = errors.New("no available API key")
)

// RateLimitInfo holds what the service reported about its rate limit on a 429.
// Unknown values are left at zero, Remaining uses -1.
type RateLimitInfo struct {
	Policy     string        `json:"policy,omitempty"`
	Remaining  int           `json:"remaining"`
	Reset      time.Duration `json:"reset,omitempty"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// Wait returns how long the caller should hold off before the next request.
func (r *RateLimitInfo) Wait() time.Duration {
	if r == nil {
		return 0
	}
	return max(r.Reset, r.RetryAfter)
}

// Error is the single structured error returned by every operation of the client.
type Error struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// Code is a stable machine-readable identifier, see ErrorCode.
	Code ErrorCode `json:"code"`
	// StatusCode is the HTTP status, zero for validation and transport errors.
	StatusCode int `json:"status_code,omitempty"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// Endpoint is the URL or path the request was sent to.
	Endpoint string `json:"endpoint,omitempty"`
	// Field names the offending request field for validation errors.
	Field string `json:"field,omitempty"`
	// Index is the position of the failing item in a batch, -1 when not applicable.
	Index int `json:"index"`
	// Body is the raw response body, captured best-effort for status errors.
	Body []byte `json:"-"`
	// RateLimit is set for 429 responses.
	RateLimit *RateLimitInfo `json:"rate_limit,omitempty"`
	// Err is the underlying cause, if any.
	Err error `json:"-"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("openfigi: %s (%d/%s): %s", e.Type, e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("openfigi: %s (%s): %s", e.Type, e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithIndex returns e with the batch index set.
func (e *Error) WithIndex(index int) *Error {
	e.Index = index
	return e
}

func newError(errorType ErrorType, code ErrorCode, message string) *Error {
	return &Error{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Index:     -1,
		Timestamp: time.Now(),
	}
}

// NewValidationError creates an error for a request rejected before sending.
func NewValidationError(code ErrorCode, field, message string) *Error {
	e := newError(ErrorTypeValidation, code, message)
	e.Field = field
	return e
}

// NewTransportError wraps a failure that produced no HTTP status.
// Context cancellation and deadlines get their own codes.
func NewTransportError(endpoint string, err error) *Error {
	code := ErrCodeNetwork
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		code = ErrCodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = ErrCodeTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		code = ErrCodeTimeout
	}
	e := newError(ErrorTypeTransport, code, "request to "+endpoint+" failed")
	e.Endpoint = endpoint
	e.Err = err
	return e
}

// NewDecodeError wraps a response body that could not be decoded.
func NewDecodeError(endpoint string, status int, err error) *Error {
	e := newError(ErrorTypeTransport, ErrCodeDecode, "decode response from "+endpoint)
	e.Endpoint = endpoint
	e.StatusCode = status
	e.Err = err
	return e
}

// NewStatusError creates an error for a non-2xx HTTP response.
func NewStatusError(endpoint string, status int, code ErrorCode, message string, body []byte) *Error {
	e := newError(ErrorTypeStatus, code, message)
	e.Endpoint = endpoint
	e.StatusCode = status
	e.Body = body
	return e
}

// NewItemError creates an error for an {"error": ...} object inside a 2xx response.
func NewItemError(endpoint string, status, index int, message string) *Error {
	e := newError(ErrorTypeItem, ErrCodeItem, message)
	e.Endpoint = endpoint
	e.StatusCode = status
	e.Index = index
	return e
}

// NewMalformedItemError creates an error for a batch element that is neither a
// payload nor an {"error": ...} object.
func NewMalformedItemError(endpoint string, status, index int, err error) *Error {
	e := newError(ErrorTypeItem, ErrCodeMalformedItem, "malformed result element")
	e.Endpoint = endpoint
	e.StatusCode = status
	e.Index = index
	e.Err = err
	return e
}

// AsError extracts the structured error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func isType(err error, t ErrorType) bool {
	e, ok := AsError(err)
	return ok && e.Type == t
}

// IsValidationError returns true if the request was rejected locally.
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsTransportError returns true if no HTTP status was obtained.
func IsTransportError(err error) bool {
	return isType(err, ErrorTypeTransport)
}

// IsStatusError returns true if the service answered with a non-2xx status.
func IsStatusError(err error) bool {
	return isType(err, ErrorTypeStatus)
}

// IsItemError returns true if the error came from an error object inside a 2xx body.
func IsItemError(err error) bool {
	return isType(err, ErrorTypeItem)
}

// IsRateLimitError returns true if the service rejected the request with 429.
// Rate limit errors should be retried after RateLimitInfo.Wait.
func IsRateLimitError(err error) bool {
	return IsErrorCode(err, ErrCodeRateLimit)
}

// IsRetryable returns true if repeating the same request may succeed.
func IsRetryable(err error) bool {
	e, ok := AsError(err)
	if !ok {
		return false
	}
	switch e.Type {
	case ErrorTypeTransport:
		return e.Code == ErrCodeNetwork || e.Code == ErrCodeTimeout || e.Code == ErrCodeCircuitBreaker
	case ErrorTypeStatus:
		switch e.Code {
		case ErrCodeRateLimit, ErrCodeServerError, ErrCodeUnavailable:
			return true
		}
	}
	return false
}

// NewResultCountError reports a 2xx batch whose length does not match the
// number of submitted jobs.
func NewResultCountError(endpoint string, want, got int) *Error {
	msg := fmt.Sprintf("expected %d results, got %d", want, got)
	if want == 1 {
		msg = fmt.Sprintf("expected exactly 1 result, got %d", got)
	}
	e := newError(ErrorTypeItem, ErrCodeUnexpectedResultCount, msg)
	e.Endpoint = endpoint
	return e
}

// NewClientError reports a call stopped inside the client before it reached
// the transport, by the circuit breaker, the local rate limiter or Close.
func NewClientError(code ErrorCode, endpoint string, err error) *Error {
	e := newError(ErrorTypeTransport, code, fmt.Sprintf("request to %s not sent", endpoint))
	e.Endpoint = endpoint
	e.Err = err
	return e
}
