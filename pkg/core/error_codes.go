package core

import "errors"

// ErrorCode is a stable, machine-readable identifier for a specific error condition.
type ErrorCode string

// Validation errors
const (
	ErrCodeMissingField   ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidFilter  ErrorCode = "INVALID_FILTER"
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrCodeBatchSize      ErrorCode = "BATCH_SIZE"
	ErrCodeInvalidConfig  ErrorCode = "INVALID_CONFIG"
)

// Transport errors
const (
	// ErrCodeNetwork indicates a network connectivity failure.
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"
	// ErrCodeTimeout indicates the request exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeCanceled indicates the caller canceled the context.
	ErrCodeCanceled ErrorCode = "CANCELED"
	// ErrCodeDecode indicates a 2xx body that is not the expected JSON.
	ErrCodeDecode ErrorCode = "DECODE_ERROR"
	// ErrCodeCircuitBreaker indicates the request was not sent because the breaker is open.
	ErrCodeCircuitBreaker ErrorCode = "CIRCUIT_BREAKER_OPEN"
	// ErrCodeLocalRateLimit indicates the client-side limiter could not grant a slot in time.
	ErrCodeLocalRateLimit ErrorCode = "RATE_LIMITED_LOCALLY"
	ErrCodeClientClosed   ErrorCode = "CLIENT_CLOSED"
)

// Status errors
const (
	ErrCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrCodeAuth             ErrorCode = "AUTH_ERROR"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeNotAcceptable    ErrorCode = "NOT_ACCEPTABLE"
	ErrCodePayloadTooLarge  ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeRateLimit        ErrorCode = "RATE_LIMIT"
	ErrCodeServerError      ErrorCode = "SERVER_ERROR"
	ErrCodeUnavailable      ErrorCode = "UNAVAILABLE"
	ErrCodeUnexpectedStatus ErrorCode = "UNEXPECTED_STATUS"
)

// Item errors
const (
	ErrCodeItem                  ErrorCode = "ITEM_ERROR"
	ErrCodeUnexpectedResultCount ErrorCode = "UNEXPECTED_RESULT_COUNT"
	ErrCodeMalformedItem         ErrorCode = "MALFORMED_ITEM"
)

// IsErrorCode checks if the error matches the specified error code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
