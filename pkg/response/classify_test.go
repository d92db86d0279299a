package response

import (
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openfigi/pkg/core"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   core.ErrorCode
		errMsg string
	}{
		{"bad_request", 400, "Request body must be a JSON array.", core.ErrCodeBadRequest, "invalid request body or parameters: Request body must be a JSON array."},
		{"unauthorized", 401, "", core.ErrCodeAuth, "API key is missing or invalid"},
		{"not_found", 404, "", core.ErrCodeNotFound, "not found"},
		{"method_not_allowed", 405, "", core.ErrCodeMethodNotAllowed, "method not allowed"},
		{"not_acceptable", 406, "", core.ErrCodeNotAcceptable, "Accept header"},
		{"too_large", 413, "", core.ErrCodePayloadTooLarge, "max 100 with API key, 5 without"},
		{"server_error", 500, "", core.ErrCodeServerError, "retry with backoff"},
		{"bad_gateway", 502, "", core.ErrCodeUnavailable, "status 502"},
		{"unavailable", 503, "", core.ErrCodeUnavailable, "retry later"},
		{"gateway_timeout", 504, "", core.ErrCodeUnavailable, "status 504"},
		{"teapot", 418, "short and stout", core.ErrCodeUnexpectedStatus, "unexpected HTTP status 418 from " + mappingURL + ": short and stout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Classify(mappingURL, tt.status, nil, []byte(tt.body))
			assert.Equal(t, core.ErrorTypeStatus, e.Type)
			assert.Equal(t, tt.code, e.Code)
			assert.Equal(t, tt.status, e.StatusCode)
			assert.Equal(t, mappingURL, e.Endpoint)
			assert.Contains(t, e.Error(), tt.errMsg)
			assert.Nil(t, e.RateLimit)
		})
	}
}

func TestClassify_RateLimit(t *testing.T) {
	headers := http.Header{}
	headers.Set("ratelimit-policy", "25;w=60")
	headers.Set("ratelimit-remaining", "0")
	headers.Set("ratelimit-reset", "30")

	e := Classify(mappingURL, http.StatusTooManyRequests, headers, nil)

	assert.True(t, core.IsRateLimitError(e))
	assert.True(t, core.IsRetryable(e))
	require.NotNil(t, e.RateLimit)
	assert.Equal(t, "25;w=60", e.RateLimit.Policy)
	assert.Equal(t, 0, e.RateLimit.Remaining)
	assert.Equal(t, 30*time.Second, e.RateLimit.Reset)
	assert.Equal(t, 30*time.Second, e.RateLimit.Wait())
	assert.Contains(t, e.Message, "30")
	assert.Contains(t, e.Message, "policy 25;w=60")
}

func TestClassify_EmptyBodyKeepsStatus(t *testing.T) {
	e := Classify(mappingURL, http.StatusInternalServerError, nil, nil)

	assert.Equal(t, core.ErrCodeServerError, e.Code)
	assert.Empty(t, e.Body)
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"short", "  bad request  ", len("bad request")},
		{"ascii_cut", strings.Repeat("a", maxBodySnippet+10), maxBodySnippet + 3},
		// "é" is two bytes, so byte 512 falls inside a rune
		{"rune_boundary", "a" + strings.Repeat("é", maxBodySnippet), maxBodySnippet - 1 + 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := snippet([]byte(tt.body))
			assert.True(t, utf8.ValidString(got))
			assert.Len(t, got, tt.want)
		})
	}
}

func TestParseRateLimit(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    core.RateLimitInfo
	}{
		{
			name:    "none",
			headers: nil,
			want:    core.RateLimitInfo{Remaining: -1},
		},
		{
			name:    "retry_after_seconds",
			headers: map[string]string{"Retry-After": "12"},
			want:    core.RateLimitInfo{Remaining: -1, RetryAfter: 12 * time.Second},
		},
		{
			name:    "legacy_headers",
			headers: map[string]string{"X-RateLimit-Remaining": "3", "X-RateLimit-Reset": "5"},
			want:    core.RateLimitInfo{Remaining: 3, Reset: 5 * time.Second},
		},
		{
			name:    "garbage",
			headers: map[string]string{"Retry-After": "soon", "ratelimit-remaining": "many"},
			want:    core.RateLimitInfo{Remaining: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}
			assert.Equal(t, tt.want, *ParseRateLimit(h))
		})
	}
}
