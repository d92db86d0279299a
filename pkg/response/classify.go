package response

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"openfigi/pkg/core"
)

// maxBodySnippet bounds how much of a response body is quoted in messages.
const maxBodySnippet = 512

// ClassifyResponse classifies a non-2xx response.
func ClassifyResponse(resp *core.Response) *core.Error {
	return Classify(resp.URL, resp.StatusCode, resp.Headers, resp.Body)
}

// Classify maps a non-2xx status to a structured error. body may be empty
// when it could not be read; the status still decides the category.
func Classify(url string, status int, headers http.Header, body []byte) *core.Error {
	var (
		code core.ErrorCode
		msg  string
		rl   *core.RateLimitInfo
	)

	switch status {
	case http.StatusBadRequest:
		code = core.ErrCodeBadRequest
		msg = fmt.Sprintf("bad request to %s: invalid request body or parameters", url)
		if s := snippet(body); s != "" {
			msg += ": " + s
		}
	case http.StatusUnauthorized:
		code = core.ErrCodeAuth
		msg = fmt.Sprintf("unauthorized access to %s: API key is missing or invalid", url)
	case http.StatusNotFound:
		code = core.ErrCodeNotFound
		msg = fmt.Sprintf("resource not found at %s", url)
	case http.StatusMethodNotAllowed:
		code = core.ErrCodeMethodNotAllowed
		msg = fmt.Sprintf("method not allowed for %s", url)
	case http.StatusNotAcceptable:
		code = core.ErrCodeNotAcceptable
		msg = fmt.Sprintf("unsupported Accept header type for %s", url)
	case http.StatusRequestEntityTooLarge:
		code = core.ErrCodePayloadTooLarge
		msg = fmt.Sprintf("too many mapping jobs in request to %s (max 100 with API key, 5 without)", url)
	case http.StatusTooManyRequests:
		rl = ParseRateLimit(headers)
		code = core.ErrCodeRateLimit
		msg = fmt.Sprintf("rate limit exceeded for %s", url)
		if details := describeRateLimit(rl); details != "" {
			msg += " (" + details + ")"
		}
		msg += "; retry later"
	case http.StatusInternalServerError:
		code = core.ErrCodeServerError
		msg = fmt.Sprintf("internal server error at %s; retry with backoff", url)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		code = core.ErrCodeUnavailable
		msg = fmt.Sprintf("service unavailable at %s (status %d); retry later", url, status)
	default:
		code = core.ErrCodeUnexpectedStatus
		msg = fmt.Sprintf("unexpected HTTP status %d from %s", status, url)
		if s := snippet(body); s != "" {
			msg += ": " + s
		}
	}

	e := core.NewStatusError(url, status, code, msg, body)
	e.RateLimit = rl
	return e
}

// ParseRateLimit reads the rate limit headers of a response. Both the
// IETF draft names and the older X-RateLimit names are recognized.
func ParseRateLimit(headers http.Header) *core.RateLimitInfo {
	info := &core.RateLimitInfo{Remaining: -1}
	if headers == nil {
		return info
	}

	info.Policy = headers.Get("Ratelimit-Policy")

	if v := firstHeader(headers, "Ratelimit-Remaining", "X-Ratelimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			info.Remaining = n
		}
	}
	if v := firstHeader(headers, "Ratelimit-Reset", "X-Ratelimit-Reset"); v != "" {
		info.Reset = parseSeconds(v)
	}
	if v := headers.Get("Retry-After"); v != "" {
		info.RetryAfter = parseSeconds(v)
	}
	return info
}

func firstHeader(headers http.Header, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(headers.Get(name)); v != "" {
			return v
		}
	}
	return ""
}

// epochThreshold separates delta-seconds from Unix timestamps in reset headers.
const epochThreshold = 1_000_000_000

// parseSeconds accepts delta seconds, a Unix timestamp or an HTTP date.
func parseSeconds(v string) time.Duration {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		if n >= epochThreshold {
			return max(time.Until(time.Unix(n, 0)).Round(time.Second), 0)
		}
		return time.Duration(n) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return max(time.Until(t).Round(time.Second), 0)
	}
	return 0
}

func describeRateLimit(rl *core.RateLimitInfo) string {
	var parts []string
	if rl.Policy != "" {
		parts = append(parts, "policy "+rl.Policy)
	}
	if rl.Remaining >= 0 {
		parts = append(parts, fmt.Sprintf("%d requests remaining", rl.Remaining))
	}
	if rl.Reset > 0 {
		parts = append(parts, "resets in "+rl.Reset.String())
	}
	if rl.RetryAfter > 0 {
		parts = append(parts, "retry after "+rl.RetryAfter.String())
	}
	return strings.Join(parts, ", ")
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= maxBodySnippet {
		return s
	}
	cut := maxBodySnippet
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
