package core

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultBaseURL is the OpenFIGI v3 API root.
	DefaultBaseURL = "https://api.openfigi.com/v3/"
	// APIKeyEnv is the environment variable DefaultConfig reads the API key from.
	APIKeyEnv = "OPENFIGI_API_KEY"
	// APIKeyHeader carries the API key on every request when one is configured.
	APIKeyHeader = "X-OPENFIGI-APIKEY"
)

// Transport names accepted by Config.Transport.
const (
	TransportResty         = "resty"
	TransportRetryableHTTP = "retryablehttp"
)

// Config contains all configuration options for an OpenFIGI client.
// It includes authentication, networking, rate limiting, caching, and circuit breaker settings.
type Config struct {
	BaseURL string `json:"base_url" validate:"required,url"`
	// APIKey is sent as X-OPENFIGI-APIKEY. Empty means unauthenticated access
	// with the lower rate and batch limits.
	APIKey    string `json:"-"`
	Transport string `json:"transport" validate:"omitempty,oneof=resty retryablehttp"`

	// Timeout is the maximum duration for HTTP requests.
	Timeout      time.Duration `json:"timeout" validate:"min=1ms"`
	MaxRetries   int           `json:"max_retries" validate:"min=0"`
	RetryWaitMin time.Duration `json:"retry_wait_min" validate:"min=0"`
	RetryWaitMax time.Duration `json:"retry_wait_max" validate:"min=0"`

	// RateLimitEnabled throttles calls client-side to the published per-endpoint limits.
	RateLimitEnabled bool `json:"rate_limit_enabled"`

	CacheEnabled bool          `json:"cache_enabled"`
	CacheTTL     time.Duration `json:"cache_ttl" validate:"min=0"`

	CircuitBreakerEnabled          bool          `json:"circuit_breaker_enabled"`
	CircuitBreakerFailThreshold    int           `json:"circuit_breaker_fail_threshold"`
	CircuitBreakerSuccessThreshold int           `json:"circuit_breaker_success_threshold"`
	CircuitBreakerTimeout          time.Duration `json:"circuit_breaker_timeout"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config initialized with sensible defaults.
// The API key is taken from OPENFIGI_API_KEY if set; this is the only place the
// environment is consulted.
// Default values: 30s timeout, 2 retries, 500ms-5s retry wait, client-side rate
// limiting on, cache off with 10m TTL, circuit breaker with 5 failures/2 successes/30s timeout.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      DefaultBaseURL,
		APIKey:       strings.TrimSpace(os.Getenv(APIKeyEnv)),
		Transport:    TransportResty,
		Timeout:      30 * time.Second,
		MaxRetries:   2,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,

		RateLimitEnabled: true,

		CacheEnabled: false,
		CacheTTL:     10 * time.Minute,

		CircuitBreakerEnabled:          true,
		CircuitBreakerFailThreshold:    5,
		CircuitBreakerSuccessThreshold: 2,
		CircuitBreakerTimeout:          30 * time.Second,

		LogLevel: "info",
	}
}

var validate = validator.New()

// Validate checks struct tags and the conditional circuit breaker settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.RetryWaitMax > 0 && c.RetryWaitMin > c.RetryWaitMax {
		return errors.New("RetryWaitMin must not exceed RetryWaitMax")
	}
	if c.CircuitBreakerEnabled {
		if c.CircuitBreakerFailThreshold <= 0 {
			return errors.New("CircuitBreakerFailThreshold must be positive when enabled")
		}
		if c.CircuitBreakerSuccessThreshold <= 0 {
			return errors.New("CircuitBreakerSuccessThreshold must be positive when enabled")
		}
		if c.CircuitBreakerTimeout <= 0 {
			return errors.New("CircuitBreakerTimeout must be positive when enabled")
		}
	}
	return nil
}

// HasAPIKey reports whether requests will be authenticated.
func (c *Config) HasAPIKey() bool {
	return c.APIKey != ""
}

// WithBaseURL sets the API root and returns the config for chaining.
func (c *Config) WithBaseURL(baseURL string) *Config {
	c.BaseURL = baseURL
	return c
}

// WithAPIKey sets the API key and returns the config for chaining.
func (c *Config) WithAPIKey(key string) *Config {
	c.APIKey = strings.TrimSpace(key)
	return c
}

// WithTransport selects the HTTP transport and returns the config for chaining.
func (c *Config) WithTransport(name string) *Config {
	c.Transport = name
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithRetries sets the transport retry policy and returns the config for chaining.
func (c *Config) WithRetries(maxRetries int, waitMin, waitMax time.Duration) *Config {
	c.MaxRetries = maxRetries
	c.RetryWaitMin = waitMin
	c.RetryWaitMax = waitMax
	return c
}

// WithRateLimit enables or disables client-side throttling and returns the config for chaining.
func (c *Config) WithRateLimit(enabled bool) *Config {
	c.RateLimitEnabled = enabled
	return c
}

// WithCache enables or disables caching with the specified TTL and returns the config for chaining.
func (c *Config) WithCache(enabled bool, ttl time.Duration) *Config {
	c.CacheEnabled = enabled
	c.CacheTTL = ttl
	return c
}

// WithCircuitBreaker enables or disables the circuit breaker and returns the config for chaining.
func (c *Config) WithCircuitBreaker(enabled bool) *Config {
	c.CircuitBreakerEnabled = enabled
	return c
}

// WithLogLevel sets the log level and returns the config for chaining.
func (c *Config) WithLogLevel(level string) *Config {
	c.LogLevel = level
	return c
}
