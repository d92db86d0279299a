package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	config := DefaultConfig()

	assert.Equal(t, DefaultBaseURL, config.BaseURL)
	assert.Empty(t, config.APIKey)
	assert.False(t, config.HasAPIKey())
	assert.Equal(t, TransportResty, config.Transport)
	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, 2, config.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, config.RetryWaitMin)
	assert.Equal(t, 5*time.Second, config.RetryWaitMax)
	assert.True(t, config.RateLimitEnabled)
	assert.False(t, config.CacheEnabled)
	assert.Equal(t, 10*time.Minute, config.CacheTTL)
	assert.True(t, config.CircuitBreakerEnabled)
	assert.Equal(t, 5, config.CircuitBreakerFailThreshold)
	assert.Equal(t, 2, config.CircuitBreakerSuccessThreshold)
	assert.Equal(t, 30*time.Second, config.CircuitBreakerTimeout)
	assert.Equal(t, "info", config.LogLevel)
	assert.NoError(t, config.Validate())
}

func TestDefaultConfig_APIKeyFromEnv(t *testing.T) {
	t.Setenv(APIKeyEnv, "  env-key \n")
	config := DefaultConfig()

	assert.Equal(t, "env-key", config.APIKey)
	assert.True(t, config.HasAPIKey())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{BaseURL: DefaultBaseURL, Timeout: 10 * time.Second}
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid_config",
			config:  valid(),
			wantErr: false,
		},
		{
			name:    "missing_base_url",
			config:  &Config{Timeout: 10 * time.Second},
			wantErr: true,
			errMsg:  "BaseURL",
		},
		{
			name:    "invalid_base_url",
			config:  valid().WithBaseURL("not a url"),
			wantErr: true,
			errMsg:  "BaseURL",
		},
		{
			name:    "unknown_transport",
			config:  valid().WithTransport("carrier-pigeon"),
			wantErr: true,
			errMsg:  "Transport",
		},
		{
			name:    "invalid_timeout",
			config:  valid().WithTimeout(-1 * time.Second),
			wantErr: true,
			errMsg:  "Timeout",
		},
		{
			name:    "negative_max_retries",
			config:  valid().WithRetries(-1, 0, 0),
			wantErr: true,
			errMsg:  "MaxRetries",
		},
		{
			name:    "retry_wait_inverted",
			config:  valid().WithRetries(1, 2*time.Second, time.Second),
			wantErr: true,
			errMsg:  "RetryWaitMin",
		},
		{
			name:    "invalid_log_level",
			config:  valid().WithLogLevel("trace"),
			wantErr: true,
			errMsg:  "LogLevel",
		},
		{
			name: "invalid_circuit_breaker_fail_threshold",
			config: &Config{
				BaseURL:               DefaultBaseURL,
				Timeout:               10 * time.Second,
				CircuitBreakerEnabled: true,
			},
			wantErr: true,
			errMsg:  "CircuitBreakerFailThreshold",
		},
		{
			name: "invalid_circuit_breaker_success_threshold",
			config: &Config{
				BaseURL:                     DefaultBaseURL,
				Timeout:                     10 * time.Second,
				CircuitBreakerEnabled:       true,
				CircuitBreakerFailThreshold: 5,
			},
			wantErr: true,
			errMsg:  "CircuitBreakerSuccessThreshold",
		},
		{
			name: "invalid_circuit_breaker_timeout",
			config: &Config{
				BaseURL:                        DefaultBaseURL,
				Timeout:                        10 * time.Second,
				CircuitBreakerEnabled:          true,
				CircuitBreakerFailThreshold:    5,
				CircuitBreakerSuccessThreshold: 2,
			},
			wantErr: true,
			errMsg:  "CircuitBreakerTimeout",
		},
		{
			name:    "circuit_breaker_disabled_skips_validation",
			config:  valid().WithCircuitBreaker(false),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), tt.errMsg), "expected error to contain %q, got %q", tt.errMsg, err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_WithAPIKey(t *testing.T) {
	config := DefaultConfig()
	result := config.WithAPIKey(" my-key ")

	assert.Equal(t, config, result)
	assert.Equal(t, "my-key", config.APIKey)
}

func TestConfig_WithCache(t *testing.T) {
	config := DefaultConfig()
	result := config.WithCache(true, time.Minute)

	assert.Equal(t, config, result)
	assert.True(t, config.CacheEnabled)
	assert.Equal(t, time.Minute, config.CacheTTL)
}

func TestConfig_WithRateLimit(t *testing.T) {
	config := DefaultConfig().WithRateLimit(false)

	assert.False(t, config.RateLimitEnabled)
}
