package cli

import (
	"fmt"

	"github.com/spf13/viper"

	"openfigi/pkg/core"
)

// loadConfig resolves a client configuration from v. Keys missing from v keep
// the core defaults, so the API key still falls back to OPENFIGI_API_KEY.
func loadConfig(v *viper.Viper) (*core.Config, error) {
	cfg := core.DefaultConfig()

	if v.IsSet("base-url") {
		cfg.WithBaseURL(v.GetString("base-url"))
	}
	if key := v.GetString("api-key"); key != "" {
		cfg.WithAPIKey(key)
	}
	if v.IsSet("timeout") {
		cfg.WithTimeout(v.GetDuration("timeout"))
	}
	if v.IsSet("retries") {
		cfg.MaxRetries = v.GetInt("retries")
	}
	if v.IsSet("transport") {
		cfg.WithTransport(v.GetString("transport"))
	}
	if v.IsSet("rate-limit") {
		cfg.WithRateLimit(v.GetBool("rate-limit"))
	}
	if v.IsSet("cache") {
		cfg.WithCache(v.GetBool("cache"), cfg.CacheTTL)
	}
	if v.IsSet("log-level") {
		cfg.WithLogLevel(v.GetString("log-level"))
	}
	if v.GetBool("debug") {
		cfg.WithLogLevel("debug")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
