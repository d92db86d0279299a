// Package cli implements the figi command line tool.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"openfigi/internal/keyring"
	"openfigi/internal/logging"
	"openfigi/pkg/core"
	"openfigi/pkg/openfigi"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-18"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "OPENFIGI"

// App holds the dependencies shared by the commands.
type App struct {
	viper  *viper.Viper
	Config *core.Config
	Logger zerolog.Logger
	closer io.Closer
}

// NewRootCmd creates the root command. Settings are resolved in order from
// flags, OPENFIGI_* environment variables, the --config file and defaults.
func NewRootCmd() *cobra.Command {
	app := &App{
		viper:  viper.New(),
		Logger: zerolog.Nop(),
	}

	defaults := core.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "figi",
		Short: "Query the OpenFIGI API",
		Long: `figi maps third-party identifiers to FIGIs and searches the OpenFIGI
instrument database.

The API key is read from --api-key, OPENFIGI_API_KEY or a .env file.
Without a key mapping batches are limited to 5 jobs and rate limits are lower.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app.closer != nil {
				return app.closer.Close()
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("api-key", "", "OpenFIGI API key")
	flags.StringSlice("api-keys", nil, "several API keys to rotate between")
	flags.String("key-rotation", keyring.RotationOnRateLimit.String(), "key rotation strategy: round_robin, on_error or on_rate_limit")
	flags.String("base-url", defaults.BaseURL, "API root URL")
	flags.Duration("timeout", defaults.Timeout, "request timeout")
	flags.Int("retries", defaults.MaxRetries, "transport retries for 429 and 5xx responses")
	flags.String("transport", defaults.Transport, "HTTP transport: resty or retryablehttp")
	flags.Bool("rate-limit", defaults.RateLimitEnabled, "throttle requests to the published rate limits")
	flags.Bool("cache", defaults.CacheEnabled, "cache successful responses for the duration of the command")
	flags.String("log-level", defaults.LogLevel, "log level: debug, info, warn or error")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("log-file", "", "also write JSON logs to this file")
	flags.StringP("output", "o", OutputTable, "output format: table or json")

	app.viper.SetEnvPrefix(EnvPrefix)
	app.viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	app.viper.AutomaticEnv()
	_ = app.viper.BindPFlags(flags)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newMapCmd(app))
	rootCmd.AddCommand(newSearchCmd(app))
	rootCmd.AddCommand(newFilterCmd(app))
	rootCmd.AddCommand(newValuesCmd(app))

	return rootCmd
}

func (a *App) setup(cmd *cobra.Command) error {
	if path := a.viper.GetString("config"); path != "" {
		a.viper.SetConfigFile(path)
		if err := a.viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg, err := loadConfig(a.viper)
	if err != nil {
		return err
	}
	a.Config = cfg

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Out = cmd.ErrOrStderr()
	if file := a.viper.GetString("log-file"); file != "" {
		logCfg.File = true
		logCfg.FilePath = file
	}
	a.Logger, a.closer = logging.New(logCfg)
	a.Logger.Debug().Str("base_url", cfg.BaseURL).Bool("api_key", cfg.HasAPIKey()).Msg("configuration loaded")

	return nil
}

// client builds an API client for one command run.
func (a *App) client() (*openfigi.Client, error) {
	opts := []openfigi.Option{openfigi.WithLogger(a.Logger)}

	if keys := a.viper.GetStringSlice("api-keys"); len(keys) > 0 {
		strategy, err := keyring.ParseStrategy(a.viper.GetString("key-rotation"))
		if err != nil {
			return nil, err
		}
		ring := keyring.FromStrings(keys, strategy)
		ring.SetLogger(a.Logger)
		opts = append(opts, openfigi.WithKeyRing(ring))
	}

	return openfigi.New(a.Config, opts...)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("figi v%s (%s)\n", Version, BuildDate)
			return nil
		},
	}
}
