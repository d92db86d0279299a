// Package openfigi is a client for the OpenFIGI v3 API. It validates requests
// locally, throttles them per endpoint, sends them over a pluggable transport
// and reconciles the responses into typed results.
package openfigi

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"openfigi/internal/cache"
	"openfigi/internal/circuitbreaker"
	httpClient "openfigi/internal/http"
	"openfigi/internal/keyring"
	"openfigi/internal/ratelimit"
	"openfigi/internal/retryhttp"
	"openfigi/pkg/core"
	"openfigi/pkg/response"
)

const cacheMaxEntries = 1024

// Client is safe for concurrent use.
type Client struct {
	config         core.Config
	transport      core.Transport
	keyRing        *keyring.KeyRing
	rateLimiter    *ratelimit.RateLimiter
	circuitBreaker *circuitbreaker.Breaker
	cache          *cache.Cache[*core.Response]
	logger         zerolog.Logger
	closed         atomic.Bool
}

// Option is a functional option for configuring the Client.
type Option func(*Options)

// Options holds configuration options for the Client.
type Options struct {
	Logger    zerolog.Logger
	Transport core.Transport
	KeyRing   *keyring.KeyRing
}

// WithLogger returns an option that sets the logger for the client and its transport.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithTransport replaces the transport selected by Config.Transport.
func WithTransport(t core.Transport) Option {
	return func(o *Options) {
		o.Transport = t
	}
}

// WithKeyRing returns an option that rotates requests over several API keys.
// It takes precedence over Config.APIKey.
func WithKeyRing(kr *keyring.KeyRing) Option {
	return func(o *Options) {
		o.KeyRing = kr
	}
}

// New creates a Client. A nil config means core.DefaultConfig().
func New(config *core.Config, opts ...Option) (*Client, error) {
	if config == nil {
		config = core.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		e := core.NewValidationError(core.ErrCodeInvalidConfig, "", "invalid client config")
		e.Err = err
		return nil, e
	}

	options := &Options{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(options)
	}

	c := &Client{
		config:  *config,
		keyRing: options.KeyRing,
		logger:  options.Logger.With().Str("component", "openfigi").Logger(),
	}

	transport := options.Transport
	if transport == nil {
		var err error
		if transport, err = newTransport(config, c.logger); err != nil {
			return nil, err
		}
	}
	c.transport = transport

	if config.RateLimitEnabled {
		authenticated := c.HasAPIKey()
		def := core.OpMapping.RateLimit(authenticated)
		c.rateLimiter = ratelimit.New(def.Requests, def.Period)
		for _, op := range core.Operations() {
			limit := op.RateLimit(authenticated)
			c.rateLimiter.SetBucketLimit(op.Bucket(), limit.Requests, limit.Period)
		}
	}

	if config.CircuitBreakerEnabled {
		logger := c.logger
		c.circuitBreaker = circuitbreaker.New(circuitbreaker.Config{
			FailThreshold:    config.CircuitBreakerFailThreshold,
			SuccessThreshold: config.CircuitBreakerSuccessThreshold,
			Timeout:          config.CircuitBreakerTimeout,
			OnStateChange: func(from, to circuitbreaker.State) {
				logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			},
		})
	}

	if config.CacheEnabled {
		c.cache = cache.New[*core.Response](config.CacheTTL, cacheMaxEntries)
	}

	return c, nil
}

func newTransport(config *core.Config, logger zerolog.Logger) (core.Transport, error) {
	switch config.Transport {
	case core.TransportRetryableHTTP:
		t, err := retryhttp.NewClient(&retryhttp.Config{
			BaseURL:      config.BaseURL,
			Timeout:      config.Timeout,
			MaxRetries:   config.MaxRetries,
			RetryWaitMin: config.RetryWaitMin,
			RetryWaitMax: config.RetryWaitMax,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create retryablehttp transport: %w", err)
		}
		return t, nil
	default:
		t, err := httpClient.NewClient(&httpClient.Config{
			BaseURL:      config.BaseURL,
			Timeout:      config.Timeout,
			MaxRetries:   config.MaxRetries,
			RetryWaitMin: config.RetryWaitMin,
			RetryWaitMax: config.RetryWaitMax,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create http transport: %w", err)
		}
		return t, nil
	}
}

// Config returns a copy of the client configuration.
func (c *Client) Config() core.Config {
	return c.config
}

// HasAPIKey reports whether requests are sent with an API key, which raises
// the batch and rate limits.
func (c *Client) HasAPIKey() bool {
	if c.keyRing != nil && c.keyRing.Len() > 0 {
		return true
	}
	return c.config.HasAPIKey()
}

// ClearCache drops every cached response.
func (c *Client) ClearCache() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Close releases the transport. Calls made after Close fail with CLIENT_CLOSED.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.transport.Close()
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + "/" + path
}

// do sends one request for op. payload is serialized as the JSON body when
// non-nil. The returned response has any status; classification is left to
// the caller's parser.
func (c *Client) do(ctx context.Context, op core.Operation, path string, payload any) (*core.Response, error) {
	req := core.NewRequest(op)
	if path != "" {
		req.SetPath(path)
	}
	endpoint := c.endpoint(req.Path)

	if c.closed.Load() {
		return nil, core.NewClientError(core.ErrCodeClientClosed, endpoint, core.ErrClientClosed)
	}

	if payload != nil {
		body, err := sonic.Marshal(payload)
		if err != nil {
			e := core.NewValidationError(core.ErrCodeInvalidRequest, "", "serialize request body")
			e.Err = err
			return nil, e
		}
		req.SetBody(body)
	}

	logger := c.logger.With().
		Str("operation", op.String()).
		Str("request_id", uuid.NewString()).
		Logger()

	if c.cache != nil {
		req.SetCache(cacheKey(req), c.config.CacheTTL)
		if resp, ok := c.cache.Get(req.CacheKey); ok {
			logger.Debug().Str("endpoint", endpoint).Msg("cache hit")
			return resp, nil
		}
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.WaitBucket(ctx, op.Bucket()); err != nil {
			if ctx.Err() != nil {
				return nil, core.NewTransportError(endpoint, ctx.Err())
			}
			return nil, core.NewClientError(core.ErrCodeLocalRateLimit, endpoint, err)
		}
	}

	if c.circuitBreaker != nil && !c.circuitBreaker.Allow() {
		return nil, core.NewClientError(core.ErrCodeCircuitBreaker, endpoint, core.ErrCircuitBreakerOpen)
	}

	keyID := c.setAPIKey(req, logger)

	start := time.Now()
	resp, err := c.transport.Do(ctx, req)
	duration := time.Since(start)

	if err != nil {
		terr := core.NewTransportError(endpoint, err)
		if terr.Code != core.ErrCodeCanceled {
			if c.circuitBreaker != nil {
				c.circuitBreaker.Record(false)
			}
			c.reportKey(keyID, terr)
		}
		logger.Warn().Err(err).Str("endpoint", endpoint).Dur("duration", duration).Msg("request failed")
		return nil, terr
	}
	if resp.URL == "" {
		resp.URL = endpoint
	}

	if c.circuitBreaker != nil {
		c.circuitBreaker.Record(resp.StatusCode < 500)
	}

	logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Int("size", len(resp.Body)).
		Dur("duration", duration).
		Msg("request completed")

	if !resp.IsSuccess() {
		classified := response.ClassifyResponse(resp)
		if classified.Code == core.ErrCodeRateLimit {
			if c.rateLimiter != nil {
				c.rateLimiter.Backoff(op.Bucket(), classified.RateLimit.Wait())
			}
			logger.Warn().Str("endpoint", endpoint).Dur("wait", classified.RateLimit.Wait()).Msg("rate limited")
		}
		c.reportKey(keyID, classified)
	}

	if c.cache != nil && resp.IsSuccess() {
		c.cache.Set(req.CacheKey, resp, req.CacheTTL)
	}

	return resp, nil
}

// setAPIKey puts the key for this request in its header and returns the key
// ring id, if any. A ring with no usable key falls back to Config.APIKey, or
// to an unauthenticated request.
func (c *Client) setAPIKey(req *core.Request, logger zerolog.Logger) string {
	if c.keyRing != nil {
		key, err := c.keyRing.Acquire()
		if err == nil {
			req.SetHeader(core.APIKeyHeader, key.Key)
			return key.ID
		}
		logger.Debug().Err(err).Msg("key ring has no usable key")
	}
	if c.config.HasAPIKey() {
		req.SetHeader(core.APIKeyHeader, c.config.APIKey)
	}
	return ""
}

func (c *Client) reportKey(id string, err error) {
	if c.keyRing != nil && id != "" {
		c.keyRing.Report(id, err)
	}
}

// cacheKey derives a stable key from the endpoint and body.
func cacheKey(req *core.Request) string {
	name := req.Method + " " + req.Path + "\n" + string(req.Body)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
