// Package retryhttp is an alternative Transport on hashicorp/go-retryablehttp.
// It retries 429 and 5xx responses with exponential backoff that honors
// Retry-After, and hands the last response back unchanged once retries run out.
package retryhttp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"openfigi/pkg/core"
)

var _ core.Transport = (*Client)(nil)

type Config struct {
	BaseURL      string            `validate:"required,url"`
	Timeout      time.Duration     `validate:"min=1ms"`
	MaxRetries   int               `validate:"min=0"`
	RetryWaitMin time.Duration     `validate:"min=0"`
	RetryWaitMax time.Duration     `validate:"min=0"`
	Headers      map[string]string `validate:"omitempty"`
}

type Client struct {
	client  *retryablehttp.Client
	baseURL *url.URL
	headers map[string]string
	logger  zerolog.Logger
	mu      sync.RWMutex
	closed  bool
}

func NewClient(config *Config, logger zerolog.Logger) (*Client, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	base, err := url.Parse(strings.TrimRight(config.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = config.MaxRetries
	rc.RetryWaitMin = config.RetryWaitMin
	rc.RetryWaitMax = config.RetryWaitMax
	rc.HTTPClient.Timeout = config.Timeout
	rc.Logger = leveledLogger{logger: logger}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	headers := map[string]string{"Accept": "application/json"}
	for k, v := range config.Headers {
		headers[k] = v
	}

	return &Client{
		client:  rc,
		baseURL: base,
		headers: headers,
		logger:  logger,
	}, nil
}

// Do sends req. An error is returned only when no status was received.
func (c *Client) Do(ctx context.Context, req *core.Request) (*core.Response, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, core.ErrClientClosed
	}

	target := c.baseURL.ResolveReference(&url.URL{Path: strings.TrimLeft(req.Path, "/")})

	var body any
	if req.Body != nil {
		body = req.Body
	}
	r, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range c.headers {
		r.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}

	resp, err := c.client.Do(r)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if resp.StatusCode < http.StatusBadRequest {
			return nil, fmt.Errorf("read response body: %w", err)
		}
		c.logger.Warn().Err(err).Int("status", resp.StatusCode).Msg("read error response body")
		data = nil
	}

	return &core.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
		URL:        target.String(),
	}, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}

// leveledLogger routes retryablehttp's logging into zerolog.
type leveledLogger struct {
	logger zerolog.Logger
}

var _ retryablehttp.LeveledLogger = leveledLogger{}

func (l leveledLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...any) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}
