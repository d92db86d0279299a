package http

import (
	"context"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openfigi/pkg/core"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(&Config{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Headers: map[string]string{"User-Agent": "openfigi-test"},
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(&Config{Timeout: time.Second}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewClient(&Config{BaseURL: "https://api.openfigi.com/v3/"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestClient_Do_Post(t *testing.T) {
	var (
		gotPath   string
		gotBody   string
		gotKey    string
		gotAgent  string
		gotMethod string
	)
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		body, _ := io.ReadAll(r.Body)
		gotPath, gotBody, gotMethod = r.URL.Path, string(body), r.Method
		gotKey = r.Header.Get(core.APIKeyHeader)
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"data":[]}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/v3/")
	req := core.NewRequest(core.OpMapping).
		SetBody([]byte(`[{"idType":"ID_ISIN","idValue":"US4592001014"}]`)).
		SetHeader(core.APIKeyHeader, "secret")

	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, `[{"data":[]}]`, string(resp.Body))
	assert.Equal(t, "application/json", resp.Headers.Get("content-type"))
	assert.Equal(t, "/v3/mapping", gotPath)
	assert.Equal(t, nethttp.MethodPost, gotMethod)
	assert.Equal(t, `[{"idType":"ID_ISIN","idValue":"US4592001014"}]`, gotBody)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "openfigi-test", gotAgent)
	assert.Contains(t, resp.URL, "/v3/mapping")
}

func TestClient_Do_ErrorStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("ratelimit-reset", "30")
		w.WriteHeader(nethttp.StatusTooManyRequests)
		_, _ = w.Write([]byte("Too Many Requests"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	resp, err := c.Do(context.Background(), core.NewRequest(core.OpSearch).SetBody([]byte(`{"query":"ibm"}`)))
	require.NoError(t, err)

	assert.Equal(t, nethttp.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "30", resp.Headers.Get("Ratelimit-Reset"))
	assert.Equal(t, "Too Many Requests", string(resp.Body))
}

func TestClient_Do_RetriesPost(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"query":"ibm"}`, string(body))
		if calls.Add(1) == 1 {
			w.WriteHeader(nethttp.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c, err := NewClient(&Config{
		BaseURL:      srv.URL,
		Timeout:      5 * time.Second,
		MaxRetries:   2,
		RetryWaitMin: 10 * time.Millisecond,
		RetryWaitMax: 20 * time.Millisecond,
	}, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	resp, err := c.Do(context.Background(), core.NewRequest(core.OpSearch).SetBody([]byte(`{"query":"ibm"}`)))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Do_Get(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, nethttp.MethodGet, r.Method)
		assert.Equal(t, "/mapping/values/idType", r.URL.Path)
		_, _ = w.Write([]byte(`{"values":["ID_ISIN"]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	resp, err := c.Do(context.Background(), core.NewRequest(core.OpMappingValues).SetPath("mapping/values/idType"))
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
}

func TestClient_Do_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	resp, err := c.Do(ctx, core.NewRequest(core.OpFilter).SetBody([]byte(`{}`)))
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Equal(t, core.ErrCodeTimeout, core.NewTransportError("filter", err).Code)
}

func TestClient_Close(t *testing.T) {
	c := newTestClient(t, "https://api.openfigi.com/v3/")
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.Do(context.Background(), core.NewRequest(core.OpSearch))
	assert.ErrorIs(t, err, core.ErrClientClosed)
}
