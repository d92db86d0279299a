package openfigi

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openfigi/internal/figitest"
	"openfigi/internal/keyring"
	"openfigi/pkg/core"
	"openfigi/pkg/request"
)

func testConfig(t *testing.T, srv *figitest.Server) *core.Config {
	t.Helper()
	t.Setenv(core.APIKeyEnv, "")
	return core.DefaultConfig().
		WithBaseURL(srv.BaseURL()).
		WithTimeout(5*time.Second).
		WithRetries(0, 0, 0).
		WithRateLimit(false).
		WithCircuitBreaker(false)
}

func newTestClient(t *testing.T, srv *figitest.Server, config *core.Config, opts ...Option) *Client {
	t.Helper()
	if config == nil {
		config = testConfig(t, srv)
	}
	client, err := New(config, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func mustMapping(t *testing.T, idType core.IDType, value string) *request.MappingRequest {
	t.Helper()
	req, err := request.NewMappingBuilder().IDType(idType).IDValue(value).Build()
	require.NoError(t, err)
	return req
}

func TestNew_InvalidConfig(t *testing.T) {
	client, err := New(&core.Config{BaseURL: "not a url"})

	assert.Nil(t, client)
	assert.True(t, core.IsErrorCode(err, core.ErrCodeInvalidConfig))
}

func TestNew_Transports(t *testing.T) {
	srv := figitest.New(t)

	for _, name := range []string{core.TransportResty, core.TransportRetryableHTTP} {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, srv, testConfig(t, srv).WithTransport(name))

			data, err := client.Map(context.Background(), mustMapping(t, core.IDTypeISIN, "US4592001014"))
			require.NoError(t, err)
			require.Len(t, data.Data, 1)
			assert.Equal(t, "BBG000BLNNH6", data.Data[0].FIGI)
		})
	}
}

func TestClient_Map(t *testing.T) {
	srv := figitest.New(t)
	client := newTestClient(t, srv, nil)

	data, err := client.Map(context.Background(), mustMapping(t, core.IDTypeISIN, "US4592001014"))
	require.NoError(t, err)

	assert.True(t, data.Found())
	assert.Equal(t, "IBM", data.Data[0].Ticker)
	assert.Equal(t, "BBG001S5S399", data.Data[0].ShareClassFIGI)

	recorded := srv.Requests(figitest.Mapping)
	require.Len(t, recorded, 1)
	assert.JSONEq(t, `[{"idType":"ID_ISIN","idValue":"US4592001014"}]`, string(recorded[0].Body))
	assert.Equal(t, "application/json", recorded[0].Header.Get("Content-Type"))
	assert.Empty(t, recorded[0].Header.Get(core.APIKeyHeader))
}

func TestClient_Map_Warning(t *testing.T) {
	srv := figitest.New(t)
	client := newTestClient(t, srv, nil)

	data, err := client.Map(context.Background(), mustMapping(t, core.IDTypeTicker, "NOPE"))
	require.NoError(t, err)

	assert.False(t, data.Found())
	assert.Equal(t, "No identifier found.", data.Warning)
}

func TestClient_Map_ItemError(t *testing.T) {
	srv := figitest.New(t)
	srv.Respond(figitest.Mapping, http.StatusOK, `[{"error":"Invalid idValue format."}]`, nil)
	client := newTestClient(t, srv, nil)

	data, err := client.Map(context.Background(), mustMapping(t, core.IDTypeISIN, "bad"))

	assert.Nil(t, data)
	require.True(t, core.IsItemError(err))
	e, _ := core.AsError(err)
	assert.Equal(t, "Invalid idValue format.", e.Message)
	assert.Equal(t, 0, e.Index)
	assert.Equal(t, http.StatusOK, e.StatusCode)
}

func TestClient_MapBatch_Mixed(t *testing.T) {
	srv := figitest.New(t)
	srv.Respond(figitest.Mapping, http.StatusOK,
		`[{"data":[{"figi":"BBG000BLNNH6"}]},{"error":"Invalid idValue format."},{"warning":"No identifier found."}]`, nil)
	client := newTestClient(t, srv, nil)

	batch, err := client.MapBatch(context.Background(), []*request.MappingRequest{
		mustMapping(t, core.IDTypeISIN, "US4592001014"),
		mustMapping(t, core.IDTypeISIN, "bad"),
		mustMapping(t, core.IDTypeTicker, "NOPE"),
	})
	require.NoError(t, err)
	require.Equal(t, 3, batch.Len())

	assert.True(t, batch.At(0).OK())
	assert.Equal(t, "BBG000BLNNH6", batch.At(0).Value.Data[0].FIGI)
	assert.True(t, core.IsItemError(batch.At(1).Err))
	assert.True(t, batch.At(2).OK())
	assert.False(t, batch.At(2).Value.Found())
	assert.Len(t, batch.Errors(), 1)
}

func TestClient_MapBatch_SizeLimits(t *testing.T) {
	srv := figitest.New(t)
	six := make([]*request.MappingRequest, 6)
	for i := range six {
		six[i] = mustMapping(t, core.IDTypeTicker, "AAPL")
	}

	t.Run("empty", func(t *testing.T) {
		client := newTestClient(t, srv, nil)
		_, err := client.MapBatch(context.Background(), nil)
		assert.True(t, core.IsErrorCode(err, core.ErrCodeBatchSize))
	})

	t.Run("over_five_without_key", func(t *testing.T) {
		client := newTestClient(t, srv, nil)
		_, err := client.MapBatch(context.Background(), six)
		assert.True(t, core.IsErrorCode(err, core.ErrCodeBatchSize))
		assert.Contains(t, err.Error(), "without an API key")
		assert.Zero(t, srv.Count(figitest.Mapping))
	})

	t.Run("over_five_with_key", func(t *testing.T) {
		client := newTestClient(t, srv, testConfig(t, srv).WithAPIKey("secret"))
		batch, err := client.MapBatch(context.Background(), six)
		require.NoError(t, err)
		assert.Equal(t, 6, batch.Len())

		recorded := srv.Requests(figitest.Mapping)
		require.Len(t, recorded, 1)
		assert.Equal(t, "secret", recorded[0].Header.Get(core.APIKeyHeader))
	})
}

func TestClient_MapBatch_InvalidJob(t *testing.T) {
	srv := figitest.New(t)
	client := newTestClient(t, srv, nil)

	invalid := &request.MappingRequest{IDType: core.IDTypeTicker}
	_, err := client.MapBatch(context.Background(), []*request.MappingRequest{
		mustMapping(t, core.IDTypeTicker, "AAPL"),
		invalid,
	})

	require.True(t, core.IsValidationError(err))
	assert.Contains(t, err.Error(), "job 1")
	e, _ := core.AsError(err)
	assert.Equal(t, 1, e.Index)
	assert.Zero(t, srv.Count(figitest.Mapping))
}

func TestClient_MapBatch_ResultCountMismatch(t *testing.T) {
	srv := figitest.New(t)
	srv.Respond(figitest.Mapping, http.StatusOK, `[{"data":[]}]`, nil)
	client := newTestClient(t, srv, nil)

	_, err := client.MapBatch(context.Background(), []*request.MappingRequest{
		mustMapping(t, core.IDTypeTicker, "AAPL"),
		mustMapping(t, core.IDTypeTicker, "IBM"),
	})

	assert.True(t, core.IsErrorCode(err, core.ErrCodeUnexpectedResultCount))
}

func TestClient_Search(t *testing.T) {
	srv := figitest.New(t)
	client := newTestClient(t, srv, nil)

	req, err := request.NewSearchBuilder().Query("apple").ExchCode("US").Build()
	require.NoError(t, err)

	data, err := client.Search(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, data.Data, 1)
	assert.Equal(t, "APPLE INC", data.Data[0].Name)
	assert.Empty(t, data.Next)

	recorded := srv.Requests(figitest.Search)
	require.Len(t, recorded, 1)
	assert.JSONEq(t, `{"query":"apple","exchCode":"US"}`, string(recorded[0].Body))
}

func TestClient_Search_ValidationBeforeSend(t *testing.T) {
	srv := figitest.New(t)
	client := newTestClient(t, srv, nil)

	_, err := client.Search(context.Background(), &request.SearchRequest{Query: "  "})

	assert.True(t, core.IsErrorCode(err, core.ErrCodeMissingField))
	assert.Zero(t, srv.Count(figitest.Search))
}

func TestClient_SearchAll(t *testing.T) {
	srv := figitest.New(t)
	srv.PageSize = 1
	client := newTestClient(t, srv, nil)

	var figis []string
	for rec, err := range client.SearchAll(context.Background(), &request.SearchRequest{Query: "inc"}) {
		require.NoError(t, err)
		figis = append(figis, rec.FIGI)
	}

	assert.Len(t, figis, 1)

	figis = nil
	for rec, err := range client.SearchAll(context.Background(), &request.SearchRequest{Query: "c"}) {
		require.NoError(t, err)
		figis = append(figis, rec.FIGI)
	}
	assert.ElementsMatch(t, []string{"BBG000B9XRY4", "BBG000BLNNH6"}, figis)

	recorded := srv.Requests(figitest.Search)
	require.Len(t, recorded, 3)
	assert.JSONEq(t, `{"query":"c","start":"1"}`, string(recorded[2].Body))
}

func TestClient_SearchAll_StopsOnError(t *testing.T) {
	srv := figitest.New(t)
	srv.Respond(figitest.Search, http.StatusInternalServerError, `{"error":"boom"}`, nil)
	client := newTestClient(t, srv, nil)

	var errs []error
	for _, err := range client.SearchAll(context.Background(), &request.SearchRequest{Query: "ibm"}) {
		errs = append(errs, err)
	}

	require.Len(t, errs, 1)
	assert.True(t, core.IsErrorCode(errs[0], core.ErrCodeServerError))
}

func TestClient_Filter(t *testing.T) {
	srv := figitest.New(t)
	client := newTestClient(t, srv, nil)

	req, err := request.NewFilterBuilder().Query("machines").SecurityType2("Common Stock").Build()
	require.NoError(t, err)

	data, err := client.Filter(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, data.Total)
	require.Len(t, data.Data, 1)
	assert.Equal(t, "IBM", data.Data[0].Ticker)
}

func TestClient_FilterAll(t *testing.T) {
	srv := figitest.New(t)
	srv.PageSize = 1
	client := newTestClient(t, srv, nil)

	count := 0
	for _, err := range client.FilterAll(context.Background(), &request.FilterRequest{Query: "c"}) {
		require.NoError(t, err)
		count++
	}

	assert.Equal(t, 2, count)
	assert.Equal(t, 2, srv.Count(figitest.Filter))
}

func TestClient_Filter_Empty(t *testing.T) {
	srv := figitest.New(t)
	client := newTestClient(t, srv, nil)

	_, err := client.Filter(context.Background(), &request.FilterRequest{})

	assert.True(t, core.IsErrorCode(err, core.ErrCodeInvalidRequest))
	assert.Zero(t, srv.Count(figitest.Filter))
}

func TestClient_MappingValues(t *testing.T) {
	srv := figitest.New(t)
	client := newTestClient(t, srv, nil)

	values, err := client.MappingValues(context.Background(), core.ValueKeyIDType)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID_ISIN", "ID_CUSIP", "TICKER"}, values)

	_, err = client.MappingValues(context.Background(), core.ValueKey("bogus"))
	assert.True(t, core.IsErrorCode(err, core.ErrCodeNotFound))

	recorded := srv.Requests(figitest.Values)
	require.Len(t, recorded, 2)
	assert.Equal(t, http.MethodGet, recorded[0].Method)
	assert.Equal(t, "/v3/mapping/values/idType", recorded[0].Path)
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   core.ErrorCode
	}{
		{"bad_request", http.StatusBadRequest, core.ErrCodeBadRequest},
		{"unauthorized", http.StatusUnauthorized, core.ErrCodeAuth},
		{"payload_too_large", http.StatusRequestEntityTooLarge, core.ErrCodePayloadTooLarge},
		{"server_error", http.StatusInternalServerError, core.ErrCodeServerError},
		{"unavailable", http.StatusServiceUnavailable, core.ErrCodeUnavailable},
		{"teapot", http.StatusTeapot, core.ErrCodeUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := figitest.New(t)
			srv.Respond(figitest.Mapping, tt.status, `{"error":"nope"}`, nil)
			client := newTestClient(t, srv, nil)

			_, err := client.Map(context.Background(), mustMapping(t, core.IDTypeTicker, "AAPL"))

			require.True(t, core.IsStatusError(err))
			e, _ := core.AsError(err)
			assert.Equal(t, tt.status, e.StatusCode)
			assert.Equal(t, tt.code, e.Code)
			assert.Equal(t, `{"error":"nope"}`, string(e.Body))
		})
	}
}

func TestClient_DecodeError(t *testing.T) {
	srv := figitest.New(t)
	srv.Respond(figitest.Search, http.StatusOK, `<html>`, nil)
	client := newTestClient(t, srv, nil)

	_, err := client.Search(context.Background(), &request.SearchRequest{Query: "ibm"})

	assert.True(t, core.IsTransportError(err))
	assert.True(t, core.IsErrorCode(err, core.ErrCodeDecode))
}

func TestClient_RateLimited(t *testing.T) {
	srv := figitest.New(t)
	srv.Respond(figitest.Search, http.StatusTooManyRequests, `{"error":"Too Many Requests"}`, map[string]string{
		"Ratelimit-Remaining": "0",
		"Retry-After":         "30",
	})
	client := newTestClient(t, srv, testConfig(t, srv).WithRateLimit(true))

	_, err := client.Search(context.Background(), &request.SearchRequest{Query: "ibm"})

	require.True(t, core.IsRateLimitError(err))
	e, _ := core.AsError(err)
	require.NotNil(t, e.RateLimit)
	assert.Equal(t, 0, e.RateLimit.Remaining)
	assert.Equal(t, 30*time.Second, e.RateLimit.RetryAfter)
	assert.True(t, core.IsRetryable(err))

	assert.Equal(t, int64(1), client.rateLimiter.Metrics().Backoffs)
	assert.False(t, client.rateLimiter.AllowBucket(core.OpFilter.Bucket()))
	assert.True(t, client.rateLimiter.AllowBucket(core.OpMapping.Bucket()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Filter(ctx, &request.FilterRequest{Query: "ibm"})
	assert.True(t, core.IsErrorCode(err, core.ErrCodeTimeout))
	assert.Equal(t, 1, srv.Count(figitest.Search))
	assert.Zero(t, srv.Count(figitest.Filter))
}

func TestClient_RateLimitBuckets(t *testing.T) {
	srv := figitest.New(t)
	client := newTestClient(t, srv, testConfig(t, srv).WithRateLimit(true))

	// Search and filter share five unauthenticated requests per minute.
	for range 5 {
		assert.True(t, client.rateLimiter.AllowBucket(core.OpSearch.Bucket()))
	}
	assert.False(t, client.rateLimiter.AllowBucket(core.OpFilter.Bucket()))
	assert.True(t, client.rateLimiter.AllowBucket(core.OpMapping.Bucket()))
}

func TestClient_CircuitBreaker(t *testing.T) {
	srv := figitest.New(t)
	srv.Respond(figitest.Search, http.StatusServiceUnavailable, ``, nil)
	config := testConfig(t, srv).WithCircuitBreaker(true)
	config.CircuitBreakerFailThreshold = 2
	config.CircuitBreakerSuccessThreshold = 1
	config.CircuitBreakerTimeout = time.Minute
	client := newTestClient(t, srv, config)

	req := &request.SearchRequest{Query: "ibm"}
	for range 2 {
		_, err := client.Search(context.Background(), req)
		assert.True(t, core.IsErrorCode(err, core.ErrCodeUnavailable))
	}

	_, err := client.Search(context.Background(), req)
	assert.True(t, core.IsErrorCode(err, core.ErrCodeCircuitBreaker))
	assert.ErrorIs(t, err, core.ErrCircuitBreakerOpen)
	assert.Equal(t, 2, srv.Count(figitest.Search))
}

func TestClient_Cache(t *testing.T) {
	srv := figitest.New(t)
	client := newTestClient(t, srv, testConfig(t, srv).WithCache(true, time.Minute))

	req := &request.SearchRequest{Query: "ibm"}
	first, err := client.Search(context.Background(), req)
	require.NoError(t, err)
	second, err := client.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, srv.Count(figitest.Search))

	_, err = client.Search(context.Background(), req.WithStart("1"))
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Count(figitest.Search))

	client.ClearCache()
	_, err = client.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, srv.Count(figitest.Search))
}

func TestClient_KeyRing(t *testing.T) {
	srv := figitest.New(t)
	ring := keyring.FromStrings([]string{"key-a", "key-b"}, keyring.RotationRoundRobin)
	client := newTestClient(t, srv, nil, WithKeyRing(ring))

	assert.True(t, client.HasAPIKey())
	for range 2 {
		_, err := client.Search(context.Background(), &request.SearchRequest{Query: "ibm"})
		require.NoError(t, err)
	}

	recorded := srv.Requests(figitest.Search)
	require.Len(t, recorded, 2)
	assert.Equal(t, "key-a", recorded[0].Header.Get(core.APIKeyHeader))
	assert.Equal(t, "key-b", recorded[1].Header.Get(core.APIKeyHeader))
}

func TestClient_KeyRing_RotatesOnRateLimit(t *testing.T) {
	srv := figitest.New(t)
	srv.Handle(figitest.Search, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(core.APIKeyHeader) == "key-a" {
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	ring := keyring.FromStrings([]string{"key-a", "key-b"}, keyring.RotationOnRateLimit)
	client := newTestClient(t, srv, nil, WithKeyRing(ring))

	req := &request.SearchRequest{Query: "ibm"}
	_, err := client.Search(context.Background(), req)
	assert.True(t, core.IsRateLimitError(err))

	data, err := client.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, data.Data)

	recorded := srv.Requests(figitest.Search)
	require.Len(t, recorded, 2)
	assert.Equal(t, "key-b", recorded[1].Header.Get(core.APIKeyHeader))
}

func TestClient_KeyRing_RotatesOnError(t *testing.T) {
	srv := figitest.New(t)
	srv.APIKey = "key-b"
	ring := keyring.FromStrings([]string{"key-a", "key-b"}, keyring.RotationOnError)
	client := newTestClient(t, srv, nil, WithKeyRing(ring))

	req := &request.SearchRequest{Query: "ibm"}
	_, err := client.Search(context.Background(), req)
	assert.True(t, core.IsErrorCode(err, core.ErrCodeAuth))

	_, err = client.Search(context.Background(), req)
	require.NoError(t, err)

	recorded := srv.Requests(figitest.Search)
	require.Len(t, recorded, 2)
	assert.Equal(t, "key-a", recorded[0].Header.Get(core.APIKeyHeader))
	assert.Equal(t, "key-b", recorded[1].Header.Get(core.APIKeyHeader))
}

func TestClient_KeyRing_NoUsableKey(t *testing.T) {
	tests := []struct {
		name       string
		configKey  string
		wantHeader string
	}{
		{"unauthenticated", "", ""},
		{"config_key", "cfg-key", "cfg-key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := figitest.New(t)
			ring := keyring.FromStrings([]string{"key-a"}, keyring.RotationOnError)
			ring.Disable("key-1")
			client := newTestClient(t, srv, testConfig(t, srv).WithAPIKey(tt.configKey), WithKeyRing(ring))

			assert.Equal(t, tt.configKey != "", client.HasAPIKey())
			_, err := client.Search(context.Background(), &request.SearchRequest{Query: "ibm"})
			require.NoError(t, err)

			recorded := srv.Requests(figitest.Search)
			require.Len(t, recorded, 1)
			assert.Equal(t, tt.wantHeader, recorded[0].Header.Get(core.APIKeyHeader))
		})
	}

	srv := figitest.New(t)
	client := newTestClient(t, srv, nil, WithKeyRing(keyring.FromStrings(nil, keyring.RotationRoundRobin)))
	assert.False(t, client.HasAPIKey())
	_, err := client.Search(context.Background(), &request.SearchRequest{Query: "ibm"})
	require.NoError(t, err)
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := figitest.New(t)
	client := newTestClient(t, srv, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Search(ctx, &request.SearchRequest{Query: "ibm"})

	require.True(t, core.IsTransportError(err))
	assert.True(t, core.IsErrorCode(err, core.ErrCodeCanceled))
	assert.False(t, core.IsRetryable(err))
}

func TestClient_Network(t *testing.T) {
	srv := figitest.New(t)
	config := testConfig(t, srv).WithBaseURL("http://127.0.0.1:1/v3/")
	client := newTestClient(t, srv, config)

	_, err := client.Search(context.Background(), &request.SearchRequest{Query: "ibm"})

	require.True(t, core.IsTransportError(err))
	assert.True(t, core.IsErrorCode(err, core.ErrCodeNetwork))
	assert.True(t, strings.HasPrefix(err.Error(), "openfigi: TRANSPORT (NETWORK_ERROR)"))
}

func TestClient_Close(t *testing.T) {
	srv := figitest.New(t)
	client := newTestClient(t, srv, nil)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	_, err := client.Search(context.Background(), &request.SearchRequest{Query: "ibm"})
	assert.True(t, core.IsErrorCode(err, core.ErrCodeClientClosed))
	assert.Zero(t, srv.Count(figitest.Search))
}
