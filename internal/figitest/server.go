// Package figitest runs an in-process fake of the OpenFIGI v3 API for tests.
package figitest

import (
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gorilla/mux"

	"openfigi/pkg/core"
)

// Endpoint names accepted by Handle and Requests.
const (
	Mapping = "mapping"
	Search  = "search"
	Filter  = "filter"
	Values  = "values"
)

// Recorded is a request received by the fake.
type Recorded struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Server serves /v3/mapping, /v3/search, /v3/filter and
// /v3/mapping/values/{key}. By default it answers from Instruments; Handle
// overrides an endpoint.
type Server struct {
	srv *httptest.Server

	mu        sync.Mutex
	overrides map[string]http.HandlerFunc
	requests  map[string][]Recorded

	// Instruments keyed by identifier value for mapping, and searched by
	// name or ticker for search and filter.
	Instruments map[string][]core.FigiRecord
	// Values answers the mapping values endpoint.
	Values map[string][]string
	// PageSize bounds search and filter pages.
	PageSize int
	// APIKey, when set, is required on every request.
	APIKey string
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	s := &Server{
		overrides: make(map[string]http.HandlerFunc),
		requests:  make(map[string][]Recorded),
		Instruments: map[string][]core.FigiRecord{
			"US4592001014": {{
				FIGI: "BBG000BLNNH6", Name: "INTL BUSINESS MACHINES CORP", Ticker: "IBM",
				ExchCode: "US", CompositeFIGI: "BBG000BLNNH6", ShareClassFIGI: "BBG001S5S399",
				SecurityType: "Common Stock", MarketSector: "Equity", SecurityType2: "Common Stock",
			}},
			"AAPL": {{
				FIGI: "BBG000B9XRY4", Name: "APPLE INC", Ticker: "AAPL", ExchCode: "US",
				CompositeFIGI: "BBG000B9XRY4", SecurityType: "Common Stock", MarketSector: "Equity",
			}},
		},
		Values: map[string][]string{
			"idType": {"ID_ISIN", "ID_CUSIP", "TICKER"},
		},
		PageSize: 100,
	}

	r := mux.NewRouter()
	r.HandleFunc("/v3/mapping", s.serve(Mapping, s.mapping)).Methods(http.MethodPost)
	r.HandleFunc("/v3/search", s.serve(Search, s.search)).Methods(http.MethodPost)
	r.HandleFunc("/v3/filter", s.serve(Filter, s.filter)).Methods(http.MethodPost)
	r.HandleFunc("/v3/mapping/values/{key}", s.serve(Values, s.values)).Methods(http.MethodGet)

	s.srv = httptest.NewServer(r)
	t.Cleanup(s.srv.Close)
	return s
}

// BaseURL returns the API root, ending in /v3/.
func (s *Server) BaseURL() string {
	return s.srv.URL + "/v3/"
}

// Handle replaces the handler of an endpoint.
func (s *Server) Handle(endpoint string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[endpoint] = h
}

// Respond makes an endpoint always answer with status, body and headers.
func (s *Server) Respond(endpoint string, status int, body string, headers map[string]string) {
	s.Handle(endpoint, func(w http.ResponseWriter, _ *http.Request) {
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// Requests returns the requests an endpoint received, in order.
func (s *Server) Requests(endpoint string) []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests[endpoint]...)
}

// Count returns how many requests an endpoint received.
func (s *Server) Count(endpoint string) int {
	return len(s.Requests(endpoint))
}

func (s *Server) serve(endpoint string, fallback http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		s.mu.Lock()
		s.requests[endpoint] = append(s.requests[endpoint], Recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		h, ok := s.overrides[endpoint]
		s.mu.Unlock()

		if s.APIKey != "" && r.Header.Get(core.APIKeyHeader) != s.APIKey {
			http.Error(w, "Invalid API key.", http.StatusUnauthorized)
			return
		}

		r.Body = io.NopCloser(strings.NewReader(string(body)))
		if ok {
			h(w, r)
			return
		}
		fallback(w, r)
	}
}

type mappingJob struct {
	IDType  string `json:"idType"`
	IDValue any    `json:"idValue"`
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(body, v)
}

func (s *Server) mapping(w http.ResponseWriter, r *http.Request) {
	var jobs []mappingJob
	if err := decodeBody(r, &jobs); err != nil {
		http.Error(w, "Request body must be a JSON array.", http.StatusBadRequest)
		return
	}
	if len(jobs) > 100 || (s.APIKey == "" && r.Header.Get(core.APIKeyHeader) == "" && len(jobs) > 5) {
		http.Error(w, "Too many mapping jobs.", http.StatusRequestEntityTooLarge)
		return
	}

	out := make([]map[string]any, len(jobs))
	for i, job := range jobs {
		value := fmt.Sprint(job.IDValue)
		switch {
		case job.IDType == "":
			out[i] = map[string]any{"error": "Missing idType."}
		case len(s.Instruments[value]) > 0:
			out[i] = map[string]any{"data": s.Instruments[value]}
		default:
			out[i] = map[string]any{"warning": "No identifier found."}
		}
	}
	writeJSON(w, out)
}

type pageRequest struct {
	Query string `json:"query"`
	Start string `json:"start"`
}

func (s *Server) page(r *http.Request) ([]core.FigiRecord, string, int, bool) {
	var req pageRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, "", 0, false
	}

	var matches []core.FigiRecord
	seen := make(map[string]bool)
	query := strings.ToLower(req.Query)
	for _, key := range slices.Sorted(maps.Keys(s.Instruments)) {
		for _, rec := range s.Instruments[key] {
			if seen[rec.FIGI] {
				continue
			}
			if query == "" || strings.Contains(strings.ToLower(rec.Name), query) ||
				strings.Contains(strings.ToLower(rec.Ticker), query) {
				seen[rec.FIGI] = true
				matches = append(matches, rec)
			}
		}
	}

	offset, _ := strconv.Atoi(req.Start)
	offset = min(max(offset, 0), len(matches))
	end := min(offset+s.PageSize, len(matches))
	next := ""
	if end < len(matches) {
		next = strconv.Itoa(end)
	}
	return matches[offset:end], next, len(matches), true
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	data, next, _, ok := s.page(r)
	if !ok {
		http.Error(w, "Invalid JSON.", http.StatusBadRequest)
		return
	}
	writeJSON(w, core.SearchData{Data: nonNil(data), Next: next})
}

func (s *Server) filter(w http.ResponseWriter, r *http.Request) {
	data, next, total, ok := s.page(r)
	if !ok {
		http.Error(w, "Invalid JSON.", http.StatusBadRequest)
		return
	}
	writeJSON(w, core.FilterData{Data: nonNil(data), Next: next, Total: total})
}

func (s *Server) values(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	values, ok := s.Values[key]
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	writeJSON(w, core.MappingValues{Values: values})
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func nonNil(records []core.FigiRecord) []core.FigiRecord {
	if records == nil {
		return []core.FigiRecord{}
	}
	return records
}
