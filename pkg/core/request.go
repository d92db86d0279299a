package core

import "time"

// Request is a serialized call handed to a Transport.
type Request struct {
	Operation Operation         `json:"operation"`
	Method    string            `json:"method"`
	Path      string            `json:"path"`
	Body      []byte            `json:"body,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	CacheKey  string            `json:"cache_key,omitempty"`
	CacheTTL  time.Duration     `json:"cache_ttl,omitempty"`
}

// NewRequest creates a request for op with its method and path filled in.
func NewRequest(op Operation) *Request {
	return &Request{
		Operation: op,
		Method:    op.Method(),
		Path:      op.Path(),
		Headers:   make(map[string]string),
	}
}

func (r *Request) SetPath(path string) *Request {
	r.Path = path
	return r
}

// SetBody sets a JSON body and its content type.
func (r *Request) SetBody(body []byte) *Request {
	r.Body = body
	r.SetHeader("Content-Type", "application/json")
	return r
}

func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

func (r *Request) SetCache(key string, ttl time.Duration) *Request {
	r.CacheKey = key
	r.CacheTTL = ttl
	return r
}
