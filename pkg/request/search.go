package request

import (
	"strings"

	"openfigi/pkg/core"
)

// SearchRequest is a free-text search. Start is the cursor returned as
// "next" by the previous page.
type SearchRequest struct {
	Query string `json:"query"`
	Start string `json:"start,omitempty"`
	FilterSet
}

func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return core.NewValidationError(core.ErrCodeMissingField, "query", "query is required")
	}
	return r.FilterSet.Validate()
}

// WithStart returns a copy of r positioned at cursor.
func (r *SearchRequest) WithStart(cursor string) *SearchRequest {
	next := *r
	next.Start = cursor
	return &next
}

// SearchBuilder provides a fluent interface for constructing searches.
type SearchBuilder struct {
	filterSetters[*SearchBuilder]
	req SearchRequest
}

func NewSearchBuilder() *SearchBuilder {
	b := &SearchBuilder{}
	b.filterSetters = newFilterSetters(b, &b.req.FilterSet)
	return b
}

func (b *SearchBuilder) Query(q string) *SearchBuilder {
	b.req.Query = q
	return b
}

func (b *SearchBuilder) Start(cursor string) *SearchBuilder {
	b.req.Start = cursor
	return b
}

// Build validates and returns the request.
func (b *SearchBuilder) Build() (*SearchRequest, error) {
	req := b.req
	req.FilterSet = b.req.FilterSet.Clone()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}
