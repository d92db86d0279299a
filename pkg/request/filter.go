package request

import "openfigi/pkg/core"

// FilterRequest lists instruments matching the criteria, optionally narrowed
// by a query. Results are sorted by FIGI.
type FilterRequest struct {
	Query string `json:"query,omitempty"`
	Start string `json:"start,omitempty"`
	FilterSet
}

// Validate checks the filter rules and then that the request selects
// something: a query or at least one criterion.
func (r *FilterRequest) Validate() error {
	if err := r.FilterSet.Validate(); err != nil {
		return err
	}
	if r.Query == "" && r.FilterSet.IsEmpty() {
		return core.NewValidationError(core.ErrCodeInvalidRequest, "",
			"at least one field must be set in FilterRequest")
	}
	return nil
}

// WithStart returns a copy of r positioned at cursor.
func (r *FilterRequest) WithStart(cursor string) *FilterRequest {
	next := *r
	next.Start = cursor
	return &next
}

// FilterBuilder provides a fluent interface for constructing filter requests.
type FilterBuilder struct {
	filterSetters[*FilterBuilder]
	req FilterRequest
}

func NewFilterBuilder() *FilterBuilder {
	b := &FilterBuilder{}
	b.filterSetters = newFilterSetters(b, &b.req.FilterSet)
	return b
}

func (b *FilterBuilder) Query(q string) *FilterBuilder {
	b.req.Query = q
	return b
}

func (b *FilterBuilder) Start(cursor string) *FilterBuilder {
	b.req.Start = cursor
	return b
}

// Build validates and returns the request.
func (b *FilterBuilder) Build() (*FilterRequest, error) {
	req := b.req
	req.FilterSet = b.req.FilterSet.Clone()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}
