package openfigi

import (
	"context"
	"iter"

	"openfigi/pkg/core"
	"openfigi/pkg/request"
	"openfigi/pkg/response"
)

// Filter returns one page of instruments matching the filter criteria, with
// the total match count when the service reports it.
func (c *Client) Filter(ctx context.Context, req *request.FilterRequest) (*core.FilterData, error) {
	if req == nil {
		return nil, core.NewValidationError(core.ErrCodeInvalidRequest, "", "at least one field must be set in FilterRequest")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, core.OpFilter, "", req)
	if err != nil {
		return nil, err
	}

	data, err := response.ParseSingle[core.FilterData](resp)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// FilterAll iterates over every matching instrument, following next cursors.
// Iteration stops after the first error.
func (c *Client) FilterAll(ctx context.Context, req *request.FilterRequest) iter.Seq2[core.FigiRecord, error] {
	return func(yield func(core.FigiRecord, error) bool) {
		page := req
		for {
			data, err := c.Filter(ctx, page)
			if err != nil {
				yield(core.FigiRecord{}, err)
				return
			}
			for _, rec := range data.Data {
				if !yield(rec, nil) {
					return
				}
			}
			if data.Next == "" {
				return
			}
			page = page.WithStart(data.Next)
		}
	}
}
