package openfigi

import (
	"context"
	"iter"

	"openfigi/pkg/core"
	"openfigi/pkg/request"
	"openfigi/pkg/response"
)

// Search returns one page of free-text search results. Pass Next back via
// SearchRequest.WithStart to fetch the following page.
func (c *Client) Search(ctx context.Context, req *request.SearchRequest) (*core.SearchData, error) {
	if req == nil {
		return nil, core.NewValidationError(core.ErrCodeMissingField, "query", "query is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, core.OpSearch, "", req)
	if err != nil {
		return nil, err
	}

	data, err := response.ParseSingle[core.SearchData](resp)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// SearchAll iterates over every result of a search, following next cursors.
// Iteration stops after the first error.
func (c *Client) SearchAll(ctx context.Context, req *request.SearchRequest) iter.Seq2[core.FigiRecord, error] {
	return func(yield func(core.FigiRecord, error) bool) {
		page := req
		for {
			data, err := c.Search(ctx, page)
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
