package openfigi

import (
	"context"
	"fmt"

	"openfigi/pkg/core"
	"openfigi/pkg/request"
	"openfigi/pkg/response"
)

// Map sends one mapping job. A job the service could not process is returned
// as an ITEM_ERROR; an identifier with no match is a success with Warning set
// and no records.
func (c *Client) Map(ctx context.Context, req *request.MappingRequest) (*core.MappingData, error) {
	batch, err := c.MapBatch(ctx, []*request.MappingRequest{req})
	if err != nil {
		return nil, err
	}
	data, err := response.ExpectOne(batch)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// MapBatch sends up to 100 mapping jobs (5 without an API key) in one
// request. The result holds one entry per job, in submission order; failed
// jobs carry their error instead of a value.
func (c *Client) MapBatch(ctx context.Context, reqs []*request.MappingRequest) (response.BatchResult[core.MappingData], error) {
	var empty response.BatchResult[core.MappingData]

	if err := request.ValidateBatchSize(len(reqs), c.HasAPIKey()); err != nil {
		return empty, err
	}
	if err := validateJobs(reqs, 0); err != nil {
		return empty, err
	}

	resp, err := c.do(ctx, core.OpMapping, "", reqs)
	if err != nil {
		return empty, err
	}

	batch, err := response.ParseBatch[core.MappingData](resp)
	if err != nil {
		return empty, err
	}
	if err := response.ExpectLen(batch, len(reqs)); err != nil {
		if e, ok := core.AsError(err); ok {
			e.Endpoint = resp.URL
			e.StatusCode = resp.StatusCode
		}
		return empty, err
	}

	c.logger.Debug().
		Int("jobs", len(reqs)).
		Int("failed", len(batch.Errors())).
		Msg("mapping completed")

	return batch, nil
}

// BatchLimit returns the largest number of jobs MapBatch accepts.
func (c *Client) BatchLimit() int {
	if c.HasAPIKey() {
		return request.MaxBatchSize
	}
	return request.MaxBatchSizeWithoutKey
}

// validateJobs checks every job, reporting positions shifted by offset.
func validateJobs(reqs []*request.MappingRequest, offset int) error {
	for i, req := range reqs {
		idx := offset + i
		if req == nil {
			e := core.NewValidationError(core.ErrCodeInvalidRequest, "", "mapping request is nil")
			return fmt.Errorf("job %d: %w", idx, e.WithIndex(idx))
		}
		if err := req.Validate(); err != nil {
			if e, ok := core.AsError(err); ok {
				e.WithIndex(idx)
			}
			return fmt.Errorf("job %d: %w", idx, err)
		}
	}
	return nil
}
