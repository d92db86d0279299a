package openfigi

import (
	"context"
	"sync"

	"openfigi/pkg/core"
	"openfigi/pkg/request"
	"openfigi/pkg/response"
)

// DefaultConcurrency is the number of batches MapAll sends at once when the
// caller passes a value below one.
const DefaultConcurrency = 2

// MapAll maps any number of jobs. They are split into batches of BatchLimit
// and up to concurrency batches are in flight at once, still subject to the
// client rate limiter. Results keep submission order. A batch that fails as a
// whole, for example with a 429, hands its error to every job it carried, so
// the returned error is only set when a job fails validation.
func (c *Client) MapAll(ctx context.Context, reqs []*request.MappingRequest, concurrency int) (response.BatchResult[core.MappingData], error) {
	var empty response.BatchResult[core.MappingData]

	if len(reqs) == 0 {
		return empty, request.ValidateBatchSize(0, c.HasAPIKey())
	}
	if err := validateJobs(reqs, 0); err != nil {
		return empty, err
	}
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	size := c.BatchLimit()
	items := make([]response.Result[core.MappingData], len(reqs))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

dispatch:
	for start := 0; start < len(reqs); start += size {
		end := min(start+size, len(reqs))

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			err := core.NewTransportError(c.endpoint(core.OpMapping.Path()), ctx.Err())
			for i := start; i < len(reqs); i++ {
				items[i] = response.Result[core.MappingData]{Err: err}
			}
			break dispatch
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			defer func() { <-sem }()

			batch, err := c.MapBatch(ctx, reqs[start:end])
			for i := start; i < end; i++ {
				if err != nil {
					items[i] = response.Result[core.MappingData]{Err: err}
					continue
				}
				r := batch.At(i - start)
				if e, ok := core.AsError(r.Err); ok {
					e.Index = i
				}
				items[i] = r
			}
		}(start, end)
	}

	wg.Wait()

	c.logger.Debug().
		Int("jobs", len(reqs)).
		Int("batches", (len(reqs)+size-1)/size).
		Msg("bulk mapping completed")

	return response.NewBatchResult(items), nil
}
