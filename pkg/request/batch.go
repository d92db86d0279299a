package request

import (
	"fmt"

	"openfigi/pkg/core"
)

// Mapping batch limits enforced before sending.
const (
	MaxBatchSize           = 100
	MaxBatchSizeWithoutKey = 5
)

// ValidateBatchSize applies the client-side batch policy: at least one job,
// at most 5 without an API key and at most 100 with one.
func ValidateBatchSize(n int, hasAPIKey bool) error {
	switch {
	case n == 0:
		return core.NewValidationError(core.ErrCodeBatchSize, "", "no requests to send")
	case n > MaxBatchSize:
		return core.NewValidationError(core.ErrCodeBatchSize, "",
			fmt.Sprintf("bulk mapping request cannot exceed %d requests, got %d", MaxBatchSize, n))
	case !hasAPIKey && n > MaxBatchSizeWithoutKey:
		return core.NewValidationError(core.ErrCodeBatchSize, "",
			fmt.Sprintf("bulk mapping request cannot exceed %d requests without an API key, got %d", MaxBatchSizeWithoutKey, n))
	}
	return nil
}

// BatchBuilder collects mapping jobs. The first failing job stops the
// builder and is reported by Build with its position.
type BatchBuilder struct {
	jobs []*MappingRequest
	err  error
}

func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{}
}

// Add appends an already built job.
func (b *BatchBuilder) Add(req *MappingRequest) *BatchBuilder {
	if b.err != nil {
		return b
	}
	if req == nil {
		b.err = b.jobError(core.NewValidationError(core.ErrCodeInvalidRequest, "", "mapping request is nil"))
		return b
	}
	if err := req.Validate(); err != nil {
		b.err = b.jobError(err)
		return b
	}
	b.jobs = append(b.jobs, req)
	return b
}

// Job configures a new mapping builder with fn, builds it and appends it.
func (b *BatchBuilder) Job(fn func(*MappingBuilder)) *BatchBuilder {
	if b.err != nil {
		return b
	}
	mb := NewMappingBuilder()
	fn(mb)
	req, err := mb.Build()
	if err != nil {
		b.err = b.jobError(err)
		return b
	}
	b.jobs = append(b.jobs, req)
	return b
}

func (b *BatchBuilder) jobError(err error) error {
	if e, ok := core.AsError(err); ok {
		e.WithIndex(len(b.jobs))
	}
	return fmt.Errorf("job %d: %w", len(b.jobs), err)
}

// Len returns the number of jobs added so far.
func (b *BatchBuilder) Len() int {
	return len(b.jobs)
}

// Build returns the jobs. Only the key-independent size limits are checked
// here; the client applies the full policy when sending.
func (b *BatchBuilder) Build() ([]*MappingRequest, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := ValidateBatchSize(len(b.jobs), true); err != nil {
		return nil, err
	}
	return b.jobs, nil
}
