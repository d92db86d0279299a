package request

import (
	"fmt"

	"github.com/bytedance/sonic"

	"openfigi/pkg/core"
)

// NumberRange is an interval with optional bounds. It serializes as a two
// element array where a missing bound is null: [100, null].
type NumberRange struct {
	From *float64
	To   *float64
}

// Between returns the closed interval [from, to].
func Between(from, to float64) *NumberRange {
	return &NumberRange{From: &from, To: &to}
}

// AtLeast returns the interval [from, ∞).
func AtLeast(from float64) *NumberRange {
	return &NumberRange{From: &from}
}

// AtMost returns the interval (-∞, to].
func AtMost(to float64) *NumberRange {
	return &NumberRange{To: &to}
}

func (r *NumberRange) clone() *NumberRange {
	if r == nil {
		return nil
	}
	return &NumberRange{From: clonePtr(r.From), To: clonePtr(r.To)}
}

func (r *NumberRange) validate(field string) error {
	if r == nil || r.From == nil || r.To == nil {
		return nil
	}
	if *r.From > *r.To {
		return core.NewValidationError(core.ErrCodeInvalidFilter, field,
			field+": start value cannot be greater than end value")
	}
	return nil
}

func (r NumberRange) MarshalJSON() ([]byte, error) {
	return sonic.Marshal([2]*float64{r.From, r.To})
}

func (r *NumberRange) UnmarshalJSON(data []byte) error {
	var bounds []*float64
	if err := sonic.Unmarshal(data, &bounds); err != nil {
		return err
	}
	if len(bounds) != 2 {
		return fmt.Errorf("number range: expected 2 elements, got %d", len(bounds))
	}
	r.From, r.To = bounds[0], bounds[1]
	return nil
}

// DateRange is an interval of calendar dates with optional bounds.
// It serializes as ["2024-01-01", null].
type DateRange struct {
	From *core.Date
	To   *core.Date
}

// MaxDateSpanDays is the widest date interval the service accepts.
const MaxDateSpanDays = 365

// DatesBetween returns the closed interval [from, to].
func DatesBetween(from, to core.Date) *DateRange {
	return &DateRange{From: &from, To: &to}
}

// Since returns the interval starting at from with no end.
func Since(from core.Date) *DateRange {
	return &DateRange{From: &from}
}

// Until returns the interval ending at to with no start.
func Until(to core.Date) *DateRange {
	return &DateRange{To: &to}
}

func (r *DateRange) clone() *DateRange {
	if r == nil {
		return nil
	}
	return &DateRange{From: clonePtr(r.From), To: clonePtr(r.To)}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// validate checks ordering and span. A one-sided interval passes both checks.
func (r *DateRange) validate(field string) error {
	if r == nil || r.From == nil || r.To == nil {
		return nil
	}
	if r.From.After(*r.To) {
		return core.NewValidationError(core.ErrCodeInvalidFilter, field,
			field+": start date cannot be after end date")
	}
	if r.To.After(r.From.AddDays(MaxDateSpanDays)) {
		return core.NewValidationError(core.ErrCodeInvalidFilter, field,
			field+": date range cannot exceed 1 year")
	}
	return nil
}

func (r DateRange) MarshalJSON() ([]byte, error) {
	return sonic.Marshal([2]*core.Date{r.From, r.To})
}

func (r *DateRange) UnmarshalJSON(data []byte) error {
	var bounds []*core.Date
	if err := sonic.Unmarshal(data, &bounds); err != nil {
		return err
	}
	if len(bounds) != 2 {
		return fmt.Errorf("date range: expected 2 elements, got %d", len(bounds))
	}
	r.From, r.To = bounds[0], bounds[1]
	return nil
}
