// Package response turns raw OpenFIGI responses into typed results and
// structured errors.
package response

import "iter"

// Result is the outcome of one item of a batch: a value or an item error.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// OK reports whether the item succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// BatchResult holds one Result per element of a batch response, in order.
type BatchResult[T any] struct {
	items []Result[T]
}

// NewBatchResult wraps items. Indexes are reassigned to match positions.
func NewBatchResult[T any](items []Result[T]) BatchResult[T] {
	for i := range items {
		items[i].Index = i
	}
	return BatchResult[T]{items: items}
}

func (b BatchResult[T]) Len() int {
	return len(b.items)
}

// At returns the i-th result. It panics if i is out of range.
func (b BatchResult[T]) At(i int) Result[T] {
	return b.items[i]
}

// All iterates results in submission order.
func (b BatchResult[T]) All() iter.Seq2[int, Result[T]] {
	return func(yield func(int, Result[T]) bool) {
		for i, r := range b.items {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Values returns the successful values, skipping failed items.
func (b BatchResult[T]) Values() []T {
	out := make([]T, 0, len(b.items))
	for _, r := range b.items {
		if r.OK() {
			out = append(out, r.Value)
		}
	}
	return out
}

// Errors returns the item errors in order.
func (b BatchResult[T]) Errors() []error {
	var out []error
	for _, r := range b.items {
		if !r.OK() {
			out = append(out, r.Err)
		}
	}
	return out
}
