// Package ratelimit throttles calls client-side so the published OpenFIGI
// limits are not exceeded, one token bucket per endpoint group.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter provides per-bucket rate limiting with server-driven backoff.
type RateLimiter struct {
	buckets  sync.Map
	requests int
	period   time.Duration
	metrics  *Metrics
}

type bucket struct {
	limiter      *rate.Limiter
	blockedUntil atomic.Int64
}

// Metrics tracks statistics about rate limiter usage.
type Metrics struct {
	totalRequests   atomic.Int64
	allowedRequests atomic.Int64
	deniedRequests  atomic.Int64
	backoffs        atomic.Int64
	bucketCount     atomic.Int32
}

// New creates a RateLimiter whose buckets default to requests per period.
func New(requests int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: requests,
		period:   period,
		metrics:  &Metrics{},
	}
}

func newBucket(requests int, period time.Duration) *bucket {
	rps := float64(requests) / period.Seconds()
	return &bucket{limiter: rate.NewLimiter(rate.Limit(rps), requests)}
}

// WaitBucket blocks until the named bucket allows a request, any backoff
// has elapsed, or the context is done.
func (r *RateLimiter) WaitBucket(ctx context.Context, name string) error {
	r.metrics.totalRequests.Add(1)
	b := r.getBucket(name)

	if until := time.Unix(0, b.blockedUntil.Load()); time.Now().Before(until) {
		timer := time.NewTimer(time.Until(until))
		select {
		case <-ctx.Done():
			timer.Stop()
			r.metrics.deniedRequests.Add(1)
			return ctx.Err()
		case <-timer.C:
		}
	}

	if err := b.limiter.Wait(ctx); err != nil {
		r.metrics.deniedRequests.Add(1)
		return err
	}
	r.metrics.allowedRequests.Add(1)
	return nil
}

// AllowBucket returns true if the named bucket permits a request immediately.
func (r *RateLimiter) AllowBucket(name string) bool {
	r.metrics.totalRequests.Add(1)
	b := r.getBucket(name)
	allowed := time.Now().UnixNano() >= b.blockedUntil.Load() && b.limiter.Allow()
	if allowed {
		r.metrics.allowedRequests.Add(1)
	} else {
		r.metrics.deniedRequests.Add(1)
	}
	return allowed
}

// Backoff holds the named bucket closed for d. Used when the server reports
// when its window resets.
func (r *RateLimiter) Backoff(name string, d time.Duration) {
	if d <= 0 {
		return
	}
	r.metrics.backoffs.Add(1)
	b := r.getBucket(name)
	until := time.Now().Add(d).UnixNano()
	for {
		cur := b.blockedUntil.Load()
		if cur >= until || b.blockedUntil.CompareAndSwap(cur, until) {
			return
		}
	}
}

func (r *RateLimiter) getBucket(name string) *bucket {
	if v, ok := r.buckets.Load(name); ok {
		return v.(*bucket)
	}

	actual, loaded := r.buckets.LoadOrStore(name, newBucket(r.requests, r.period))
	if !loaded {
		r.metrics.bucketCount.Add(1)
	}
	return actual.(*bucket)
}

// SetBucketLimit replaces the limit of a bucket, burst included.
// The bucket is created if it does not exist.
func (r *RateLimiter) SetBucketLimit(name string, requests int, period time.Duration) {
	b := r.getBucket(name)
	b.limiter.SetLimit(rate.Limit(float64(requests) / period.Seconds()))
	b.limiter.SetBurst(requests)
}

// Metrics returns a snapshot of the current rate limiter statistics.
func (r *RateLimiter) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		TotalRequests:   r.metrics.totalRequests.Load(),
		AllowedRequests: r.metrics.allowedRequests.Load(),
		DeniedRequests:  r.metrics.deniedRequests.Load(),
		Backoffs:        r.metrics.backoffs.Load(),
		BucketCount:     r.metrics.bucketCount.Load(),
	}
}

// MetricsSnapshot is a point-in-time capture of rate limiter statistics.
type MetricsSnapshot struct {
	// TotalRequests is the total number of rate limit checks performed.
	TotalRequests int64
	// AllowedRequests is the number of requests that were allowed.
	AllowedRequests int64
	// DeniedRequests is the number of requests that were denied.
	DeniedRequests int64
	// Backoffs is the number of server-driven backoffs applied.
	Backoffs int64
	// BucketCount is the number of rate limit buckets in use.
	BucketCount int32
}
