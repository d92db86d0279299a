// Package circuitbreaker stops sending requests to a service that keeps
// failing and probes it again after a cool-down.
package circuitbreaker

import (
	"sync"
	"sync/atomic"
	"time"
)

type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

type Config struct {
	FailThreshold    int           `json:"fail_threshold"`
	SuccessThreshold int           `json:"success_threshold"`
	Timeout          time.Duration `json:"timeout"`
	// OnStateChange, if set, is called after every transition with the
	// breaker's lock released.
	OnStateChange func(from, to State) `json:"-"`
}

// Breaker counts consecutive failures. After FailThreshold of them it opens
// and rejects calls for Timeout, then lets calls through half-open until
// SuccessThreshold successes close it again or one failure reopens it.
type Breaker struct {
	mu               sync.Mutex
	state            State
	failures         int
	successes        int
	openedAt         time.Time
	failThreshold    int
	successThreshold int
	timeout          time.Duration
	onStateChange    func(from, to State)
	metrics          *Metrics
}

type Metrics struct {
	totalRequests   atomic.Int64
	rejected        atomic.Int64
	successRequests atomic.Int64
	failedRequests  atomic.Int64
	stateChanges    atomic.Int32
}

func New(config Config) *Breaker {
	return &Breaker{
		state:            StateClosed,
		failThreshold:    config.FailThreshold,
		successThreshold: config.SuccessThreshold,
		timeout:          config.Timeout,
		onStateChange:    config.OnStateChange,
		metrics:          &Metrics{},
	}
}

// Allow reports whether a call may proceed. An open breaker whose timeout
// has elapsed moves to half-open and allows the call.
func (b *Breaker) Allow() bool {
	b.metrics.totalRequests.Add(1)

	b.mu.Lock()
	from := b.state
	allowed := true
	if b.state == StateOpen {
		if time.Since(b.openedAt) >= b.timeout {
			b.transitionLocked(StateHalfOpen)
		} else {
			allowed = false
		}
	}
	to := b.state
	b.mu.Unlock()

	if !allowed {
		b.metrics.rejected.Add(1)
	}
	b.notify(from, to)
	return allowed
}

// Record reports the outcome of an allowed call.
func (b *Breaker) Record(success bool) {
	if success {
		b.metrics.successRequests.Add(1)
	} else {
		b.metrics.failedRequests.Add(1)
	}

	b.mu.Lock()
	from := b.state
	if b.state == StateOpen && time.Since(b.openedAt) >= b.timeout {
		b.transitionLocked(StateHalfOpen)
	}

	switch b.state {
	case StateClosed:
		if success {
			b.failures = 0
		} else {
			b.failures++
			if b.failures >= b.failThreshold {
				b.transitionLocked(StateOpen)
			}
		}
	case StateHalfOpen:
		if success {
			b.successes++
			if b.successes >= b.successThreshold {
				b.transitionLocked(StateClosed)
			}
		} else {
			b.transitionLocked(StateOpen)
		}
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

func (b *Breaker) transitionLocked(newState State) {
	if newState == StateOpen {
		b.openedAt = time.Now()
	}
	b.state = newState
	b.failures = 0
	b.successes = 0
	b.metrics.stateChanges.Add(1)
}

func (b *Breaker) notify(from, to State) {
	if from != to && b.onStateChange != nil {
		b.onStateChange(from, to)
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Reset() {
	b.mu.Lock()
	from := b.state
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
	b.mu.Unlock()
	b.notify(from, StateClosed)
}

func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

func (b *Breaker) Successes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.successes
}

func (b *Breaker) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		TotalRequests:    b.metrics.totalRequests.Load(),
		RejectedRequests: b.metrics.rejected.Load(),
		SuccessRequests:  b.metrics.successRequests.Load(),
		FailedRequests:   b.metrics.failedRequests.Load(),
		StateChanges:     b.metrics.stateChanges.Load(),
		CurrentState:     b.State().String(),
	}
}

type MetricsSnapshot struct {
	TotalRequests    int64
	RejectedRequests int64
	SuccessRequests  int64
	FailedRequests   int64
	StateChanges     int32
	CurrentState     string
}
