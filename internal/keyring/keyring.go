// Package keyring rotates between several OpenFIGI API keys.
package keyring

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"openfigi/pkg/core"
)

type KeyRing struct {
	mu       sync.RWMutex
	keys     []*APIKey
	current  int
	strategy RotationStrategy
	logger   zerolog.Logger
}

type APIKey struct {
	ID           string
	Key          string
	Disabled     bool
	LastUsed     time.Time
	ErrorCount   int
	LimitedUntil time.Time
}

type RotationStrategy int

const (
	// RotationRoundRobin moves to the next key on every request.
	RotationRoundRobin RotationStrategy = iota
	// RotationOnError moves to the next key after any failed request.
	RotationOnError
	// RotationOnRateLimit moves to the next key only after a 429.
	RotationOnRateLimit
)

func (s RotationStrategy) String() string {
	switch s {
	case RotationRoundRobin:
		return "round_robin"
	case RotationOnError:
		return "on_error"
	case RotationOnRateLimit:
		return "on_rate_limit"
	default:
		return "unknown"
	}
}

// ParseStrategy is the inverse of RotationStrategy.String.
func ParseStrategy(s string) (RotationStrategy, error) {
	for _, st := range []RotationStrategy{RotationRoundRobin, RotationOnError, RotationOnRateLimit} {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown rotation strategy %q", s)
}

func NewKeyRing(keys []*APIKey, strategy RotationStrategy) *KeyRing {
	keysCopy := make([]*APIKey, 0, len(keys))
	for _, k := range keys {
		copied := *k
		keysCopy = append(keysCopy, &copied)
	}

	return &KeyRing{
		keys:     keysCopy,
		strategy: strategy,
		logger:   zerolog.Nop(),
	}
}

// FromStrings builds a ring from plain key values, naming them key-1, key-2...
// Blank values are skipped.
func FromStrings(values []string, strategy RotationStrategy) *KeyRing {
	var keys []*APIKey
	for _, v := range values {
		if v == "" {
			continue
		}
		keys = append(keys, &APIKey{ID: fmt.Sprintf("key-%d", len(keys)+1), Key: v})
	}
	return NewKeyRing(keys, strategy)
}

// SetLogger sets the logger used to report rotations.
func (k *KeyRing) SetLogger(logger zerolog.Logger) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.logger = logger
}

// Len returns the number of enabled keys.
func (k *KeyRing) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()

	n := 0
	for _, key := range k.keys {
		if !key.Disabled {
			n++
		}
	}
	return n
}

// Current returns the key the next request would use, or nil.
func (k *KeyRing) Current() *APIKey {
	k.mu.RLock()
	defer k.mu.RUnlock()

	idx := k.pickLocked(time.Now())
	if idx < 0 {
		return nil
	}
	copied := *k.keys[idx]
	return &copied
}

// Acquire returns a copy of the key to use for the next request and marks it
// used. Keys that are rate limited are skipped while another key is free.
func (k *KeyRing) Acquire() (*APIKey, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := time.Now()
	idx := k.pickLocked(now)
	if idx < 0 {
		return nil, core.ErrNoAPIKey
	}
	k.current = idx
	k.keys[idx].LastUsed = now
	key := *k.keys[idx]

	if k.strategy == RotationRoundRobin {
		k.rotateLocked()
	}
	return &key, nil
}

// pickLocked returns the first enabled, unlimited key from current on. When
// every enabled key is limited it returns the one freed soonest.
func (k *KeyRing) pickLocked(now time.Time) int {
	best := -1
	for i := 0; i < len(k.keys); i++ {
		idx := (k.current + i) % len(k.keys)
		key := k.keys[idx]
		if key.Disabled {
			continue
		}
		if !now.Before(key.LimitedUntil) {
			return idx
		}
		if best < 0 || key.LimitedUntil.Before(k.keys[best].LimitedUntil) {
			best = idx
		}
	}
	return best
}

// Rotate moves to the next enabled key.
func (k *KeyRing) Rotate() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.rotateLocked()
}

func (k *KeyRing) rotateLocked() {
	if len(k.keys) == 0 {
		return
	}

	start := k.current
	for {
		k.current = (k.current + 1) % len(k.keys)
		if !k.keys[k.current].Disabled || k.current == start {
			return
		}
	}
}

// Report records the outcome of a request made with the key id. A rate limit
// error parks the key for the server-reported wait.
func (k *KeyRing) Report(id string, err error) {
	if err == nil {
		return
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	idx := k.indexLocked(id)
	if idx < 0 {
		return
	}
	key := k.keys[idx]
	key.ErrorCount++

	rateLimited := core.IsRateLimitError(err)
	if rateLimited {
		wait := time.Minute
		if e, ok := core.AsError(err); ok && e.RateLimit.Wait() > 0 {
			wait = e.RateLimit.Wait()
		}
		key.LimitedUntil = time.Now().Add(wait)
	}

	if (rateLimited && k.strategy == RotationOnRateLimit) || k.strategy == RotationOnError {
		if idx == k.current {
			k.rotateLocked()
		}
		k.logger.Debug().Str("key", key.String()).Bool("rate_limited", rateLimited).Msg("rotated api key")
	}
}

func (k *KeyRing) indexLocked(id string) int {
	for i, key := range k.keys {
		if key.ID == id {
			return i
		}
	}
	return -1
}

func (k *KeyRing) Disable(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if idx := k.indexLocked(id); idx >= 0 {
		k.keys[idx].Disabled = true
	}
}

func (k *KeyRing) Enable(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if idx := k.indexLocked(id); idx >= 0 {
		k.keys[idx].Disabled = false
		k.keys[idx].ErrorCount = 0
		k.keys[idx].LimitedUntil = time.Time{}
	}
}

func (k *APIKey) String() string {
	return fmt.Sprintf("APIKey{ID:%s, Key:%s}", k.ID, maskKey(k.Key))
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
