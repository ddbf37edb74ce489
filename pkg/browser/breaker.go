package browser

import (
	"fmt"
	"sync"
	"time"
)

// BreakerState is the circuit breaker position.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// BreakerSnapshot is a point-in-time copy of the breaker state.
type BreakerSnapshot struct {
	State        BreakerState
	FailureCount int
	LastFailure  time.Time
}

// CircuitBreaker stops connection attempts after repeated exhaustion of
// the strategy list and re-tests with a single probe after a cooldown.
// Open implies failureCount >= threshold.
type CircuitBreaker struct {
	mu           sync.Mutex
	threshold    int
	cooldown     time.Duration
	now          func() time.Time
	state        BreakerState
	failureCount int
	lastFailure  time.Time
	probing      bool
	onChange     func(BreakerState)
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(threshold int, cooldown time.Duration, now func() time.Time) *CircuitBreaker {
	if threshold < 1 {
		threshold = 1
	}
	if now == nil {
		now = time.Now
	}
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       now,
		state:     BreakerClosed,
	}
}

// Allow reports whether a connection attempt may proceed. Once the cooldown
// has elapsed the next call moves the breaker to half-open and lets exactly
// one attempt through.
func (b *CircuitBreaker) Allow() error {
	_, err := b.admit()
	return err
}

// admit is Allow that also reports whether the caller took the half-open
// probe slot.
func (b *CircuitBreaker) admit() (probe bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		elapsed := b.now().Sub(b.lastFailure)
		if elapsed < b.cooldown {
			return false, fmt.Errorf("%w: retry in %s after %d consecutive failures",
				ErrCircuitOpen, (b.cooldown - elapsed).Round(time.Second), b.failureCount)
		}
		b.setState(BreakerHalfOpen)
		b.probing = true
		return true, nil
	case BreakerHalfOpen:
		if b.probing {
			return false, fmt.Errorf("%w: recovery probe in progress", ErrCircuitOpen)
		}
		b.probing = true
		return true, nil
	}
	return false, nil
}

// RecordSuccess closes the breaker and clears the failure count.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failureCount = 0
	b.probing = false
	b.setState(BreakerClosed)
}

// RecordFailure counts a failure; reaching the threshold, or failing the
// half-open probe, opens the breaker and restarts the cooldown.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failureCount++
	b.probing = false
	if b.state == BreakerHalfOpen || b.failureCount >= b.threshold {
		b.lastFailure = b.now()
		b.setState(BreakerOpen)
	}
}

// Abandon frees a half-open probe slot without recording an outcome, for
// attempts cancelled by the caller.
func (b *CircuitBreaker) Abandon() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
}

// Snapshot returns the current state.
func (b *CircuitBreaker) Snapshot() BreakerSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerSnapshot{
		State:        b.state,
		FailureCount: b.failureCount,
		LastFailure:  b.lastFailure,
	}
}

// Reset returns the breaker to closed with no history.
func (b *CircuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failureCount = 0
	b.lastFailure = time.Time{}
	b.probing = false
	b.setState(BreakerClosed)
}

// OnStateChange registers a hook invoked with the lock held.
func (b *CircuitBreaker) OnStateChange(fn func(BreakerState)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

func (b *CircuitBreaker) setState(s BreakerState) {
	if b.state == s {
		return
	}
	b.state = s
	if b.onChange != nil {
		b.onChange(s)
	}
}
