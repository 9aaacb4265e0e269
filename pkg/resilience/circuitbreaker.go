// Package resilience provides a circuit breaker guarding calls to remote
// storage engines, so a failing backend sheds load instead of stacking up
// timed-out requests.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// State is the circuit breaker state.
type State int

const (
	// StateClosed allows all calls through.
	StateClosed State = iota
	// StateOpen rejects all calls.
	StateOpen
	// StateHalfOpen allows a probe call through to test recovery.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned when the breaker rejects a call.
var ErrOpen = errors.New("circuit breaker is open")

// Options configures a circuit breaker.
type Options struct {
	// MaxFailures is the consecutive failure count that opens the breaker.
	// Default 5.
	MaxFailures int
	// ResetTimeout is how long the breaker stays open before probing.
	// Default 30s.
	ResetTimeout time.Duration
	// Ignore reports errors that should not count as failures. Expected
	// outcomes like a missing document must not open the breaker.
	Ignore func(error) bool
}

// Breaker is a consecutive-failure circuit breaker. Safe for concurrent use.
type Breaker struct {
	maxFailures int
	reset       time.Duration
	ignore      func(error) bool

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
}

// NewBreaker creates a circuit breaker in the closed state.
func NewBreaker(opts Options) *Breaker {
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = 5
	}
	if opts.ResetTimeout <= 0 {
		opts.ResetTimeout = 30 * time.Second
	}
	return &Breaker{
		maxFailures: opts.MaxFailures,
		reset:       opts.ResetTimeout,
		ignore:      opts.Ignore,
	}
}

// Execute runs fn when the breaker allows it, returning ErrOpen otherwise.
// Ignored errors pass through without affecting the breaker state.
func (b *Breaker) Execute(fn func() error) error {
	if !b.allow() {
		return ErrOpen
	}

	err := fn()
	if err != nil && (b.ignore == nil || !b.ignore(err)) {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return err
}

// State returns the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if time.Since(b.openedAt) > b.reset {
			b.state = StateHalfOpen
			return true
		}
		return false
	default:
		return false
	}
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		// The probe failed, back to open.
		b.state = StateOpen
		b.openedAt = time.Now()
		b.failures = 0
		return
	}

	b.failures++
	if b.failures >= b.maxFailures {
		b.state = StateOpen
		b.openedAt = time.Now()
		b.failures = 0
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateClosed
	b.failures = 0
}
