package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var errBackend = errors.New("backend unreachable")

func failing() error { return errBackend }
func succeeding() error { return nil }

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := NewBreaker(Options{MaxFailures: 3, ResetTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		if err := b.Execute(failing); !errors.Is(err, errBackend) {
			t.Fatalf("call %d: got %v, want backend error", i, err)
		}
	}
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}
	if err := b.Execute(succeeding); !errors.Is(err, ErrOpen) {
		t.Fatalf("open breaker executed: %v", err)
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(Options{MaxFailures: 2, ResetTimeout: time.Minute})

	_ = b.Execute(failing)
	_ = b.Execute(succeeding)
	_ = b.Execute(failing)
	if b.State() != StateClosed {
		t.Fatalf("state = %v, non-consecutive failures must not open", b.State())
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker(Options{MaxFailures: 1, ResetTimeout: 10 * time.Millisecond})

	_ = b.Execute(failing)
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}
	time.Sleep(20 * time.Millisecond)

	// First call after the reset timeout is the probe.
	if err := b.Execute(succeeding); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("state = %v, successful probe must close", b.State())
	}
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	b := NewBreaker(Options{MaxFailures: 1, ResetTimeout: 10 * time.Millisecond})

	_ = b.Execute(failing)
	time.Sleep(20 * time.Millisecond)
	_ = b.Execute(failing)
	if b.State() != StateOpen {
		t.Fatalf("state = %v, failed probe must reopen", b.State())
	}
}

func TestBreakerIgnoresClassifiedErrors(t *testing.T) {
	expected := errors.New("document not found")
	b := NewBreaker(Options{
		MaxFailures:  1,
		ResetTimeout: time.Minute,
		Ignore:       func(err error) bool { return errors.Is(err, expected) },
	})

	for i := 0; i < 5; i++ {
		if err := b.Execute(func() error { return expected }); !errors.Is(err, expected) {
			t.Fatalf("ignored error swallowed: %v", err)
		}
	}
	if b.State() != StateClosed {
		t.Fatalf("state = %v, ignored errors must not open", b.State())
	}
}

func TestProperty_BreakerOpensAtThreshold(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("exactly maxFailures consecutive failures open the breaker", prop.ForAll(
		func(maxFailures int) bool {
			b := NewBreaker(Options{MaxFailures: maxFailures, ResetTimeout: time.Minute})
			for i := 0; i < maxFailures-1; i++ {
				_ = b.Execute(failing)
				if b.State() != StateClosed {
					return false
				}
			}
			_ = b.Execute(failing)
			return b.State() == StateOpen
		},
		gen.IntRange(1, 10),
	))

	properties.Property("a success at any point keeps the breaker closed", prop.ForAll(
		func(failures int) bool {
			b := NewBreaker(Options{MaxFailures: failures + 1, ResetTimeout: time.Minute})
			for i := 0; i < failures; i++ {
				_ = b.Execute(failing)
			}
			_ = b.Execute(succeeding)
			for i := 0; i < failures; i++ {
				_ = b.Execute(failing)
			}
			return b.State() == StateClosed
		},
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}
