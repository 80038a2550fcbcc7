package graphql

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_Transitions(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(2, time.Minute, nil)
	cb.now = func() time.Time { return now }

	if err := cb.CheckBeforeRequest(); err != nil {
		t.Fatalf("closed breaker rejected request: %v", err)
	}

	cb.OnFailure()
	if cb.State() != StateClosed {
		t.Fatalf("got %v after one failure, want closed", cb.State())
	}
	cb.OnFailure()
	if cb.State() != StateOpen {
		t.Fatalf("got %v after threshold, want open", cb.State())
	}
	if err := cb.CheckBeforeRequest(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open breaker: got %v, want ErrCircuitOpen", err)
	}

	now = now.Add(2 * time.Minute)
	if err := cb.CheckBeforeRequest(); err != nil {
		t.Fatalf("expected trial after timeout, got %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("got %v, want half-open", cb.State())
	}
	if err := cb.CheckBeforeRequest(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("half-open allows one trial only, got %v", err)
	}

	cb.OnSuccess()
	if cb.State() != StateClosed {
		t.Fatalf("got %v after successful trial, want closed", cb.State())
	}
}

func TestCircuitBreaker_FailedTrialReopens(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, time.Second, nil)
	cb.now = func() time.Time { return now }

	cb.OnFailure()
	now = now.Add(2 * time.Second)
	_ = cb.CheckBeforeRequest()
	cb.OnFailure()

	if cb.State() != StateOpen {
		t.Fatalf("got %v, want open after failed trial", cb.State())
	}
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute, nil)
	cb.OnFailure()
	cb.OnSuccess()
	cb.OnFailure()
	if cb.State() != StateClosed {
		t.Fatalf("got %v, want closed: success should reset the count", cb.State())
	}
}

func TestCircuitBreaker_AbortedTrialAllowsNextTrial(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, time.Second, nil)
	cb.now = func() time.Time { return now }

	cb.OnFailure()
	now = now.Add(2 * time.Second)
	if err := cb.CheckBeforeRequest(); err != nil {
		t.Fatalf("trial rejected: %v", err)
	}
	cb.OnAbort()

	if cb.State() != StateOpen {
		t.Fatalf("got %v after abort, want open", cb.State())
	}
	if err := cb.CheckBeforeRequest(); err != nil {
		t.Errorf("next trial should be allowed right away, got %v", err)
	}
}

func TestCircuitBreaker_AbortWhenClosedIsNoop(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Minute, nil)
	cb.OnAbort()
	if cb.State() != StateClosed {
		t.Fatalf("got %v, want closed", cb.State())
	}
}
