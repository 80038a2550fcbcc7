package graphql

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

type State int

const (
	StateClosed State = iota + 1
	StateOpen
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
	}
	return "unknown"
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker stops calls to an endpoint after maxFailures consecutive
// transport failures and lets a single trial request through once openTimeout has
// elapsed.
type CircuitBreaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	maxFailures int
	openSince   time.Time
	openTimeout time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

func NewCircuitBreaker(maxFailures int, openTimeout time.Duration, logger *zap.Logger) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CircuitBreaker{
		state:       StateClosed,
		maxFailures: maxFailures,
		openTimeout: openTimeout,
		logger:      logger,
		now:         time.Now,
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) CheckBeforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil

	case StateOpen:
		if cb.now().Sub(cb.openSince) > cb.openTimeout {
			cb.logger.Warn("circuit breaker: open -> half-open")
			cb.state = StateHalfOpen
			return nil
		}
		return ErrCircuitOpen

	case StateHalfOpen:
		return ErrCircuitOpen
	}
	return nil
}

func (cb *CircuitBreaker) OnSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.logger.Info("circuit breaker: half-open -> closed")
		cb.state = StateClosed
		cb.failures = 0

	case StateClosed:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) OnFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.logger.Error("circuit breaker: half-open -> open (trial failed)")
		cb.state = StateOpen
		cb.openSince = cb.now()

	case StateClosed:
		cb.failures++
		cb.logger.Warn("circuit breaker: failure recorded", zap.Int("count", cb.failures))

		if cb.failures >= cb.maxFailures {
			cb.logger.Error("circuit breaker: closed -> open (threshold reached)")
			cb.state = StateOpen
			cb.openSince = cb.now()
		}
	}
}

// OnAbort releases a half-open trial slot without judging the endpoint.
// openSince is kept, so the next request may try again right away.
func (cb *CircuitBreaker) OnAbort() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.logger.Info("circuit breaker: half-open -> open (trial aborted)")
		cb.state = StateOpen
	}
}
