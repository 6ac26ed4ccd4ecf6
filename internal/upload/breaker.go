package upload

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CircuitState represents the current state of a circuit breaker.
type CircuitState int

const (
	// StateClosed: puts flow normally
	StateClosed CircuitState = iota
	// StateOpen: puts fail fast
	StateOpen
	// StateHalfOpen: one trial put is testing whether the bucket recovered
	StateHalfOpen
)

func (s CircuitState) String() string {
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

// ErrCircuitOpen is returned while the breaker is rejecting puts.
var ErrCircuitOpen = errors.New("object storage circuit is open")

// Breaker is an ObjectStore that stops calling the wrapped store after
// maxFailures consecutive failures and lets a single trial put through once
// timeout has passed.
type Breaker struct {
	next   ObjectStore
	logger zerolog.Logger
	now    func() time.Time

	maxFailures int
	timeout     time.Duration

	mu              sync.Mutex
	state           CircuitState
	failures        int
	lastFailureTime time.Time
	trialInFlight   bool
}

// NewBreaker wraps next.
func NewBreaker(next ObjectStore, maxFailures int, timeout time.Duration, logger zerolog.Logger) *Breaker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &Breaker{
		next:        next,
		logger:      logger,
		now:         time.Now,
		maxFailures: maxFailures,
		timeout:     timeout,
	}
}

// Put forwards to the wrapped store unless the circuit is open.
func (b *Breaker) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := b.acquire(); err != nil {
		return "", err
	}

	locator, err := b.next.Put(ctx, key, data, contentType)
	// A cancelled request says nothing about the bucket. A deadline that
	// expires while waiting on it does.
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		b.release()
		return "", err
	}
	b.record(err)
	return locator, err
}

// State returns the current circuit state.
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.lastFailureTime) < b.timeout {
			return ErrCircuitOpen
		}
		b.state = StateHalfOpen
		b.logger.Info().Msg("object storage circuit half-open")
		fallthrough
	case StateHalfOpen:
		if b.trialInFlight {
			return ErrCircuitOpen
		}
		b.trialInFlight = true
	}
	return nil
}

func (b *Breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trialInFlight = false
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trialInFlight = false

	if err == nil {
		if b.state != StateClosed {
			b.logger.Info().Msg("object storage circuit closed")
		}
		b.state = StateClosed
		b.failures = 0
		return
	}

	b.failures++
	b.lastFailureTime = b.now()
	if b.state == StateHalfOpen || b.failures >= b.maxFailures {
		if b.state != StateOpen {
			b.logger.Warn().Err(err).Int("failures", b.failures).Dur("timeout", b.timeout).Msg("object storage circuit opened")
		}
		b.state = StateOpen
	}
}
