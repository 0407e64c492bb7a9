package optimizer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CircuitBreakerState represents the state of the circuit breaker.
type CircuitBreakerState int

const (
	CircuitClosed   CircuitBreakerState = iota // Loads run normally
	CircuitOpen                                // Loads are rejected
	CircuitHalfOpen                            // One probe load is allowed
)

var circuitStateNames = [...]string{"closed", "open", "half-open"}

func (s CircuitBreakerState) String() string {
	if s < 0 || int(s) >= len(circuitStateNames) {
		return "unknown"
	}
	return circuitStateNames[s]
}

// CircuitBreakerConfig holds configuration for the circuit breaker.
type CircuitBreakerConfig struct {
	MaxFailures  int           // Consecutive failed loads before opening
	ResetTimeout time.Duration // Time open before a probe load is allowed
}

// DefaultCircuitBreakerConfig returns the default circuit breaker configuration.
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{MaxFailures: 3, ResetTimeout: time.Minute}
}

// CircuitBreaker stops snapshot reloads from hammering a failing database.
// After MaxFailures consecutive failures it rejects loads for ResetTimeout,
// then lets exactly one probe through; the probe's outcome closes or
// reopens the circuit. The last good snapshot keeps serving meanwhile.
type CircuitBreaker struct {
	mu       sync.Mutex
	name     string
	config   CircuitBreakerConfig
	state    CircuitBreakerState
	failures int
	openedAt time.Time
	probing  bool
	now      func() time.Time
	metrics  *MetricsRecorder
	logger   zerolog.Logger
}

// NewCircuitBreaker creates a closed circuit breaker. metrics and logger
// may be nil.
func NewCircuitBreaker(name string, config *CircuitBreakerConfig, metrics *MetricsRecorder, logger *zerolog.Logger) *CircuitBreaker {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	cb := &CircuitBreaker{
		name:    name,
		config:  *config,
		now:     time.Now,
		metrics: metrics,
		logger:  l.With().Str("circuit_breaker", name).Logger(),
	}
	cb.setState(CircuitClosed)
	return cb
}

// Allow reports whether a load may run now.
func (cb *CircuitBreaker) Allow(ctx context.Context) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if cb.now().Sub(cb.openedAt) < cb.config.ResetTimeout {
			return false
		}
		cb.setState(CircuitHalfOpen)
		cb.probing = true
		cb.logger.Info().Str("request_id", RequestIDFrom(ctx)).Msg("Circuit breaker half-open, probing snapshot load")
		return true
	default:
		if cb.probing {
			return false
		}
		cb.probing = true
		return true
	}
}

// RecordSuccess closes the circuit and clears the failure count.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.probing = false
	if cb.state != CircuitClosed {
		cb.setState(CircuitClosed)
		cb.logger.Info().Msg("Circuit breaker closed after successful load")
	}
}

// RecordFailure counts a failed load and opens the circuit when the limit
// is reached or a probe fails.
func (cb *CircuitBreaker) RecordFailure(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.probing = false
	cb.logger.Error().Err(err).Int("failure_count", cb.failures).Msg("Snapshot load failed")

	if cb.state == CircuitHalfOpen || (cb.state == CircuitClosed && cb.failures >= cb.config.MaxFailures) {
		cb.openedAt = cb.now()
		cb.setState(CircuitOpen)
		cb.logger.Warn().
			Int("failure_count", cb.failures).
			Dur("reset_timeout", cb.config.ResetTimeout).
			Msg("Circuit breaker opened")
	}
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset closes the circuit.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.probing = false
	cb.setState(CircuitClosed)
	cb.logger.Info().Msg("Circuit breaker manually reset")
}

// setState must be called with mu held.
func (cb *CircuitBreaker) setState(s CircuitBreakerState) {
	cb.state = s
	if cb.metrics != nil {
		cb.metrics.RecordCircuitState(cb.name, s)
	}
}

// WarmupGate is closed until the first snapshot has loaded.
type WarmupGate struct {
	once  sync.Once
	ready chan struct{}
}

// NewWarmupGate creates a closed gate.
func NewWarmupGate() *WarmupGate {
	return &WarmupGate{ready: make(chan struct{})}
}

// Ready opens the gate. Later calls do nothing.
func (g *WarmupGate) Ready() {
	g.once.Do(func() { close(g.ready) })
}

// IsReady reports whether the gate is open without blocking.
func (g *WarmupGate) IsReady() bool {
	select {
	case <-g.ready:
		return true
	default:
		return false
	}
}

// Wait blocks until the gate opens or ctx is done. It returns false when
// ctx ended first.
func (g *WarmupGate) Wait(ctx context.Context) bool {
	select {
	case <-g.ready:
		return true
	case <-ctx.Done():
		return false
	}
}
