package ai

import (
	"fmt"

	"interviewcoach/internal/config"
	"interviewcoach/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// AICircuitBreaker guards completions of one operation
type AICircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[*Completion]
}

// NewAICircuitBreaker creates a circuit breaker for an operation, or nil when disabled
func NewAICircuitBreaker(operationType string, cfg *config.OperationAIConfig, logger *errors.Logger) *AICircuitBreaker {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}

	cbCfg := cfg.CircuitBreaker
	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("AI-%s", operationType),
		MaxRequests: cbCfg.MaxRequests,
		Interval:    cbCfg.Interval,
		Timeout:     cbCfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cbCfg.MinRequests || counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cbCfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.Warn("Circuit breaker state changed",
				"name", name,
				"operation_type", operationType,
				"from", from.String(),
				"to", to.String())
		},
	}

	return &AICircuitBreaker{cb: gobreaker.NewCircuitBreaker[*Completion](settings)}
}

// Execute runs fn under the breaker. A nil breaker runs fn directly.
func (cb *AICircuitBreaker) Execute(fn func() (*Completion, error)) (*Completion, error) {
	if cb == nil || cb.cb == nil {
		return fn()
	}
	return cb.cb.Execute(fn)
}

// CircuitBreakerStats is the reportable state of a breaker
type CircuitBreakerStats struct {
	Enabled              bool   `json:"enabled"`
	Name                 string `json:"name,omitempty"`
	State                string `json:"state,omitempty"`
	Requests             uint32 `json:"requests"`
	TotalFailures        uint32 `json:"totalFailures"`
	ConsecutiveFailures  uint32 `json:"consecutiveFailures"`
	ConsecutiveSuccesses uint32 `json:"consecutiveSuccesses"`
}

// GetStats returns circuit breaker statistics
func (cb *AICircuitBreaker) GetStats() CircuitBreakerStats {
	if cb == nil || cb.cb == nil {
		return CircuitBreakerStats{Enabled: false}
	}
	counts := cb.cb.Counts()
	return CircuitBreakerStats{
		Enabled:              true,
		Name:                 cb.cb.Name(),
		State:                cb.cb.State().String(),
		Requests:             counts.Requests,
		TotalFailures:        counts.TotalFailures,
		ConsecutiveFailures:  counts.ConsecutiveFailures,
		ConsecutiveSuccesses: counts.ConsecutiveSuccesses,
	}
}

// IsHealthy returns true if the circuit breaker is not open
func (cb *AICircuitBreaker) IsHealthy() bool {
	if cb == nil || cb.cb == nil {
		return true
	}
	return cb.cb.State() != gobreaker.StateOpen
}
