// Package model holds decorators around the model client.
package model

import (
	"context"
	"errors"
	"time"

	"github.com/Sk16er/Scholar-chat/application/ports"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"github.com/Sk16er/Scholar-chat/pkg/observability"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds configuration for the circuit breaker
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// consecutive failures that open the circuit
	MaxFailures uint32
}

// DefaultBreakerConfig returns the default breaker settings
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:        "model",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		MaxFailures: 5,
	}
}

// BreakerClient stops calling the model after repeated upstream failures
type BreakerClient struct {
	next ports.ModelClient
	cb   *gobreaker.CircuitBreaker
	name string
}

var _ ports.ModelClient = (*BreakerClient)(nil)

// NewBreakerClient wraps next with a circuit breaker. Only upstream failures
// count against the circuit; caller errors and cancellations do not.
func NewBreakerClient(next ports.ModelClient, cfg BreakerConfig, metrics *observability.Collector, logger *zap.Logger) *BreakerClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = DefaultBreakerConfig().MaxFailures
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if metrics != nil {
				metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
		IsSuccessful: isSuccessful,
	})

	return &BreakerClient{next: next, cb: cb, name: cfg.Name}
}

// Generate forwards the call unless the circuit is open
func (b *BreakerClient) Generate(ctx context.Context, req ports.GenerateRequest) (*ports.GenerateResponse, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Generate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, pkgerrors.NewUnavailableError(b.name).
				WithCode(pkgerrors.CodeCircuitOpen).
				WithCause(err)
		}
		return nil, err
	}
	return out.(*ports.GenerateResponse), nil
}

// State reports the current breaker state
func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	return pkgerrors.IsValidation(err)
}
