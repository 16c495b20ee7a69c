package sagas

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// SagaStep represents a single step in a saga
type SagaStep struct {
	Name    string
	Execute func(ctx context.Context) error
}

// SagaState represents the current state of a saga execution
type SagaState string

const (
	SagaStatePending   SagaState = "PENDING"
	SagaStateRunning   SagaState = "RUNNING"
	SagaStateCompleted SagaState = "COMPLETED"
	SagaStateFailed    SagaState = "FAILED"
)

// Saga runs steps in order. When a step fails the remaining steps are
// skipped and the failure hook runs. Completed steps are not undone and
// steps are never retried.
type Saga struct {
	id        string
	name      string
	steps     []SagaStep
	onFailure func(ctx context.Context, step string, err error)
	state     SagaState
	failedAt  string
	logger    *zap.Logger
	fields    []zap.Field
}

var sagaSeq atomic.Uint64

// NewSaga creates a new saga instance
func NewSaga(name string, logger *zap.Logger) *Saga {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Saga{
		id:     fmt.Sprintf("saga_%d_%d", time.Now().UnixNano(), sagaSeq.Add(1)),
		name:   name,
		state:  SagaStatePending,
		logger: logger,
	}
}

// AddStep adds a step to the saga
func (s *Saga) AddStep(step SagaStep) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// OnFailure sets a hook that runs when a step fails
func (s *Saga) OnFailure(fn func(ctx context.Context, step string, err error)) *Saga {
	s.onFailure = fn
	return s
}

// With attaches log fields to every saga log line
func (s *Saga) With(fields ...zap.Field) *Saga {
	s.fields = append(s.fields, fields...)
	return s
}

// ID returns the saga id
func (s *Saga) ID() string { return s.id }

// State returns the saga state
func (s *Saga) State() SagaState { return s.state }

// FailedStep names the step that failed, if any
func (s *Saga) FailedStep() string { return s.failedAt }

// Execute runs the saga
func (s *Saga) Execute(ctx context.Context) error {
	log := s.logger.With(append([]zap.Field{
		zap.String("saga_id", s.id),
		zap.String("saga_name", s.name),
	}, s.fields...)...)

	s.state = SagaStateRunning
	log.Debug("Starting saga execution", zap.Int("total_steps", len(s.steps)))

	for i, step := range s.steps {
		start := time.Now()
		if err := step.Execute(ctx); err != nil {
			s.state = SagaStateFailed
			s.failedAt = step.Name
			log.Warn("Saga step failed",
				zap.String("step_name", step.Name),
				zap.Int("step_number", i+1),
				zap.Error(err),
			)

			if s.onFailure != nil {
				s.onFailure(ctx, step.Name, err)
			}
			return fmt.Errorf("saga %s failed at step %s: %w", s.name, step.Name, err)
		}
		log.Debug("Saga step completed",
			zap.String("step_name", step.Name),
			zap.Duration("duration", time.Since(start)),
		)
	}

	s.state = SagaStateCompleted
	log.Debug("Saga completed", zap.Int("completed_steps", len(s.steps)))
	return nil
}
