package messaging

import (
	"context"
	"errors"

	"github.com/Sk16er/Scholar-chat/application/ports"
	"github.com/Sk16er/Scholar-chat/domain/events"
	"go.uber.org/zap"
)

// LoggingPublisher writes every event to the log. It is the default sink
// when no event bus is configured.
type LoggingPublisher struct {
	logger *zap.Logger
}

var _ ports.EventPublisher = (*LoggingPublisher)(nil)

// NewLoggingPublisher creates a publisher that only logs
func NewLoggingPublisher(logger *zap.Logger) *LoggingPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingPublisher{logger: logger}
}

// Publish logs a single event
func (p *LoggingPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.logger.Debug("Domain event",
		zap.String("event_type", event.GetEventType()),
		zap.String("aggregate_id", event.GetAggregateID()),
		zap.Int("version", event.GetVersion()),
		zap.Time("timestamp", event.GetTimestamp()),
	)
	return nil
}

// PublishBatch logs each event in order
func (p *LoggingPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	for _, e := range evts {
		_ = p.Publish(ctx, e)
	}
	return nil
}

// FanoutPublisher hands every event to each of its sinks. A failing sink
// does not stop the others.
type FanoutPublisher struct {
	sinks []ports.EventPublisher
}

var _ ports.EventPublisher = (*FanoutPublisher)(nil)

// NewFanoutPublisher combines publishers, skipping nil entries
func NewFanoutPublisher(sinks ...ports.EventPublisher) *FanoutPublisher {
	f := &FanoutPublisher{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Publish sends one event to every sink
func (f *FanoutPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return f.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends the batch to every sink and joins their errors
func (f *FanoutPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.PublishBatch(ctx, evts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
