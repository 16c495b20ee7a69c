package model

import (
	"context"
	"time"

	"github.com/Sk16er/Scholar-chat/application/ports"
	"github.com/Sk16er/Scholar-chat/pkg/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// InstrumentedClient records a span, metrics and a log line per model call
type InstrumentedClient struct {
	next    ports.ModelClient
	tracer  trace.Tracer
	metrics *observability.Collector
	logger  *zap.Logger
}

var _ ports.ModelClient = (*InstrumentedClient)(nil)

// NewInstrumentedClient wraps next. metrics may be nil.
func NewInstrumentedClient(next ports.ModelClient, tracer trace.Tracer, metrics *observability.Collector, logger *zap.Logger) *InstrumentedClient {
	if tracer == nil {
		tracer = observability.Tracer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedClient{next: next, tracer: tracer, metrics: metrics, logger: logger}
}

// Generate calls the wrapped client inside a span
func (c *InstrumentedClient) Generate(ctx context.Context, req ports.GenerateRequest) (*ports.GenerateResponse, error) {
	ctx, span := c.tracer.Start(ctx, "flow."+req.Flow,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("flow.name", req.Flow),
			attribute.String("model.name", req.Model),
			attribute.String("model.modality", string(req.Modality)),
			attribute.Int("model.parts", len(req.Parts)),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := c.next.Generate(ctx, req)
	elapsed := time.Since(start)

	if c.metrics != nil {
		c.metrics.RecordFlow(req.Flow, err, elapsed)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("Model call failed",
			zap.String("flow", req.Flow),
			zap.String("model", req.Model),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("response.text_length", len(resp.Text)),
		attribute.Int("response.media_bytes", len(resp.Media)),
	)
	c.logger.Debug("Model call succeeded",
		zap.String("flow", req.Flow),
		zap.Duration("duration", elapsed),
	)
	return resp, nil
}
