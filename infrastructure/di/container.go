package di

import (
	"context"
	"errors"
	"net/http"

	"github.com/Sk16er/Scholar-chat/application/commands/bus"
	cmdhandlers "github.com/Sk16er/Scholar-chat/application/commands/handlers"
	querybus "github.com/Sk16er/Scholar-chat/application/queries/bus"
	"github.com/Sk16er/Scholar-chat/infrastructure/config"
	"github.com/Sk16er/Scholar-chat/infrastructure/persistence/memory"
	"github.com/Sk16er/Scholar-chat/infrastructure/prompts"
	"github.com/Sk16er/Scholar-chat/pkg/observability"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	LogLevel     zap.AtomicLevel
	Store        *memory.ProjectStore
	Prompts      *prompts.Store
	Orchestrator *cmdhandlers.AddSourceOrchestrator
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	Metrics      *observability.Collector
	Tracing      *observability.TracerProvider
	HTTPHandler  http.Handler
}

// Shutdown waits for background ingestion, then stops watchers and flushes
// telemetry. ctx bounds the wait.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error
	if c.Orchestrator != nil {
		if err := c.Orchestrator.Wait(ctx); err != nil {
			c.Logger.Warn("Background ingestion still running at shutdown", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if c.Prompts != nil {
		c.Prompts.Stop()
	}
	if c.Tracing != nil {
		if err := c.Tracing.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	_ = c.Logger.Sync()
	return errors.Join(errs...)
}
