//go:build wireinject
// +build wireinject

package di

import (
	"context"

	cmdhandlers "github.com/Sk16er/Scholar-chat/application/commands/handlers"
	"github.com/Sk16er/Scholar-chat/application/flows"
	"github.com/Sk16er/Scholar-chat/application/ports"
	"github.com/Sk16er/Scholar-chat/infrastructure/config"
	"github.com/Sk16er/Scholar-chat/infrastructure/persistence/memory"
	"github.com/google/wire"
)

// ObservabilitySet provides logging, metrics and tracing
var ObservabilitySet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideMetrics,
	ProvideTracing,
	ProvideTracer,
)

// StateSet provides the project store and its ports
var StateSet = wire.NewSet(
	ProvideDomainConfig,
	ProvideEventPublisher,
	ProvideKeyedLocker,
	ProvideProjectStore,
	wire.Bind(new(ports.ProjectRepository), new(*memory.ProjectStore)),
	wire.Bind(new(ports.WorkspaceState), new(*memory.ProjectStore)),
)

// ApplicationSet provides flows, handlers and buses
var ApplicationSet = wire.NewSet(
	ProvidePromptStore,
	ProvideModelClient,
	ProvideFlows,
	wire.Bind(new(cmdhandlers.Flows), new(*flows.Flows)),
	cmdhandlers.NewAddSourceOrchestrator,
	ProvideCommandHandlers,
	ProvideCommandBus,
	ProvideQueryBus,
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ObservabilitySet,
	StateSet,
	ApplicationSet,
	ProvideErrorHandler,
	ProvideHTTPHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
