package di

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Sk16er/Scholar-chat/application/commands/bus"
	cmdhandlers "github.com/Sk16er/Scholar-chat/application/commands/handlers"
	"github.com/Sk16er/Scholar-chat/application/flows"
	"github.com/Sk16er/Scholar-chat/application/ports"
	querybus "github.com/Sk16er/Scholar-chat/application/queries/bus"
	queryhandlers "github.com/Sk16er/Scholar-chat/application/queries/handlers"
	domainconfig "github.com/Sk16er/Scholar-chat/domain/config"
	"github.com/Sk16er/Scholar-chat/infrastructure/config"
	"github.com/Sk16er/Scholar-chat/infrastructure/messaging"
	"github.com/Sk16er/Scholar-chat/infrastructure/messaging/eventbridge"
	"github.com/Sk16er/Scholar-chat/infrastructure/model"
	"github.com/Sk16er/Scholar-chat/infrastructure/model/gemini"
	"github.com/Sk16er/Scholar-chat/infrastructure/persistence/memory"
	"github.com/Sk16er/Scholar-chat/infrastructure/prompts"
	"github.com/Sk16er/Scholar-chat/interfaces/http/rest"
	"github.com/Sk16er/Scholar-chat/pkg/auth"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"github.com/Sk16er/Scholar-chat/pkg/observability"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// metricsNamespace prefixes every prometheus metric
const metricsNamespace = "scholar"

// ProvideLogLevel parses LOG_LEVEL into an adjustable level
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	return zap.NewAtomicLevelAt(level), nil
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("environment", cfg.Environment)), nil
}

// ProvideDomainConfig selects the notebook rules for the environment
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	dcfg := domainconfig.LoadDomainConfig(cfg.Environment)
	if cfg.MaxUploadBytes > 0 {
		dcfg.MaxUploadBytes = cfg.MaxUploadBytes
	}
	return dcfg
}

// ProvideMetrics creates the prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector(metricsNamespace)
}

// ProvideTracing starts OTLP export when tracing is enabled. It returns nil
// otherwise.
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, error) {
	if !cfg.EnableTracing {
		return nil, nil
	}
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: "scholar-chat",
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Tracing enabled", zap.String("endpoint", cfg.OTLPEndpoint))
	return tp, nil
}

// ProvideTracer returns the tracer spans are recorded with
func ProvideTracer(tp *observability.TracerProvider) trace.Tracer {
	if tp == nil {
		return observability.Tracer()
	}
	return tp.Tracer()
}

// ProvideEventPublisher logs every domain event and, when EVENT_BUS_NAME is
// set, forwards it to EventBridge
func ProvideEventPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.EventPublisher, error) {
	sinks := []ports.EventPublisher{messaging.NewLoggingPublisher(logger)}
	if cfg.EventBusName != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		client := awseventbridge.NewFromConfig(awsCfg)
		sinks = append(sinks, eventbridge.NewPublisher(client, cfg.EventBusName, logger))
		logger.Info("EventBridge publishing enabled", zap.String("bus", cfg.EventBusName))
	}
	return messaging.NewFanoutPublisher(sinks...), nil
}

// ProvideKeyedLocker creates the per-project lock
func ProvideKeyedLocker(logger *zap.Logger) ports.KeyedLocker {
	return memory.NewKeyedLock(logger)
}

// ProvideProjectStore creates the in-memory store, seeded with the demo
// projects unless disabled
func ProvideProjectStore(
	ctx context.Context,
	locks ports.KeyedLocker,
	publisher ports.EventPublisher,
	cfg *config.Config,
	dcfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *memory.ProjectStore {
	store := memory.NewProjectStore(locks, publisher, logger)
	if cfg.SeedDemoData {
		n := store.Seed(ctx, memory.DemoProjects(dcfg))
		logger.Info("Seeded demo projects", zap.Int("count", n))
	}
	return store
}

// ProvidePromptStore loads prompt templates, overlaying PROMPT_DIR
func ProvidePromptStore(cfg *config.Config, logger *zap.Logger) (*prompts.Store, error) {
	return prompts.NewStore(cfg.PromptDir, logger)
}

// ProvideModelClient builds the model client: Gemini, instrumented, behind
// a circuit breaker. Without an API key every call reports UNAVAILABLE.
func ProvideModelClient(
	cfg *config.Config,
	tracer trace.Tracer,
	metrics *observability.Collector,
	logger *zap.Logger,
) (ports.ModelClient, error) {
	var client ports.ModelClient
	if cfg.ModelAPIKey == "" {
		logger.Warn("No model API key configured; flows will fail until GEMINI_API_KEY is set")
		client = model.UnavailableClient{Reason: "GEMINI_API_KEY is not set"}
	} else {
		g, err := gemini.NewClient(gemini.Config{
			APIKey:  cfg.ModelAPIKey,
			BaseURL: cfg.ModelBaseURL,
			Timeout: cfg.ModelTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		client = g
	}

	client = model.NewInstrumentedClient(client, tracer, metrics, logger)

	if cfg.BreakerEnabled {
		bcfg := model.DefaultBreakerConfig()
		if cfg.BreakerMaxFailures > 0 {
			bcfg.MaxFailures = cfg.BreakerMaxFailures
		}
		if cfg.BreakerOpenTimeout > 0 {
			bcfg.Timeout = cfg.BreakerOpenTimeout
		}
		client = model.NewBreakerClient(client, bcfg, metrics, logger)
	}
	return client, nil
}

// ProvideFlows creates the prompt flow runner
func ProvideFlows(client ports.ModelClient, store *prompts.Store, cfg *config.Config, logger *zap.Logger) *flows.Flows {
	return flows.New(client, store, flows.Config{
		TextModel:   cfg.TextModel,
		SpeechModel: cfg.SpeechModel,
		Voice:       cfg.SpeechVoice,
	}, logger)
}

// ProvideCommandHandlers creates every command handler
func ProvideCommandHandlers(
	repo ports.ProjectRepository,
	ws ports.WorkspaceState,
	f cmdhandlers.Flows,
	dcfg *domainconfig.DomainConfig,
	metrics *observability.Collector,
	orchestrator *cmdhandlers.AddSourceOrchestrator,
	logger *zap.Logger,
) *cmdhandlers.Handlers {
	return &cmdhandlers.Handlers{
		Projects:  cmdhandlers.NewProjectHandler(repo, ws, dcfg, logger),
		Sources:   orchestrator,
		Summaries: cmdhandlers.NewSummaryHandler(repo, f, dcfg, logger),
		MindMaps:  cmdhandlers.NewMindMapHandler(repo, f, logger),
		Chat:      cmdhandlers.NewChatHandler(repo, f, dcfg, metrics, logger),
	}
}

// ProvideCommandBus creates the command bus with logging and metrics
func ProvideCommandBus(h *cmdhandlers.Handlers, metrics *observability.Collector, logger *zap.Logger) (*bus.CommandBus, error) {
	b := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(metrics),
	)
	if err := h.Register(b); err != nil {
		return nil, err
	}
	return b, nil
}

// ProvideQueryBus creates the query bus
func ProvideQueryBus(repo ports.ProjectRepository, ws ports.WorkspaceState, logger *zap.Logger) (*querybus.QueryBus, error) {
	b := querybus.NewQueryBus()
	if err := queryhandlers.NewProjectQueryHandler(repo, ws, logger).Register(b); err != nil {
		return nil, err
	}
	return b, nil
}

// ProvideErrorHandler creates the HTTP error writer. Development responses
// include error causes.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideHTTPHandler builds the REST router
func ProvideHTTPHandler(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	metrics *observability.Collector,
	logger *zap.Logger,
) (http.Handler, error) {
	opts := rest.Options{
		EnableCORS:     cfg.EnableCORS,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	if cfg.AuthEnabled() {
		validator, err := auth.NewJWTValidator(cfg.JWTSecret, cfg.JWTIssuer)
		if err != nil {
			return nil, err
		}
		opts.Validator = validator
	}

	var routeMetrics *observability.Collector
	if cfg.EnableMetrics {
		routeMetrics = metrics
	}
	return rest.NewRouter(commandBus, queryBus, errs, routeMetrics, opts, logger).Setup(), nil
}
