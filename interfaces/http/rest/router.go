package rest

import (
	"net/http"
	"time"

	"github.com/Sk16er/Scholar-chat/application/commands/bus"
	querybus "github.com/Sk16er/Scholar-chat/application/queries/bus"
	"github.com/Sk16er/Scholar-chat/interfaces/http/rest/handlers"
	"github.com/Sk16er/Scholar-chat/interfaces/http/rest/middleware"
	"github.com/Sk16er/Scholar-chat/pkg/auth"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"github.com/Sk16er/Scholar-chat/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Options tunes the HTTP surface
type Options struct {
	EnableCORS     bool
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxUploadBytes int64

	// Validator enables bearer auth on /api/v1 when set
	Validator *auth.JWTValidator

	// Ready reports readiness; nil means always ready
	Ready func() error
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	metrics    *observability.Collector
	opts       Options
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	metrics *observability.Collector,
	opts Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		metrics:    metrics,
		opts:       opts,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger(rt.logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(rt.errors.Middleware)
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}
	if rt.opts.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	if rt.opts.RateLimitRPS > 0 {
		limiter := auth.NewKeyedRateLimiter(rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
		router.Use(middleware.RateLimit(limiter, rt.errors))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	deps := handlers.Deps{
		CommandBus: rt.commandBus,
		QueryBus:   rt.queryBus,
		Errors:     rt.errors,
		Logger:     rt.logger,
	}
	projects := handlers.NewProjectHandler(deps)
	sources := handlers.NewSourceHandler(deps, rt.opts.MaxUploadBytes)
	messages := handlers.NewMessageHandler(deps)

	router.Route("/api/v1", func(r chi.Router) {
		if rt.opts.Validator != nil {
			r.Use(middleware.Authenticate(rt.opts.Validator, rt.errors, rt.logger))
		}

		r.Get("/workspace", projects.GetWorkspace)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projects.ListProjects)
			r.Post("/", projects.CreateProject)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", projects.GetProject)
				r.Delete("/", projects.DeleteProject)
				r.Post("/select", projects.SelectProject)
				r.Post("/summary", projects.RegenerateSummary)
				r.Post("/audio", projects.GenerateAudioOverview)
				r.Get("/mindmap", projects.GetMindMap)
				r.Post("/mindmap", projects.GenerateMindMap)
				r.Get("/messages", messages.GetConversation)
				r.Post("/messages", messages.SendMessage)

				r.Post("/sources", sources.AddSource)
				r.Route("/sources/{sourceID}", func(r chi.Router) {
					r.Get("/", sources.GetSource)
					r.Delete("/", sources.DeleteSource)
					r.Post("/select", sources.SelectSource)
				})
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if rt.opts.Ready != nil {
		if err := rt.opts.Ready(); err != nil {
			rt.errors.Handle(w, req, pkgerrors.NewUnavailableError("scholar").WithCause(err))
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready","time":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
}
