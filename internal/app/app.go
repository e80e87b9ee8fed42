package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"github.com/Blaise762/FemTechBI-MVP/internal/config"
	apierrors "github.com/Blaise762/FemTechBI-MVP/internal/errors"
	"github.com/Blaise762/FemTechBI-MVP/internal/infrastructure"
	customMiddleware "github.com/Blaise762/FemTechBI-MVP/internal/middleware"
	"github.com/Blaise762/FemTechBI-MVP/internal/services"
	handlers "github.com/Blaise762/FemTechBI-MVP/internal/transport/http"
	ws "github.com/Blaise762/FemTechBI-MVP/internal/websocket"
	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config          *config.Config
	Router          *chi.Mux
	Server          *http.Server
	Logger          *slog.Logger
	OTelProviders   *infrastructure.OTelProviders
	Metrics         *infrastructure.BusinessMetrics
	WebSocketHub    *ws.Hub
	PipelineService *services.PipelineService
	HealthService   *services.HealthService
	ErrorHandler    *apierrors.ErrorHandler
}

// NewApplication loads configuration, initializes the process logger and
// builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires every component from cfg. Nothing is started until Run.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", cfg.Server.Port))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	a.initializeServices()

	if err := a.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}
	a.createServer()

	return a, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	a.WebSocketHub = ws.NewHub(a.Logger, a.Metrics)

	store := services.NewSessionStore(a.Config.Sessions.MaxSessions, a.Config.Sessions.IdleTTL)
	a.PipelineService = services.NewPipelineService(store, a.WebSocketHub, a.Metrics, a.Logger,
		services.PipelineServiceOptions{
			MaxUploadBytes: a.Config.Ingest.MaxUploadBytes,
			ExportBOM:      a.Config.Ingest.ExportBOM,
		})

	a.HealthService = services.NewHealthService(a.WebSocketHub, a.PipelineService, a.Logger)
}

// setupRouter builds the route tree. The middleware order is
// RequestID, RealIP, OTel, logger, recoverer, then security and limits.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		return err
	}
	r.Use(otelMiddleware.Handler)

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.StripSlashes)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.WebSocketHub, a.ErrorHandler)
	r.Get(config.MetricsEndpoint, metricsHandler.Prometheus)

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	validator := customMiddleware.NewValidator(a.Logger)
	maxUpload := a.Config.Ingest.MaxUploadBytes

	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/health/stats", healthHandler.Stats)
		r.Get("/version", healthHandler.Version)

		metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.WebSocketHub, a.ErrorHandler)
		r.Get("/metrics/websocket", metricsHandler.WebSocket)

		pipelineHandler := handlers.NewPipelineHandler(a.PipelineService, a.ErrorHandler, a.Logger, maxUpload)
		r.Get("/regions", pipelineHandler.Regions)
		r.Mount("/pipeline", pipelineHandler.Routes())

		events := handlers.NewEventsHandler(a.WebSocketHub, a.PipelineService, a.Config.WebSocket,
			a.Config.Security.AllowedOrigins, a.ErrorHandler, a.Logger)
		eventsWithTrace := customMiddleware.WebSocketTraceMiddleware(a.Logger)(events)

		sessionHandler := handlers.NewSessionHandler(a.PipelineService, eventsWithTrace, validator, a.ErrorHandler, a.Logger, maxUpload)
		r.Mount("/sessions", sessionHandler.Routes())

		r.Post("/client-log", handlers.NewClientLogHandler(validator, a.ErrorHandler, a.Logger).Handle)
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves until ctx is cancelled or the listener fails, then shuts
// everything down. A nil listener binds the configured port.
func (a *Application) Run(ctx context.Context, ln net.Listener) error {
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", a.Server.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
		}
	}

	a.WebSocketHub.Start()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening", slog.String("address", ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.PipelineService.RunSweeper(gctx, a.Config.Sessions.SweepInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// ListenAndServe runs the application until SIGINT or SIGTERM
func (a *Application) ListenAndServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	err := a.Run(ctx, nil)
	a.Logger.Info("Application exited", slog.String("uptime", time.Since(start).String()))
	return err
}
