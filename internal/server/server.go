package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rs/cors"

	"github.com/preston-bernstein/pickem-client/internal/api"
	"github.com/preston-bernstein/pickem-client/internal/config"
	httpserver "github.com/preston-bernstein/pickem-client/internal/http"
	"github.com/preston-bernstein/pickem-client/internal/http/handlers"
	"github.com/preston-bernstein/pickem-client/internal/http/middleware"
	"github.com/preston-bernstein/pickem-client/internal/http/requestutil"
	"github.com/preston-bernstein/pickem-client/internal/logging"
	"github.com/preston-bernstein/pickem-client/internal/metrics"
	"github.com/preston-bernstein/pickem-client/internal/poller"
	"github.com/preston-bernstein/pickem-client/internal/reconcile"
	"github.com/preston-bernstein/pickem-client/internal/session"
	"github.com/preston-bernstein/pickem-client/internal/store"
	"github.com/preston-bernstein/pickem-client/internal/timeutil"
	"github.com/preston-bernstein/pickem-client/internal/views"
)

var metricsSetup = metrics.Setup

// Sessions is the session store as the server drives it.
type Sessions interface {
	handlers.Sessions
	Bootstrap(ctx context.Context) session.Session
	OnChange(fn func(session.Session))
}

// Server is the local companion service: it keeps one session and one
// dashboard alive and serves them over HTTP while a poller keeps scores fresh.
type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	sessions      Sessions
	cache         *store.MemoryStore
	dashboard     *views.Dashboard
	httpServer    httpServer
	metricsServer httpServer
	poller        Poller
	metricsStop   func(context.Context) error
}

// New constructs a server talking to the configured backend.
func New(cfg config.Config, logger *slog.Logger) *Server {
	return newServerWithMetrics(cfg, logger, nil)
}

func newServerWithMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) *Server {
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	client := api.NewClient(api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  logger,
		Metrics: recorder,
	})
	reader := api.NewRetryingReader(client, logger, recorder, cfg.API.RetryAttempts, cfg.API.RetryBackoff)
	sessions := session.New(client, session.NewFileStore(cfg.Session.Path), session.Options{
		PreserveOnNetworkError: cfg.Session.PreserveOnNetworkError,
		Logger:                 logger,
		Metrics:                recorder,
	})

	srv := newServerWithBackend(cfg, logger, recorder, reader, client, sessions)
	srv.metricsServer = metricsSrv
	srv.metricsStop = metricsShutdown
	return srv
}

// newServerWithBackend wires views, cache, poller and routes over the given
// backend. Tests inject stubs here.
func newServerWithBackend(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder, reader views.Reader, remote reconcile.Remote, sessions Sessions) *Server {
	cache := store.NewMemoryStore(nil)
	cached := store.NewCachedReader(reader, cache, cfg.Server.PollInterval)
	dashboard := views.NewDashboard(cached, remote, sessions, views.DashboardOptions{
		Logger:        logger,
		Metrics:       recorder,
		Location:      timeutil.ResolveLocation(cfg.Timezone),
		ToggleTimeout: cfg.API.Timeout,
	})
	sessions.OnChange(dashboard.SessionChanged)
	// The poller reads past the cache so every cycle reaches the backend.
	plr := poller.New(reader, dashboard.ActiveWeek, logger, recorder, cfg.Server.PollInterval, cache, dashboard)
	httpSrv := buildHTTPServer(cfg, sessions, cached, dashboard, logger, recorder, plr)

	return &Server{
		cfg:        cfg,
		logger:     logger,
		metrics:    recorder,
		sessions:   sessions,
		cache:      cache,
		dashboard:  dashboard,
		httpServer: httpSrv,
		poller:     plr,
	}
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, sessions Sessions, httpSrv httpServer, plr Poller) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		sessions:   sessions,
		httpServer: httpSrv,
		poller:     plr,
	}
}

func buildHTTPServer(cfg config.Config, sessions Sessions, reader views.Reader, dashboard *views.Dashboard, logger *slog.Logger, recorder *metrics.Recorder, plr Poller) httpServer {
	var statusFn func() poller.Status
	if plr != nil {
		statusFn = plr.Status
	}

	handler := handlers.NewHandler(sessions, reader, dashboard, logger, statusFn)
	router := httpserver.NewRouter(handler)
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	wrapped := withCORS(cfg.Server.CORSOrigins, middleware.LoggingMiddleware(logger, recorder, router))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// withCORS lets a browser front end on one of origins call the service.
// With no origins configured the handler is returned unchanged.
func withCORS(origins []string, next http.Handler) http.Handler {
	if len(origins) == 0 {
		return next
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", requestutil.HeaderRequestID},
		ExposedHeaders: []string{requestutil.HeaderRequestID},
	})
	return c.Handler(next)
}

// Run restores any saved session, starts the poller and HTTP server, then
// waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.bootstrap(ctx)
	s.poller.Start(ctx)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

// bootstrap revalidates the saved credential in the background. Requests
// arriving meanwhile see the session as restoring.
func (s *Server) bootstrap(ctx context.Context) {
	if s.sessions == nil {
		return
	}
	go func() {
		sess := s.sessions.Bootstrap(ctx)
		logging.Info(s.logger, "session bootstrap finished", "state", sess.State.String())
	}()
}

func (s *Server) startServer(stop context.CancelFunc) {
	logging.Info(s.logger, "http server starting", slog.String("addr", s.httpServer.Addr()))
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	logging.Info(s.logger, "metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.poller.Stop(shutdownCtx); err != nil {
		logging.Error(s.logger, "failed to stop poller", err)
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	// Let pick writes already sent settle so their rollbacks or confirmations
	// are not lost mid-flight.
	if s.dashboard != nil {
		if engine := s.dashboard.Engine(); engine != nil {
			if err := engine.Wait(shutdownCtx); err != nil {
				logging.Warn(s.logger, "pending picks did not settle before shutdown", "outstanding", engine.Outstanding())
			}
		}
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "err", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:    ":" + recCfg.Port,
				Handler: handler,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		logging.Info(logger, "starting "+name+" server", slog.String("addr", srv.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
