// Package web serves the dashboard: a JSON API over the orchestrator, file
// previews and archive downloads, the activity log (polled or streamed over a
// websocket) and Prometheus metrics.
//
// Import rules:
//   - CAN import: internal/crew, internal/archive, internal/present, internal/logging,
//     internal/domain, internal/errors, internal/config
//   - MUST NOT import: internal/cli, internal/tui
package web

import (
	"context"
	"embed"
	stderrors "errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/constants"
	"github.com/lunacore/luna/internal/crew"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/logging"
)

//go:embed static/index.html
var staticFS embed.FS

// Generator is the part of the orchestrator the server drives.
type Generator interface {
	GenerateProject(ctx context.Context, req crew.Request) (*domain.Result, error)
	TestAgents(ctx context.Context) domain.HealthReport
	Route(brief string) domain.RoutingDecision
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithIDGenerator replaces the UUID run ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

// Server is the dashboard HTTP server.
type Server struct {
	cfg      config.ServerConfig
	gen      Generator
	activity *logging.ActivityLog
	runs     *RunStore
	sem      *semaphore.Weighted
	gatherer prometheus.Gatherer
	newID    func() string
	logger   zerolog.Logger

	// baseCtx outlives requests; background runs derive from it.
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a server. activity may be nil, in which case the log endpoints
// return nothing.
func New(cfg config.ServerConfig, gen Generator, activity *logging.ActivityLog, logger zerolog.Logger, opts ...Option) (*Server, error) {
	if gen == nil {
		return nil, errors.Wrap(errors.ErrInvalidArgument, "generator is required")
	}
	if cfg.MaxConcurrentRuns <= 0 {
		cfg.MaxConcurrentRuns = constants.DefaultMaxConcurrentRuns
	}
	if cfg.RunStoreSize <= 0 {
		cfg.RunStoreSize = constants.DefaultRunStoreSize
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = constants.DefaultShutdownTimeout
	}
	if activity == nil {
		activity = logging.NewActivityLog(constants.DefaultActivityCapacity)
	}

	runs, err := NewRunStore(cfg.RunStoreSize)
	if err != nil {
		return nil, err
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		gen:      gen,
		activity: activity,
		runs:     runs,
		sem:      semaphore.NewWeighted(int64(cfg.MaxConcurrentRuns)),
		gatherer: prometheus.DefaultGatherer,
		newID:    uuid.NewString,
		logger:   logging.WithCategory(logger, logging.CategoryServer),
		baseCtx:  logger.WithContext(baseCtx),
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws/logs", s.handleLogStream)

	r.Route("/api", func(r chi.Router) {
		r.Get("/templates", s.handleTemplates)
		r.Get("/route", s.handleRoute)
		r.Post("/health", s.handleHealth)
		r.Get("/logs", s.handleLogs)

		r.Get("/runs", s.handleListRuns)
		r.Post("/runs", s.handleCreateRun)
		r.Route("/runs/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetRun)
			r.Get("/files/*", s.handleFile)
			r.Get("/archive", s.handleArchive)
			r.Get("/deploy", s.handleDeploy)
		})
	})
	return r
}

// requestLogger logs every request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("http request")
	})
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully and waits for in-flight runs.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = s.cfg.Addr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.baseCtx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Success(s.logger.Info()).Str("addr", ln.Addr().String()).Msgf("Dashboard listening on http://%s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info().Msg("Shutting down dashboard")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.Close()
		return err
	})
	return g.Wait()
}

// Close cancels in-flight runs and waits for them to return.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		writeInternalError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
