package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lineagescope/pkg/interact"
	"github.com/matzehuels/lineagescope/pkg/pipeline"
	"github.com/matzehuels/lineagescope/pkg/session"
)

// maxBodyBytes caps request bodies, including uploaded reports.
const maxBodyBytes = 32 << 20

// cleanupInterval is how often expired sessions are swept.
const cleanupInterval = 10 * time.Minute

// Config holds the dependencies of a Server.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Store holds sessions. Defaults to a MemoryStore.
	Store session.Store

	// Runner renders graph artifacts. Defaults to an uncached runner.
	Runner *pipeline.Runner

	// Controller is the base configuration for per-request controllers.
	// Zero means interact.DefaultConfig(). Its Logger is replaced by Logger.
	Controller interact.Config

	// SessionTTL is how long a session lives after its last update.
	SessionTTL time.Duration

	Logger *log.Logger
}

// Server is the HTTP adapter over sessions and the interaction controller.
type Server struct {
	cfg    Config
	store  session.Store
	runner *pipeline.Runner
	logger *log.Logger
	locks  *keyedMutex
	router chi.Router
}

// New creates a server and registers its routes.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Store == nil {
		cfg.Store = session.NewMemoryStore()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Controller == (interact.Config{}) {
		cfg.Controller = interact.DefaultConfig()
	}
	cfg.Controller.Logger = cfg.Logger

	s := &Server{
		cfg:    cfg,
		store:  cfg.Store,
		runner: cfg.Runner,
		logger: cfg.Logger,
		locks:  newKeyedMutex(),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.requestLogger,
	)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDelete)
			r.Get("/graph", s.handleGraph)
			r.Get("/graph.{format}", s.handleRender)
			r.Post("/nodes/{node}/click", s.handleClick)
			r.Put("/nodes/{node}/position", s.handlePosition)
			r.Get("/nodes/{node}/detail", s.handleDetail)
			r.Post("/positions/reset", s.handleReset)
			r.Put("/view", s.handleView)
			r.Put("/filter", s.handleFilter)
		})
	})
	return r
}

// Serve listens on the configured address and blocks until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting server", "addr", ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.router,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-egctx.Done():
				return nil
			case <-ticker.C:
				if err := s.store.Cleanup(egctx); err != nil {
					s.logger.Warn("session cleanup failed", "error", err)
				}
			}
		}
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
