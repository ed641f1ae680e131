// Package server exposes the compositor over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"shorts/internal/clipcache"
	"shorts/internal/metrics"
	"shorts/internal/pipeline"
)

const shutdownTimeout = 10 * time.Second

// maxBodyBytes caps request bodies; transcripts and timings are the largest
// fields.
const maxBodyBytes = 4 << 20

// Options configures the HTTP layer.
type Options struct {
	// RenderOnMerge encodes the plan during POST /merge_clips unless the
	// request sets ?render=false.
	RenderOnMerge bool
}

// Server holds the HTTP handlers.
type Server struct {
	pipeline *pipeline.Pipeline
	cache    clipcache.Cache
	metrics  *metrics.Metrics
	log      *slog.Logger
	opts     Options
}

// New returns a Server. Metrics may be nil to disable metric recording.
func New(p *pipeline.Pipeline, cache clipcache.Cache, m *metrics.Metrics, log *slog.Logger, opts Options) *Server {
	if log == nil {
		log = slog.Default()
	}
	if cache == nil {
		cache = clipcache.NewMemory()
	}
	return &Server{pipeline: p, cache: cache, metrics: m, log: log, opts: opts}
}

// Router builds the chi router with middleware and routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	if s.metrics != nil {
		r.Use(metrics.RequestMiddleware(s.metrics))
	}
	r.Use(middleware.Recoverer)

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Get("/healthz", s.Health)
	r.Post("/merge_clips", s.MergeClips)
	r.Post("/timings", s.Timings)
	r.Route("/clips/{keyword}", func(r chi.Router) {
		r.Get("/", s.GetClips)
		r.Put("/", s.PutClips)
	})
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// connections.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
