// Package server is the HTTP shell of the dashboard: an HTML page, the chart
// pages it embeds, a JSON API and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"

	"bikeshare-dashboard/services"
	"bikeshare-dashboard/utils"
)

const shutdownTimeout = 10 * time.Second

// Server serves one DataView over HTTP.
type Server struct {
	view    *services.DataView
	logger  *utils.Logger
	metrics *Metrics
	router  chi.Router
}

// New wires the routes. registry receives the server's collectors.
func New(view *services.DataView, logger *utils.Logger, registry *prometheus.Registry) (*Server, error) {
	metrics, err := NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("server: register metrics: %w", err)
	}
	s := &Server{view: view, logger: logger, metrics: metrics}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	r.Get("/", s.handlePage)
	r.Get("/charts", s.handleCharts)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/bounds", s.handleBounds)
		r.Get("/records", s.handleRecords)
		r.Get("/total", s.handleTotal)
		r.Get("/day", s.handleDay)
		r.Get("/views/{view}", s.handleView)
		r.Get("/correlation", s.handleCorrelation)
		r.Get("/groups/{key}", s.handleGroups)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[server] Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("[server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("[server] %s %s -> %d (%v)", r.Method, r.URL.RequestURI(), ww.Status(), time.Since(start))
	})
}
