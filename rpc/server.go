package rpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"assembly/core"
	"assembly/core/events"
	"assembly/observability"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// Server exposes the read-only query API over HTTP.
type Server struct {
	exec    *core.Executor
	events  *events.Log
	logger  *slog.Logger
	limiter *rateLimiter
	handler http.Handler
}

// Option customises a Server.
type Option func(*Server)

// WithRateLimit throttles the /v1 routes per client address.
func WithRateLimit(limit RateLimit) Option {
	return func(s *Server) { s.limiter = newRateLimiter(limit) }
}

// NewServer builds a server over exec. log may be nil, in which case the
// events route is not mounted.
func NewServer(exec *core.Executor, log *events.Log, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{exec: exec, events: log, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = otelhttp.NewHandler(s.buildRouter(), "assembly-rpc")
	return s
}

// Handler exposes the configured HTTP router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(api chi.Router) {
		if s.limiter != nil {
			api.Use(s.limiter.middleware)
		}
		api.Route("/distribution", func(dr chi.Router) {
			dr.Use(s.observe("distribution"))
			dr.Get("/program", s.getProgram)
			dr.Get("/distributors", s.listDistributors)
			dr.Get("/distributors/{address}", s.getDistributor)
			dr.Get("/distributors/{address}/grants", s.listGrants)
			dr.Get("/distributors/{address}/grants/{recipient}", s.getGrantFor)
			dr.Get("/grants/{address}", s.getGrant)
		})
		api.Route("/token", func(tr chi.Router) {
			tr.Use(s.observe("token"))
			tr.Get("/accounts/{address}", s.getTokenAccount)
			tr.Get("/mints/{address}", s.getMint)
			tr.Get("/associated/{owner}/{mint}", s.getAssociatedAddress)
		})
		if s.events != nil {
			api.With(s.observe("events")).Get("/events", s.listEvents)
		}
	})
	return r
}

// observe records request metrics against the matched route pattern.
func (s *Server) observe(module string) func(http.Handler) http.Handler {
	metrics := observability.ModuleMetrics()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(recorder, r)
			status := recorder.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := chi.RouteContext(r.Context()).RoutePattern()
			metrics.Observe(module, route, status, time.Since(start))
			s.logger.DebugContext(r.Context(), "query served",
				slog.String("route", route),
				slog.Int("status", status),
				slog.String("request_id", chimw.GetReqID(r.Context())))
		})
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("query API listening", slog.String("address", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
