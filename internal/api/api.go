package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/api/middleware"
	"github.com/makebyjordan/chatbot-crm/internal/database"
	"github.com/makebyjordan/chatbot-crm/internal/queue"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultShutdownTimeout = 15 * time.Second

type RouteRegistrar func(mux *http.ServeMux, s *APIServer)

// Options carries the per-binary settings of an APIServer. Zero values are
// usable: no CORS origins, the default Prometheus registry and slog.Default.
type Options struct {
	AllowedOrigins  []string
	Registerer      prometheus.Registerer
	Logger          *slog.Logger
	ShutdownTimeout time.Duration
}

type APIServer struct {
	listenAddr          string
	requestQueueManager *queue.RequestQueueManager
	db                  *database.Database
	routeRegistrars     []RouteRegistrar
	metrics             *metrics
	cors                middleware.CORSConfig
	logger              *slog.Logger
	shutdownTimeout     time.Duration
}

func NewAPIServer(listenAddr string, rqm *queue.RequestQueueManager, db *database.Database, opts Options, registrars ...RouteRegistrar) *APIServer {
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	return &APIServer{
		listenAddr:          listenAddr,
		requestQueueManager: rqm,
		db:                  db,
		routeRegistrars:     registrars,
		metrics:             newMetrics(reg, listenAddr, rqm),
		cors: middleware.CORSConfig{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "OPTIONS", "DELETE"},
			AllowedHeaders:   []string{"Content-Type", "X-Requested-With", "Authorization", "X-Webhook-Signature", "X-Request-ID"},
			AllowCredentials: true,
		},
		logger:          logger.With("component", "api", "listen_addr", listenAddr),
		shutdownTimeout: timeout,
	}
}

// Handler builds the routed and instrumented handler without listening.
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()

	for _, reg := range s.routeRegistrars {
		reg(mux, s)
	}

	mux.Handle("/metrics", s.metrics.metricsHandler())

	return s.metrics.instrument(mux)
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests and the
// request queue before returning.
func (s *APIServer) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx)
}

// Serve is Run with a caller-owned lifetime.
func (s *APIServer) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		// Handlers may still be enqueueing; the queue stays open.
		s.logger.Error("graceful shutdown timed out", "error", err)
		return err
	}
	if s.requestQueueManager != nil {
		s.requestQueueManager.Shutdown()
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *APIServer) Database() *database.Database {
	return s.db
}

func (s *APIServer) Logger() *slog.Logger {
	return s.logger
}
