// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/naughtygopher/proberesponder"
	proberespHTTP "github.com/naughtygopher/proberesponder/extensions/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/item-api/internal/config"
	"github.com/vyrodovalexey/item-api/internal/handler"
	"github.com/vyrodovalexey/item-api/internal/middleware"
	"github.com/vyrodovalexey/item-api/internal/store"
)

// Server represents the HTTP server.
type Server struct {
	httpServer  *http.Server
	probeServer *http.Server
	probes      *proberesponder.ProbeResponder
	router      *mux.Router
	handler     http.Handler
	config      *config.Config
	logger      *zap.Logger
	wsHandler   *handler.WebSocketHandler
}

// New creates a new Server instance.
func New(cfg *config.Config, logger *zap.Logger, itemStore store.Store) *Server {
	router := mux.NewRouter()

	s := &Server{
		router: router,
		config: cfg,
		logger: logger,
		probes: proberesponder.New(),
	}

	s.setupMiddleware()
	s.setupRoutes(itemStore)
	s.setupHTTPServer()
	s.setupProbeServer()

	return s
}

// setupMiddleware builds the middleware chain wrapped around the whole
// router, so unmatched paths and rejected methods pass through it too.
func (s *Server) setupMiddleware() {
	allowedMethods := []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowedHeaders := []string{
		"Content-Type",
		middleware.RequestIDHeader,
	}

	// First listed = outermost.
	stack := []middleware.Middleware{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
	}
	if s.config.MetricsEnabled {
		stack = append(stack, middleware.Metrics())
	}
	stack = append(stack,
		middleware.Logging(s.logger),
		middleware.CORS(s.config.CORSAllowedOrigins, allowedMethods, allowedHeaders),
	)

	s.router.Use(mux.MiddlewareFunc(middleware.RouteTemplate()))
	s.handler = middleware.Chain(stack...)(s.router)
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes(itemStore store.Store) {
	s.wsHandler = handler.NewWebSocketHandler(s.logger)
	s.wsHandler.RegisterRoutes(s.router)

	restHandler := handler.NewRESTHandler(itemStore, s.wsHandler, s.logger)
	restHandler.RegisterRoutes(s.router)

	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
}

// setupHTTPServer configures the HTTP server.
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}
}

// setupProbeServer configures the liveness/readiness listener.
func (s *Server) setupProbeServer() {
	s.probes.AppendHealthResponse("app->version", handler.Version)
	if !s.config.ProbeEnabled() {
		return
	}
	s.probeServer = proberespHTTP.Server(s.probes, "", uint16(s.config.ProbePort)) //nolint:gosec // validated to 1..65535
}

// Start binds the API listener and serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
		zap.Bool("probe_enabled", s.config.ProbeEnabled()),
	)

	s.startProbeServer()
	s.probes.SetNotLive(false)

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server listen: %w", err)
	}

	return s.Serve(listener)
}

// Serve accepts connections on listener and marks the service ready.
func (s *Server) Serve(listener net.Listener) error {
	s.probes.SetNotStarted(false)
	s.probes.SetNotReady(false)

	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server serve: %w", err)
	}

	return nil
}

func (s *Server) startProbeServer() {
	if s.probeServer == nil {
		return
	}

	go func() {
		s.logger.Info("starting probe server", zap.Int("port", s.config.ProbePort))
		if err := s.probeServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("probe server failed", zap.Error(err))
		}
	}()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	s.probes.SetNotReady(true)
	s.probes.AppendHealthResponse("shutdown", fmt.Sprintf("initiated %s", time.Now().Format(time.RFC3339)))

	if s.wsHandler != nil {
		s.wsHandler.CloseAllConnections()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Probes stay reachable until the API has drained.
	if s.probeServer != nil {
		if err := s.probeServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("probe server shutdown: %w", err)
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Router returns the server's router for testing purposes.
func (s *Server) Router() *mux.Router {
	return s.router
}
