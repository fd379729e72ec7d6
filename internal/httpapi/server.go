// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/samber/oops"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/observability"
	"github.com/authgate/authgate/pkg/errutil"
)

// AuthService is the part of the auth core the HTTP layer calls.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, identity *auth.Identity, err error)
	Register(ctx context.Context, email, password, group string) (token string, identity *auth.Identity, err error)
}

// Config holds the HTTP server settings.
type Config struct {
	Addr         string
	CookieMaxAge time.Duration
}

// Server serves the authentication API.
type Server struct {
	addr         string
	cookieMaxAge time.Duration
	service      AuthService
	gate         *Gate
	metrics      *observability.Metrics
	dbReady      observability.ReadinessChecker
	logger       *slog.Logger

	router     *mux.Router
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates the API server. metrics and dbReady may be nil.
func NewServer(cfg Config, service AuthService, gate *Gate, metrics *observability.Metrics, dbReady observability.ReadinessChecker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		addr:         cfg.Addr,
		cookieMaxAge: cfg.CookieMaxAge,
		service:      service,
		gate:         gate,
		metrics:      metrics,
		dbReady:      dbReady,
		logger:       logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)

	public := r.PathPrefix("/authentication").Subrouter()
	public.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	public.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	protected := r.PathPrefix("/authentication").Subrouter()
	protected.Use(s.gate.Middleware)
	protected.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)
	protected.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet)

	return r
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving the API. It returns an error channel that
// receives any serve error after startup; the channel is closed on
// graceful stop.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown api server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on, or "" if not
// running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) recordLogin(err error) {
	if s.metrics == nil {
		return
	}
	status := "success"
	switch {
	case err == nil:
	case errutil.Code(err) == auth.CodeInvalidCredentials:
		status = "invalid_credentials"
	default:
		status = "error"
	}
	s.metrics.LoginsTotal.WithLabelValues(status).Inc()
}

func (s *Server) recordRegistration(err error) {
	if s.metrics == nil {
		return
	}
	status := "success"
	switch {
	case err == nil:
	case errutil.Code(err) == auth.CodeEmailTaken:
		status = "conflict"
	default:
		status = "error"
	}
	s.metrics.RegistrationsTotal.WithLabelValues(status).Inc()
}
