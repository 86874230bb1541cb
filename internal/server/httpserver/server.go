// Package httpserver exposes the token lifecycle over HTTP/JSON.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// AuthService is the part of services.AuthService the handlers use.
type AuthService interface {
	Login(ctx context.Context, login, password string) (*services.TokenPair, error)
	Rotate(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

type UserService interface {
	Create(ctx context.Context, in services.NewUser) (*models.User, error)
}

type Gate interface {
	Authorize(header string, allowed auth.Roles) (*auth.AccessClaims, error)
}

const shutdownTimeout = 10 * time.Second

type HTTPServer struct {
	address string
	timeout time.Duration
	auth    AuthService
	users   UserService
	gate    Gate
	logger  logging.Logger
	metrics *metrics.Metrics
}

func NewHTTPServer(addr string, requestTimeout time.Duration, l logging.Logger,
	as AuthService, us UserService, g Gate, m *metrics.Metrics) *HTTPServer {
	if l == nil {
		l = logging.Nop()
	}
	return &HTTPServer{
		address: addr,
		timeout: requestTimeout,
		auth:    as,
		users:   us,
		gate:    g,
		logger:  l.With("module", "http_server"),
		metrics: m,
	}
}

// Handler builds the chi router with all middleware and routes.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverer, requestID, s.accessLog, timeout(s.timeout))

	r.Get("/healthcheck", s.healthcheck)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Post("/login", s.login)
	r.Post("/refresh", s.refresh)
	r.Post("/logout", s.logout)

	r.With(s.requireRoles(auth.RoleAdmin)).Post("/users/new", s.createUser)
	r.With(s.requireRoles(auth.RoleAdmin, auth.RoleUser)).Get("/me", s.me)

	return r
}

// Run serves until ctx is canceled and then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
		errCh <- srv.Serve(listen)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
