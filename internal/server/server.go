// Package server wires the HTTP API of the reference backend: routes,
// middleware chain and lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/iudanet/cropaid/internal/server/handlers"
	"github.com/iudanet/cropaid/internal/server/middleware"
	"github.com/iudanet/cropaid/internal/server/storage/sqlite"
)

const (
	shutdownTimeout  = 10 * time.Second
	minPurgeInterval = time.Minute
	maxPurgeInterval = time.Hour
)

// Options configures the server
type Options struct {
	Addr       string
	Version    string
	JWTSecret  []byte
	TokenTTL   time.Duration
	RefreshTTL time.Duration
	// RateLimit число попыток входа в минуту с одного IP, 0 без ограничения
	RateLimit int
}

// Server is the HTTP backend
type Server struct {
	logger  *slog.Logger
	store   *sqlite.Storage
	limiter *middleware.RateLimiter
	handler http.Handler
	opts    Options
}

// New builds the server and its routes
func New(opts Options, store *sqlite.Storage, logger *slog.Logger) *Server {
	s := &Server{
		logger: logger,
		store:  store,
		opts:   opts,
	}
	if opts.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(opts.RateLimit, time.Minute, logger)
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root handler with the full middleware chain
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	jwtConfig := handlers.JWTConfig{
		Secret:          s.opts.JWTSecret,
		AccessTokenTTL:  s.opts.TokenTTL,
		RefreshTokenTTL: s.opts.RefreshTTL,
	}

	health := handlers.NewHealthHandler(s.logger, s.store, s.opts.Version)
	auth := handlers.NewAuthHandler(s.logger, s.store, s.store, jwtConfig)
	community := handlers.NewCommunityHandler(s.logger, s.store)
	calendar := handlers.NewCalendarHandler(s.logger, s.store)
	media := handlers.NewMediaHandler(s.logger, s.store)

	protected := middleware.AuthMiddleware(s.logger, jwtConfig)
	login := http.Handler(http.HandlerFunc(auth.Login))
	if s.limiter != nil {
		login = middleware.RateLimitMiddleware(s.limiter)(login)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", health.Health)

	mux.Handle("POST /api/v1/auth/login", login)
	mux.HandleFunc("POST /api/v1/auth/refresh", auth.Refresh)
	mux.Handle("POST /api/v1/auth/logout", protected(http.HandlerFunc(auth.Logout)))

	// Лента читается без авторизации (гостевой режим клиента)
	mux.HandleFunc("GET /api/v1/community", community.ListPosts)
	mux.Handle("POST /api/v1/community", protected(http.HandlerFunc(community.CreatePost)))
	mux.Handle("PUT /api/v1/community/{id}/like", protected(http.HandlerFunc(community.LikePost)))
	mux.Handle("POST /api/v1/community/{id}/comment", protected(http.HandlerFunc(community.CommentPost)))

	mux.Handle("GET /api/v1/calendar", protected(http.HandlerFunc(calendar.ListTasks)))
	mux.Handle("POST /api/v1/calendar", protected(http.HandlerFunc(calendar.CreateTask)))
	mux.Handle("PUT /api/v1/calendar/{id}/toggle", protected(http.HandlerFunc(calendar.ToggleTask)))
	mux.Handle("DELETE /api/v1/calendar/{id}", protected(http.HandlerFunc(calendar.DeleteTask)))

	mux.Handle("POST /api/v1/media", protected(http.HandlerFunc(media.Upload)))

	// Порядок: request id -> логирование -> recovery -> маршруты
	var h http.Handler = mux
	h = middleware.RecoveryMiddleware(s.logger)(h)
	h = middleware.LoggingWithSkip(s.logger, []string{"/api/v1/health"})(h)
	h = middleware.RequestIDMiddleware(h)
	return h
}

// Run serves on ln until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go s.purgeSessions(cleanupCtx, purgeInterval(s.opts.RefreshTTL))

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server started", "addr", ln.Addr().String(), "version", s.opts.Version)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.stop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.stop()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// ListenAndServe listens on Options.Addr and calls Run
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Run(ctx, ln)
}

func (s *Server) stop() {
	if s.limiter != nil {
		s.limiter.Stop()
		s.limiter = nil
	}
}

// purgeInterval returns how often expired sessions are removed: a
// twenty-fourth of the refresh TTL, clamped to [minPurgeInterval, maxPurgeInterval].
func purgeInterval(refreshTTL time.Duration) time.Duration {
	return min(max(refreshTTL/24, minPurgeInterval), maxPurgeInterval)
}

// purgeSessions периодически удаляет истекшие сеансы
func (s *Server) purgeSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := s.store.PurgeExpiredSessions(ctx, now.UTC())
			if err != nil {
				s.logger.Warn("Failed to purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info("Expired sessions purged", "count", n)
			}
		}
	}
}
