// Package web serves the single-page chat: the question form, the rendered
// history, and the streaming answer endpoint.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/tailored-agentic-units/gichat/core/config"
	"github.com/tailored-agentic-units/gichat/kernel"
	"github.com/tailored-agentic-units/gichat/session"
)

// CookieName holds the browser session identifier.
const CookieName = "gichat_session"

//go:embed templates/*.html static/*
var assets embed.FS

// Server wires the relay and the session manager to HTTP.
type Server struct {
	kernel   *kernel.Kernel
	sessions *session.Manager
	limiter  *limiter
	page     *template.Template
	logger   *slog.Logger
	cfg      config.ServerConfig

	// One-shot failure notices shown on the next page load, by session ID.
	flash sync.Map
}

// New creates a Server. A nil logger uses slog.Default.
func New(k *kernel.Kernel, sessions *session.Manager, cfg config.ServerConfig, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	page, err := template.ParseFS(assets, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	return &Server{
		kernel:   k,
		sessions: sessions,
		limiter:  newLimiter(cfg.RatePerMinute, cfg.RateBurst),
		page:     page,
		logger:   logger,
		cfg:      cfg,
	}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	static, _ := fs.Sub(assets, "static")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("POST /clear", s.handleClear)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /logo", s.handleLogo)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	return mux
}

// Run serves until ctx is done, then shuts down gracefully. Idle sessions
// and rate-limit buckets are swept while the server runs.
func (s *Server) Run(ctx context.Context) error {
	grace, err := s.cfg.ShutdownGrace()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sessions.Run(ctx)
	go s.pruneLimiter(ctx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
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

	s.logger.Info("shutting down", "grace", grace)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			s.limiter.prune(t.Add(-10 * time.Minute))
		}
	}
}

// session returns the caller's Session, issuing a new cookie when the
// request carries none or an expired one.
func (s *Server) session(w http.ResponseWriter, r *http.Request) session.Session {
	var id string
	if c, err := r.Cookie(CookieName); err == nil {
		id = c.Value
	}

	sess, created := s.sessions.Resolve(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    sess.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}
