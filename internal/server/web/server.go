// Package web is the HTTP surface of the portfolio: the public pages, the
// admin API behind the session gate and the upload relay endpoint.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/auth"
	"github.com/dmitrijs2005/portfolio/internal/server/httpx"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Authenticator checks login credentials.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
}

type SiteLoader interface {
	Load(ctx context.Context) (*models.Site, error)
}

// Pinger reports database reachability for the readiness check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ContentAPI is the set of operations the admin API exposes per content type.
type ContentAPI[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, id string, item *T) (*T, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, ids []string) error
}

type Content struct {
	Heroes       ContentAPI[models.Hero]
	Projects     ContentAPI[models.Project]
	Experiences  ContentAPI[models.Experience]
	Educations   ContentAPI[models.Education]
	Services     ContentAPI[models.Service]
	Testimonials ContentAPI[models.Testimonial]
	TechStack    ContentAPI[models.TechItem]
}

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Users    Authenticator
	Site     SiteLoader
	Content  Content
	Sessions *auth.SessionManager
	Uploads  http.Handler
	DB       Pinger
	Logger   logging.Logger

	// LoginRatePerMinute bounds login attempts per client address.
	LoginRatePerMinute int
	TrustProxyHeaders  bool
}

type Server struct {
	address         string
	shutdownTimeout time.Duration
	deps            Deps
	logger          logging.Logger
	limiter         *loginLimiter
	pages           *pages
	handler         http.Handler
}

func NewServer(address string, shutdownTimeout time.Duration, deps Deps) (*Server, error) {
	limiter, err := newLoginLimiter(deps.LoginRatePerMinute, loginLimiterSize)
	if err != nil {
		return nil, fmt.Errorf("login limiter: %w", err)
	}
	p, err := loadPages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		address:         address,
		shutdownTimeout: shutdownTimeout,
		deps:            deps,
		logger:          deps.Logger.With("module", "http_server"),
		limiter:         limiter,
		pages:           p,
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.withRequestLog, s.withMetrics, s.withRecover)

	r.Get("/", s.handleIndex)
	r.Get("/api/site", s.handleSite)
	r.Get("/login", s.handleLoginPage)
	r.HandleFunc("/api/login", s.handleLogin)
	r.Post("/api/logout", s.handleLogout)
	r.Get("/logout", s.handleLogoutRedirect)
	r.Get("/health/live", s.handleLive)
	r.Get("/health/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.With(s.requireSession).Get("/api/me", s.handleMe)

	r.Group(func(r chi.Router) {
		r.Use(s.gate(true))
		r.Get("/admin", s.handleAdminPage)
		r.Route("/api/admin", func(r chi.Router) {
			c := s.deps.Content
			mountContent(r, "heroes", c.Heroes, s.logger)
			mountContent(r, "projects", c.Projects, s.logger)
			mountContent(r, "experiences", c.Experiences, s.logger)
			mountContent(r, "educations", c.Educations, s.logger)
			mountContent(r, "services", c.Services, s.logger)
			mountContent(r, "testimonials", c.Testimonials, s.logger)
			mountContent(r, "tech-stack", c.TechStack, s.logger)
			r.Handle("/uploads", s.deps.Uploads)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, http.StatusNotFound, "Not found")
	})
	return r
}

// Run serves until ctx is canceled, then shuts down gracefully within the
// configured timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
