package web

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/server/httpx"
)

func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	site, err := s.deps.Site.Load(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "site load failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httpx.JSON(w, http.StatusOK, site)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	site, err := s.deps.Site.Load(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "site load failed", "error", err)
		http.Error(w, "Something went wrong. Please try again later.", http.StatusInternalServerError)
		return
	}
	s.render(w, r, "index.html", indexData{Site: site, Admin: isAdmin(s, r)})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if isAdmin(s, r) {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}
	s.render(w, r, "login.html", nil)
}

func (s *Server) handleAdminPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "admin.html", adminData{Email: ClaimsFromContext(r.Context()).Email, Upload: newUploadLimits()})
}

func isAdmin(s *Server, r *http.Request) bool {
	c := s.deps.Sessions.Verify(r)
	return c != nil && c.IsAdmin
}

// render executes the named page into a buffer first so a template error
// still produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.execute(&buf, name, data); err != nil {
		s.logger.Error(r.Context(), "template failed", "page", name, "error", err)
		http.Error(w, "Something went wrong. Please try again later.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports 503 while the database is unreachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.deps.DB.PingContext(ctx); err != nil {
		s.logger.Warn(r.Context(), "readiness check failed", "error", err)
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
