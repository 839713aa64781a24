package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/portfolio/internal/server/auth"
	"github.com/dmitrijs2005/portfolio/internal/server/httpx"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

type loginResponse struct {
	Message string   `json:"message"`
	User    userView `json:"user"`
}

// maxLoginBody caps the login request body.
const maxLoginBody = 4 << 10

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}

	if !s.limiter.Allow(clientIP(r, s.deps.TrustProxyHeaders)) {
		w.Header().Set("Retry-After", "60")
		httpx.Error(w, http.StatusTooManyRequests, "Too many login attempts")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBody)).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpx.Error(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := s.deps.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var authErr *auth.Error
		if errors.As(err, &authErr) {
			s.logger.Info(r.Context(), "login rejected", "reason", authErr.Kind.String())
			httpx.Error(w, http.StatusBadRequest, authErr.Error())
			return
		}
		s.logger.Error(r.Context(), "login failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := s.deps.Sessions.Issue(w, r, user.ID, user.Email, user.IsAdmin); err != nil {
		s.logger.Error(r.Context(), "token signing failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logger.Info(r.Context(), "user logged in", "user_id", user.ID)
	httpx.JSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		User:    userView{ID: user.ID, Email: user.Email, IsAdmin: user.IsAdmin},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.deps.Sessions.Clear(w, r)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) handleLogoutRedirect(w http.ResponseWriter, r *http.Request) {
	s.deps.Sessions.Clear(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	c := ClaimsFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, userView{ID: c.UserID(), Email: c.Email, IsAdmin: c.IsAdmin})
}
