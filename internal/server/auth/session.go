package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/common"
)

// SessionLifetime is both the token validity and the cookie Max-Age.
const SessionLifetime = 24 * time.Hour

// SessionManager issues, verifies and clears the session cookie.
type SessionManager struct {
	secret     []byte
	lifetime   time.Duration
	trustProxy bool
}

func NewSessionManager(secret []byte, trustProxy bool) *SessionManager {
	return &SessionManager{secret: secret, lifetime: SessionLifetime, trustProxy: trustProxy}
}

// Issue signs a token for the user and attaches it to w as the session cookie.
func (sm *SessionManager) Issue(w http.ResponseWriter, r *http.Request, userID, email string, isAdmin bool) error {
	token, err := GenerateToken(userID, email, isAdmin, sm.secret, sm.lifetime)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sm.lifetime / time.Second),
		HttpOnly: true,
		Secure:   sm.isSecure(r),
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// Verify returns the claims carried by the request's session cookie, or nil
// when the cookie is absent, malformed, expired or signed with another key.
func (sm *SessionManager) Verify(r *http.Request) *Claims {
	cookie, err := r.Cookie(common.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := ParseToken(cookie.Value, sm.secret)
	if err != nil {
		return nil
	}
	return claims
}

// Clear deletes the session cookie. Tokens are not revoked server-side.
func (sm *SessionManager) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.isSecure(r),
		SameSite: http.SameSiteStrictMode,
	})
}

func (sm *SessionManager) isSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return sm.trustProxy && strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
