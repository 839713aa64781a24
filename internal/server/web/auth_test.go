package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginReq(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t, 100)

	rec := env.do(loginReq(`{"email":"admin@example.com","password":"correct horse"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Login successful", resp.Message)
	assert.Equal(t, userView{ID: "u-admin", Email: "admin@example.com", IsAdmin: true}, resp.User)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, common.SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// the issued cookie opens the admin area
	admin := env.do(httptest.NewRequest(http.MethodGet, "/admin", nil), cookies[0])
	assert.Equal(t, http.StatusOK, admin.Code)
}

func TestLogin_FailuresShareOneMessage(t *testing.T) {
	env := newTestEnv(t, 100)

	unknown := env.do(loginReq(`{"email":"nobody@example.com","password":"x"}`))
	wrong := env.do(loginReq(`{"email":"admin@example.com","password":"wrong"}`))

	for _, rec := range []*httptest.ResponseRecorder{unknown, wrong} {
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid password"}`, rec.Body.String())
		assert.Empty(t, rec.Result().Cookies())
	}
}

func TestLogin_BadRequests(t *testing.T) {
	env := newTestEnv(t, 100)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"email":`},
		{"not an object", `"admin@example.com"`},
		{"missing password", `{"email":"admin@example.com"}`},
		{"blank email", `{"email":"  ","password":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(loginReq(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestLogin_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, 100)
	for _, m := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := env.do(httptest.NewRequest(m, "/api/login", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, m)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
		assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
	}
}

func TestLogin_InternalError(t *testing.T) {
	env := newTestEnv(t, 100)
	env.users.err = errors.New("db down")

	rec := env.do(loginReq(`{"email":"admin@example.com","password":"correct horse"}`))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestLogin_RateLimited(t *testing.T) {
	env := newTestEnv(t, 2)

	body := `{"email":"admin@example.com","password":"wrong"}`
	assert.Equal(t, http.StatusBadRequest, env.do(loginReq(body)).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(loginReq(body)).Code)

	rec := env.do(loginReq(body))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	other := loginReq(body)
	other.RemoteAddr = "198.51.100.7:4000"
	assert.Equal(t, http.StatusBadRequest, env.do(other).Code, "buckets are per client")
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, 100)

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/logout", nil), sessionCookie(t, "u-admin", true))
	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/logout", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	require.Len(t, rec.Result().Cookies(), 1)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t, 100)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/me", nil), sessionCookie(t, "u-viewer", false))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"u-viewer","email":"u-viewer@example.com","isAdmin":false}`, rec.Body.String())
}
