package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/auth"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type fakeUsers struct {
	users map[string]*models.User
	pass  map[string]string
	err   error
}

func (f *fakeUsers) Login(ctx context.Context, email, password string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[email]
	if !ok {
		return nil, &auth.Error{Kind: auth.KindNotFound}
	}
	if f.pass[email] != password {
		return nil, &auth.Error{Kind: auth.KindInvalidPassword}
	}
	return u, nil
}

type fakeSite struct {
	site  *models.Site
	err   error
	panic bool
}

func (f *fakeSite) Load(ctx context.Context) (*models.Site, error) {
	if f.panic {
		panic("site exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.site, nil
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

// memContent is an in-memory ContentAPI.
type memContent[T any, P models.Entity[T]] struct {
	mu       sync.Mutex
	items    []*T
	invalid  error
	reorders [][]string
	err      error
}

func (m *memContent[T, P]) List(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]T, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, *it)
	}
	return out, nil
}

func (m *memContent[T, P]) find(id string) int {
	for i, it := range m.items {
		if P(it).GetMeta().ID == id {
			return i
		}
	}
	return -1
}

func (m *memContent[T, P]) Get(ctx context.Context, id string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id)
	if i < 0 {
		return nil, common.ErrorNotFound
	}
	cp := *m.items[i]
	return &cp, nil
}

func (m *memContent[T, P]) Create(ctx context.Context, item *T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.invalid != nil {
		return nil, m.invalid
	}
	meta := P(item).GetMeta()
	meta.ID = uuid.NewString()
	meta.SortOrder = len(m.items)
	meta.CreatedAt = time.Now()
	m.items = append(m.items, item)
	cp := *item
	return &cp, nil
}

func (m *memContent[T, P]) Update(ctx context.Context, id string, item *T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.invalid != nil {
		return nil, m.invalid
	}
	i := m.find(id)
	if i < 0 {
		return nil, common.ErrorNotFound
	}
	P(item).GetMeta().ID = id
	m.items[i] = item
	cp := *item
	return &cp, nil
}

func (m *memContent[T, P]) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id)
	if i < 0 {
		return common.ErrorNotFound
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return nil
}

func (m *memContent[T, P]) Reorder(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.invalid != nil {
		return m.invalid
	}
	m.reorders = append(m.reorders, ids)
	return nil
}

type testEnv struct {
	srv      *Server
	users    *fakeUsers
	site     *fakeSite
	db       *fakePinger
	projects *memContent[models.Project, *models.Project]
	heroes   *memContent[models.Hero, *models.Hero]
	uploads  int
}

func newTestEnv(t *testing.T, loginRate int) *testEnv {
	t.Helper()
	env := &testEnv{
		users: &fakeUsers{
			users: map[string]*models.User{
				"admin@example.com":  {ID: "u-admin", Email: "admin@example.com", IsAdmin: true},
				"viewer@example.com": {ID: "u-viewer", Email: "viewer@example.com"},
			},
			pass: map[string]string{
				"admin@example.com":  "correct horse",
				"viewer@example.com": "battery staple",
			},
		},
		site:     &fakeSite{site: &models.Site{}},
		db:       &fakePinger{},
		projects: &memContent[models.Project, *models.Project]{},
		heroes:   &memContent[models.Hero, *models.Hero]{},
	}

	srv, err := NewServer(":0", time.Second, Deps{
		Users: env.users,
		Site:  env.site,
		Content: Content{
			Heroes:       env.heroes,
			Projects:     env.projects,
			Experiences:  &memContent[models.Experience, *models.Experience]{},
			Educations:   &memContent[models.Education, *models.Education]{},
			Services:     &memContent[models.Service, *models.Service]{},
			Testimonials: &memContent[models.Testimonial, *models.Testimonial]{},
			TechStack:    &memContent[models.TechItem, *models.TechItem]{},
		},
		Sessions: auth.NewSessionManager(testSecret, false),
		Uploads: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			env.uploads++
			w.WriteHeader(http.StatusOK)
		}),
		DB:                 env.db,
		Logger:             logging.Discard(),
		LoginRatePerMinute: loginRate,
	})
	require.NoError(t, err)
	env.srv = srv
	return env
}

func sessionCookie(t *testing.T, userID string, isAdmin bool) *http.Cookie {
	t.Helper()
	token, err := auth.GenerateToken(userID, userID+"@example.com", isAdmin, testSecret, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: common.SessionCookieName, Value: token}
}

func (e *testEnv) do(r *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, r)
	return rec
}
