package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/dbx"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/content"
	usersrepo "github.com/dmitrijs2005/portfolio/internal/server/repositories/users"
	"github.com/google/uuid"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	mu      sync.Mutex
	byEmail map[string]*models.User

	getErr    error
	createErr error
	creates   int
}

func newFakeUsersRepo(users ...*models.User) *fakeUsersRepo {
	f := &fakeUsersRepo{byEmail: map[string]*models.User{}}
	for _, u := range users {
		f.byEmail[strings.ToLower(u.Email)] = u
	}
	return f
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[strings.ToLower(u.Email)]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = uuid.NewString()
	f.byEmail[strings.ToLower(u.Email)] = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

// memRepo is an in-memory content.Repository.
type memRepo[T any, P models.Entity[T]] struct {
	mu    sync.Mutex
	items []*T
	err   error
	order map[string]int
}

func (r *memRepo[T, P]) List(ctx context.Context) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]T, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, *it)
	}
	return out, nil
}

func (r *memRepo[T, P]) find(id string) (int, bool) {
	for i, it := range r.items {
		if P(it).GetMeta().ID == id {
			return i, true
		}
	}
	return -1, false
}

func (r *memRepo[T, P]) Get(ctx context.Context, id string) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.find(id)
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *r.items[i]
	return &cp, nil
}

func (r *memRepo[T, P]) Create(ctx context.Context, item *T) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	m := P(item).GetMeta()
	m.ID = uuid.NewString()
	m.SortOrder = len(r.items)
	cp := *item
	r.items = append(r.items, &cp)
	return item, nil
}

func (r *memRepo[T, P]) Update(ctx context.Context, item *T) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.find(P(item).GetMeta().ID)
	if !ok {
		return nil, common.ErrorNotFound
	}
	P(item).GetMeta().SortOrder = P(r.items[i]).GetMeta().SortOrder
	cp := *item
	r.items[i] = &cp
	return item, nil
}

func (r *memRepo[T, P]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.find(id)
	if !ok {
		return common.ErrorNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

func (r *memRepo[T, P]) SetSortOrder(ctx context.Context, id string, order int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.find(id)
	if !ok {
		return common.ErrorNotFound
	}
	P(r.items[i]).GetMeta().SortOrder = order
	return nil
}

type fakeRepoManager struct {
	users        *fakeUsersRepo
	heroes       *memRepo[models.Hero, *models.Hero]
	projects     *memRepo[models.Project, *models.Project]
	experiences  *memRepo[models.Experience, *models.Experience]
	educations   *memRepo[models.Education, *models.Education]
	services     *memRepo[models.Service, *models.Service]
	testimonials *memRepo[models.Testimonial, *models.Testimonial]
	techStack    *memRepo[models.TechItem, *models.TechItem]
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:        newFakeUsersRepo(),
		heroes:       &memRepo[models.Hero, *models.Hero]{},
		projects:     &memRepo[models.Project, *models.Project]{},
		experiences:  &memRepo[models.Experience, *models.Experience]{},
		educations:   &memRepo[models.Education, *models.Education]{},
		services:     &memRepo[models.Service, *models.Service]{},
		testimonials: &memRepo[models.Testimonial, *models.Testimonial]{},
		techStack:    &memRepo[models.TechItem, *models.TechItem]{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository         { return m.users }
func (m *fakeRepoManager) Heroes(dbx.DBTX) content.Repository[models.Hero] {
	return m.heroes
}
func (m *fakeRepoManager) Projects(dbx.DBTX) content.Repository[models.Project] {
	return m.projects
}
func (m *fakeRepoManager) Experiences(dbx.DBTX) content.Repository[models.Experience] {
	return m.experiences
}
func (m *fakeRepoManager) Educations(dbx.DBTX) content.Repository[models.Education] {
	return m.educations
}
func (m *fakeRepoManager) Services(dbx.DBTX) content.Repository[models.Service] {
	return m.services
}
func (m *fakeRepoManager) Testimonials(dbx.DBTX) content.Repository[models.Testimonial] {
	return m.testimonials
}
func (m *fakeRepoManager) TechStack(dbx.DBTX) content.Repository[models.TechItem] {
	return m.techStack
}

type fakeStore struct {
	mu      sync.Mutex
	prefix  string
	deleted []string
	err     error
}

func (s *fakeStore) KeyFromURL(rawURL string) (string, bool) {
	if !strings.HasPrefix(rawURL, s.prefix) {
		return "", false
	}
	return strings.TrimPrefix(rawURL, s.prefix), true
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, key)
	return nil
}

var errBoom = errors.New("boom")

func discard() logging.Logger { return logging.Discard() }
