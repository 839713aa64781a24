package content

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// arrayConverter lets []string arguments through the way pgx's stdlib
// driver does.
type arrayConverter struct{}

func (arrayConverter) ConvertValue(v any) (driver.Value, error) {
	if s, ok := v.([]string); ok {
		return s, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
		sqlmock.ValueConverterOption(arrayConverter{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var metaCols = []string{"id", "sort_order", "created_at", "updated_at"}

func TestProjects_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjects(db)

	now := time.Now()
	cols := append(metaCols, "title", "description", "thumbnail_url", "live_url", "repo_url", "tags", "featured")
	rows := sqlmock.NewRows(cols).
		AddRow("p1", 0, now, now, "One", "d", "https://cdn/x.png", "", "", "{go,sql}", true).
		AddRow("p2", 1, now, now, "Two", "", "", "", "", "{}", false)

	mock.ExpectQuery(`(?s)^SELECT id, sort_order, created_at, updated_at, title, description, thumbnail_url, live_url, repo_url, tags, featured FROM projects ORDER BY sort_order, created_at$`).
		WillReturnRows(rows)

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, []string{"go", "sql"}, got[0].Tags)
	assert.True(t, got[0].Featured)
	assert.Equal(t, 1, got[1].SortOrder)
	assert.Empty(t, got[1].Tags)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjects_ListEmpty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjects(db)

	mock.ExpectQuery(`FROM projects ORDER BY`).
		WillReturnRows(sqlmock.NewRows(append(metaCols, "title", "description", "thumbnail_url", "live_url", "repo_url", "tags", "featured")))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestList_DBError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewServices(db)

	mock.ExpectQuery(`FROM services`).WillReturnError(errors.New("db down"))

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestExperiences_GetNullableEnd(t *testing.T) {
	db, mock := newMock(t)
	repo := NewExperiences(db)

	now := time.Now()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	cols := append(metaCols, "company", "role", "location", "start_date", "end_date", "description")

	mock.ExpectQuery(`FROM experiences WHERE id = \$1$`).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("e1", 0, now, now, "Acme", "Dev", "Riga", start, nil, ""))
	mock.ExpectQuery(`FROM experiences WHERE id = \$1$`).
		WithArgs("e2").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("e2", 1, now, now, "Initech", "Lead", "", start, end, ""))

	current, err := repo.Get(context.Background(), "e1")
	require.NoError(t, err)
	assert.Nil(t, current.EndDate)
	assert.Equal(t, start, current.StartDate)

	past, err := repo.Get(context.Background(), "e2")
	require.NoError(t, err)
	require.NotNil(t, past.EndDate)
	assert.Equal(t, end, *past.EndDate)
}

func TestGet_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewHeroes(db)

	mock.ExpectQuery(`FROM heroes WHERE id = \$1$`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestProjects_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjects(db)

	now := time.Now()
	mock.ExpectQuery(`(?s)^INSERT INTO projects \(title, description, thumbnail_url, live_url, repo_url, tags, featured, sort_order\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \(SELECT COALESCE\(MAX\(sort_order\) \+ 1, 0\) FROM projects\)\)\s+RETURNING id, sort_order, created_at, updated_at$`).
		WithArgs("T", "D", "", "", "", []string{}, false).
		WillReturnRows(sqlmock.NewRows(metaCols).AddRow("new-id", 3, now, now))

	p, err := repo.Create(context.Background(), &models.Project{Title: "T", Description: "D"})
	require.NoError(t, err)
	assert.Equal(t, "new-id", p.ID)
	assert.Equal(t, 3, p.SortOrder)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTechStack_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTechStack(db)

	now := time.Now()
	mock.ExpectQuery(`(?s)^UPDATE tech_stack SET name = \$1, category = \$2, icon_url = \$3, proficiency = \$4, updated_at = now\(\)\s+WHERE id = \$5\s+RETURNING sort_order, created_at, updated_at$`).
		WithArgs("Go", "lang", "", 90, "t1").
		WillReturnRows(sqlmock.NewRows([]string{"sort_order", "created_at", "updated_at"}).AddRow(2, now, now))

	item := &models.TechItem{Meta: models.Meta{ID: "t1"}, Name: "Go", Category: "lang", Proficiency: 90}
	got, err := repo.Update(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, 2, got.SortOrder)
}

func TestUpdate_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewServices(db)

	mock.ExpectQuery(`UPDATE services`).
		WithArgs("t", "", "", "nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), &models.Service{Meta: models.Meta{ID: "nope"}, Title: "t"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTestimonials(db)

	mock.ExpectExec(`^DELETE FROM testimonials WHERE id = \$1$`).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE FROM testimonials WHERE id = \$1$`).
		WithArgs("t2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "t1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "t2"), common.ErrorNotFound)
}

func TestSetSortOrder(t *testing.T) {
	db, mock := newMock(t)
	repo := NewEducations(db)

	mock.ExpectExec(`^UPDATE educations SET sort_order = \$1, updated_at = now\(\) WHERE id = \$2$`).
		WithArgs(4, "e1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE educations SET sort_order`).
		WithArgs(0, "e2").
		WillReturnError(errors.New("boom"))

	require.NoError(t, repo.SetSortOrder(context.Background(), "e1", 4))
	err := repo.SetSortOrder(context.Background(), "e2", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}
