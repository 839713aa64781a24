// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/portfolio/internal/dbx"
	"github.com/dmitrijs2005/portfolio/internal/server/migrations"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/content"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Heroes(db dbx.DBTX) content.Repository[models.Hero] {
	return content.NewHeroes(db)
}

func (m *PostgresRepositoryManager) Projects(db dbx.DBTX) content.Repository[models.Project] {
	return content.NewProjects(db)
}

func (m *PostgresRepositoryManager) Experiences(db dbx.DBTX) content.Repository[models.Experience] {
	return content.NewExperiences(db)
}

func (m *PostgresRepositoryManager) Educations(db dbx.DBTX) content.Repository[models.Education] {
	return content.NewEducations(db)
}

func (m *PostgresRepositoryManager) Services(db dbx.DBTX) content.Repository[models.Service] {
	return content.NewServices(db)
}

func (m *PostgresRepositoryManager) Testimonials(db dbx.DBTX) content.Repository[models.Testimonial] {
	return content.NewTestimonials(db)
}

func (m *PostgresRepositoryManager) TechStack(db dbx.DBTX) content.Repository[models.TechItem] {
	return content.NewTechStack(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
