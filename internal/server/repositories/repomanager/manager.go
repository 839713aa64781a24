package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/portfolio/internal/dbx"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/content"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Heroes(db dbx.DBTX) content.Repository[models.Hero]
	Projects(db dbx.DBTX) content.Repository[models.Project]
	Experiences(db dbx.DBTX) content.Repository[models.Experience]
	Educations(db dbx.DBTX) content.Repository[models.Education]
	Services(db dbx.DBTX) content.Repository[models.Service]
	Testimonials(db dbx.DBTX) content.Repository[models.Testimonial]
	TechStack(db dbx.DBTX) content.Repository[models.TechItem]
}
