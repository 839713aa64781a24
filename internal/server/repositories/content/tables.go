package content

import (
	"github.com/dmitrijs2005/portfolio/internal/dbx"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

func NewHeroes(db dbx.DBTX) *PostgresRepository[models.Hero, *models.Hero] {
	return newPostgresRepository(db, table[models.Hero]{
		name:    "heroes",
		columns: []string{"headline", "subheadline", "cta_label", "cta_url", "image_url"},
		fields: func(h *models.Hero) []any {
			return []any{&h.Headline, &h.Subheadline, &h.CTALabel, &h.CTAURL, &h.ImageURL}
		},
		values: func(h *models.Hero) []any {
			return []any{h.Headline, h.Subheadline, h.CTALabel, h.CTAURL, h.ImageURL}
		},
	})
}

func NewProjects(db dbx.DBTX) *PostgresRepository[models.Project, *models.Project] {
	return newPostgresRepository(db, table[models.Project]{
		name:    "projects",
		columns: []string{"title", "description", "thumbnail_url", "live_url", "repo_url", "tags", "featured"},
		fields: func(p *models.Project) []any {
			return []any{&p.Title, &p.Description, &p.ThumbnailURL, &p.LiveURL, &p.RepoURL, textArray(&p.Tags), &p.Featured}
		},
		values: func(p *models.Project) []any {
			return []any{p.Title, p.Description, p.ThumbnailURL, p.LiveURL, p.RepoURL, nonNil(p.Tags), p.Featured}
		},
	})
}

func NewExperiences(db dbx.DBTX) *PostgresRepository[models.Experience, *models.Experience] {
	return newPostgresRepository(db, table[models.Experience]{
		name:    "experiences",
		columns: []string{"company", "role", "location", "start_date", "end_date", "description"},
		fields: func(e *models.Experience) []any {
			return []any{&e.Company, &e.Role, &e.Location, &e.StartDate, nullTime{&e.EndDate}, &e.Description}
		},
		values: func(e *models.Experience) []any {
			return []any{e.Company, e.Role, e.Location, e.StartDate, e.EndDate, e.Description}
		},
	})
}

func NewEducations(db dbx.DBTX) *PostgresRepository[models.Education, *models.Education] {
	return newPostgresRepository(db, table[models.Education]{
		name:    "educations",
		columns: []string{"institution", "degree", "field", "start_date", "end_date", "description"},
		fields: func(e *models.Education) []any {
			return []any{&e.Institution, &e.Degree, &e.Field, &e.StartDate, nullTime{&e.EndDate}, &e.Description}
		},
		values: func(e *models.Education) []any {
			return []any{e.Institution, e.Degree, e.Field, e.StartDate, e.EndDate, e.Description}
		},
	})
}

func NewServices(db dbx.DBTX) *PostgresRepository[models.Service, *models.Service] {
	return newPostgresRepository(db, table[models.Service]{
		name:    "services",
		columns: []string{"title", "description", "icon"},
		fields: func(s *models.Service) []any {
			return []any{&s.Title, &s.Description, &s.Icon}
		},
		values: func(s *models.Service) []any {
			return []any{s.Title, s.Description, s.Icon}
		},
	})
}

func NewTestimonials(db dbx.DBTX) *PostgresRepository[models.Testimonial, *models.Testimonial] {
	return newPostgresRepository(db, table[models.Testimonial]{
		name:    "testimonials",
		columns: []string{"author", "author_role", "company", "quote", "avatar_url"},
		fields: func(t *models.Testimonial) []any {
			return []any{&t.Author, &t.AuthorRole, &t.Company, &t.Quote, &t.AvatarURL}
		},
		values: func(t *models.Testimonial) []any {
			return []any{t.Author, t.AuthorRole, t.Company, t.Quote, t.AvatarURL}
		},
	})
}

func NewTechStack(db dbx.DBTX) *PostgresRepository[models.TechItem, *models.TechItem] {
	return newPostgresRepository(db, table[models.TechItem]{
		name:    "tech_stack",
		columns: []string{"name", "category", "icon_url", "proficiency"},
		fields: func(t *models.TechItem) []any {
			return []any{&t.Name, &t.Category, &t.IconURL, &t.Proficiency}
		},
		values: func(t *models.TechItem) []any {
			return []any{t.Name, t.Category, t.IconURL, t.Proficiency}
		},
	})
}
