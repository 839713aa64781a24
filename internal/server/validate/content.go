package validate

import (
	"time"

	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

const (
	shortText = 200
	longText  = 5000
)

func Hero(h *models.Hero) error {
	return First(
		Required("headline", h.Headline, shortText),
		MaxLen("subheadline", h.Subheadline, longText),
		MaxLen("ctaLabel", h.CTALabel, shortText),
		OptionalURL("ctaUrl", h.CTAURL),
		OptionalURL("imageUrl", h.ImageURL),
	)
}

func Project(p *models.Project) error {
	return First(
		Required("title", p.Title, shortText),
		MaxLen("description", p.Description, longText),
		OptionalURL("thumbnailUrl", p.ThumbnailURL),
		OptionalURL("liveUrl", p.LiveURL),
		OptionalURL("repoUrl", p.RepoURL),
		Tags(p.Tags),
	)
}

func Experience(e *models.Experience) error {
	return First(
		Required("company", e.Company, shortText),
		Required("role", e.Role, shortText),
		MaxLen("location", e.Location, shortText),
		MaxLen("description", e.Description, longText),
		period(e.StartDate, e.EndDate),
	)
}

func Education(e *models.Education) error {
	return First(
		Required("institution", e.Institution, shortText),
		Required("degree", e.Degree, shortText),
		MaxLen("field", e.Field, shortText),
		MaxLen("description", e.Description, longText),
		period(e.StartDate, e.EndDate),
	)
}

func Service(s *models.Service) error {
	return First(
		Required("title", s.Title, shortText),
		MaxLen("description", s.Description, longText),
		MaxLen("icon", s.Icon, shortText),
	)
}

func Testimonial(t *models.Testimonial) error {
	return First(
		Required("author", t.Author, shortText),
		MaxLen("authorRole", t.AuthorRole, shortText),
		MaxLen("company", t.Company, shortText),
		Required("quote", t.Quote, longText),
		OptionalURL("avatarUrl", t.AvatarURL),
	)
}

func TechItem(t *models.TechItem) error {
	return First(
		Required("name", t.Name, shortText),
		MaxLen("category", t.Category, shortText),
		OptionalURL("iconUrl", t.IconURL),
		Range("proficiency", t.Proficiency, 0, 100),
	)
}

func period(start time.Time, end *time.Time) error {
	if start.IsZero() {
		return fail("startDate is required")
	}
	if end != nil && end.Before(start) {
		return fail("endDate must not be before startDate")
	}
	return nil
}
