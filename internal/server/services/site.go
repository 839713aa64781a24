package services

import (
	"context"

	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"golang.org/x/sync/errgroup"
)

type SiteService struct {
	content *ContentServices
}

func NewSiteService(c *ContentServices) *SiteService {
	return &SiteService{content: c}
}

// Load reads every section concurrently. The first failure cancels the
// remaining queries.
func (s *SiteService) Load(ctx context.Context) (*models.Site, error) {
	site := &models.Site{}
	g, ctx := errgroup.WithContext(ctx)

	load(g, ctx, s.content.Heroes.List, &site.Heroes)
	load(g, ctx, s.content.Projects.List, &site.Projects)
	load(g, ctx, s.content.Experiences.List, &site.Experiences)
	load(g, ctx, s.content.Educations.List, &site.Educations)
	load(g, ctx, s.content.Services.List, &site.Services)
	load(g, ctx, s.content.Testimonials.List, &site.Testimonials)
	load(g, ctx, s.content.TechStack.List, &site.TechStack)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return site, nil
}

func load[T any](g *errgroup.Group, ctx context.Context, list func(context.Context) ([]T, error), dst *[]T) {
	g.Go(func() error {
		items, err := list(ctx)
		if err != nil {
			return err
		}
		*dst = items
		return nil
	})
}
