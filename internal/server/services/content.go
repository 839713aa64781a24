package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/dbx"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/content"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/portfolio/internal/server/validate"
	"github.com/google/uuid"
)

// ObjectStore is the part of object storage content cleanup needs.
type ObjectStore interface {
	// KeyFromURL reports the object key behind a public URL, or false when
	// the URL does not point into our bucket.
	KeyFromURL(rawURL string) (string, bool)
	Delete(ctx context.Context, key string) error
}

// ContentService implements CRUD and ordering for one content type.
type ContentService[T any, P models.Entity[T]] struct {
	db       *sql.DB
	repo     func(dbx.DBTX) content.Repository[T]
	validate func(*T) error
	logger   logging.Logger

	// replaced is called after an update or delete with the previous
	// version of the row and the new one (nil on delete).
	replaced func(ctx context.Context, old, updated *T)
}

func (s *ContentService[T, P]) List(ctx context.Context) ([]T, error) {
	return s.repo(s.db).List(ctx)
}

func (s *ContentService[T, P]) Get(ctx context.Context, id string) (*T, error) {
	if !isUUID(id) {
		return nil, common.ErrorNotFound
	}
	return s.repo(s.db).Get(ctx, id)
}

// Create validates item and appends it to the end of the list.
func (s *ContentService[T, P]) Create(ctx context.Context, item *T) (*T, error) {
	if err := s.validate(item); err != nil {
		return nil, err
	}
	*P(item).GetMeta() = models.Meta{}

	created, err := s.repo(s.db).Create(ctx, item)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "content created", "id", P(created).GetMeta().ID)
	return created, nil
}

// Update replaces the editable fields of the row with the given id.
func (s *ContentService[T, P]) Update(ctx context.Context, id string, item *T) (*T, error) {
	if !isUUID(id) {
		return nil, common.ErrorNotFound
	}
	if err := s.validate(item); err != nil {
		return nil, err
	}
	*P(item).GetMeta() = models.Meta{ID: id}

	repo := s.repo(s.db)

	var old *T
	if s.replaced != nil {
		var err error
		if old, err = repo.Get(ctx, id); err != nil {
			return nil, err
		}
	}

	updated, err := repo.Update(ctx, item)
	if err != nil {
		return nil, err
	}
	if old != nil {
		s.replaced(ctx, old, updated)
	}
	return updated, nil
}

func (s *ContentService[T, P]) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return common.ErrorNotFound
	}

	repo := s.repo(s.db)

	var old *T
	if s.replaced != nil {
		var err error
		if old, err = repo.Get(ctx, id); err != nil {
			return err
		}
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "content deleted", "id", id)

	if old != nil {
		s.replaced(ctx, old, nil)
	}
	return nil
}

// Reorder assigns sort_order 0..n-1 following ids, atomically. Rows not
// listed keep their order value.
func (s *ContentService[T, P]) Reorder(ctx context.Context, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !isUUID(id) {
			return fmt.Errorf("%w: invalid id %q", common.ErrorValidation, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate id %q", common.ErrorValidation, id)
		}
		seen[id] = struct{}{}
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		for i, id := range ids {
			if err := repo.SetSortOrder(ctx, id, i); err != nil {
				return err
			}
		}
		return nil
	})
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// ContentServices groups the services of every content type.
type ContentServices struct {
	Heroes       *ContentService[models.Hero, *models.Hero]
	Projects     *ContentService[models.Project, *models.Project]
	Experiences  *ContentService[models.Experience, *models.Experience]
	Educations   *ContentService[models.Education, *models.Education]
	Services     *ContentService[models.Service, *models.Service]
	Testimonials *ContentService[models.Testimonial, *models.Testimonial]
	TechStack    *ContentService[models.TechItem, *models.TechItem]
}

func NewContentServices(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore, logger logging.Logger) *ContentServices {
	logger = logger.With("module", "content")

	projects := &ContentService[models.Project, *models.Project]{
		db: db, repo: m.Projects, validate: validate.Project, logger: logger.With("kind", "projects"),
	}
	if store != nil {
		projects.replaced = func(ctx context.Context, old, updated *models.Project) {
			if updated != nil && updated.ThumbnailURL == old.ThumbnailURL {
				return
			}
			removeObject(ctx, store, projects.logger, old.ThumbnailURL)
		}
	}

	return &ContentServices{
		Heroes: &ContentService[models.Hero, *models.Hero]{
			db: db, repo: m.Heroes, validate: validate.Hero, logger: logger.With("kind", "heroes"),
		},
		Projects: projects,
		Experiences: &ContentService[models.Experience, *models.Experience]{
			db: db, repo: m.Experiences, validate: validate.Experience, logger: logger.With("kind", "experiences"),
		},
		Educations: &ContentService[models.Education, *models.Education]{
			db: db, repo: m.Educations, validate: validate.Education, logger: logger.With("kind", "educations"),
		},
		Services: &ContentService[models.Service, *models.Service]{
			db: db, repo: m.Services, validate: validate.Service, logger: logger.With("kind", "services"),
		},
		Testimonials: &ContentService[models.Testimonial, *models.Testimonial]{
			db: db, repo: m.Testimonials, validate: validate.Testimonial, logger: logger.With("kind", "testimonials"),
		},
		TechStack: &ContentService[models.TechItem, *models.TechItem]{
			db: db, repo: m.TechStack, validate: validate.TechItem, logger: logger.With("kind", "tech_stack"),
		},
	}
}

// removeObject deletes the object behind rawURL when it lives in our
// bucket. Failures are logged and otherwise ignored.
func removeObject(ctx context.Context, store ObjectStore, logger logging.Logger, rawURL string) {
	key, ok := store.KeyFromURL(rawURL)
	if !ok {
		return
	}
	if err := store.Delete(ctx, key); err != nil {
		logger.Warn(ctx, "object cleanup failed", "key", key, "error", err)
		return
	}
	logger.Info(ctx, "object removed", "key", key)
}
