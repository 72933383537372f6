package category

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	categoryrepo "storefront/internal/repository/category"
	productsvc "storefront/internal/service/product"
)

type Service struct {
	repo categoryrepo.Repository
}

func New(repo categoryrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *Service) Save(ctx context.Context, c domain.Category) (*domain.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, errors.New("name required")
	}
	if c.Slug == "" {
		c.Slug = productsvc.Slugify(c.Name)
	}
	return s.repo.Upsert(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
