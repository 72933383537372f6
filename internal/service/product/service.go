package product

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// List returns active products for the public catalog, optionally narrowed
// to one category.
func (s *Service) List(ctx context.Context, categorySlug string) ([]domain.Product, error) {
	return s.repo.List(ctx, productrepo.ListFilter{CategorySlug: categorySlug, ActiveOnly: true})
}

// ListAll includes inactive products, for the admin surface.
func (s *Service) ListAll(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx, productrepo.ListFilter{})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// Save creates or updates a product keyed by slug. A missing slug is
// derived from the name.
func (s *Service) Save(ctx context.Context, p domain.Product) (*domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, errors.New("name required")
	}
	if p.PriceCents < 0 {
		return nil, errors.New("price must not be negative")
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	return s.repo.Upsert(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Slugify lowercases the name and collapses runs of non-alphanumerics into
// single dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
