// Package catalog serves read-only product and category queries.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/repository"
)

type Service struct {
	repo repository.CatalogRepository
}

// NewService creates a catalog service over the given repository
func NewService(repo repository.CatalogRepository) *Service {
	return &Service{repo: repo}
}

// ListProducts returns products newest first. limit <= 0 returns all.
func (s *Service) ListProducts(ctx context.Context, limit int) ([]models.Product, error) {
	products, err := s.repo.ListProducts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *Service) ProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.repo.ProductBySlug(ctx, slug)
}

func (s *Service) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.ProductByID(ctx, id)
}

// Lookup resolves key as a slug first and then as an id. The browser cart
// only remembers product ids, so the detail endpoint accepts both.
func (s *Service) Lookup(ctx context.Context, key string) (*models.Product, error) {
	p, err := s.repo.ProductBySlug(ctx, key)
	if err == nil || !errors.Is(err, models.ErrNotFound) {
		return p, err
	}
	return s.repo.ProductByID(ctx, key)
}
