package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/repository"
	"github.com/shopspring/decimal"
)

type sampleProduct struct {
	title, slug, description, category, price, image string
}

var sampleCategories = []models.Category{
	{Name: "Electronics", Slug: "electronics"},
	{Name: "Books", Slug: "books"},
	{Name: "Clothing", Slug: "clothing"},
	{Name: "Home", Slug: "home"},
	{Name: "Sports", Slug: "sports"},
}

var sampleProducts = []sampleProduct{
	{"Wireless Mouse", "wireless-mouse", "Ergonomic wireless mouse with USB receiver", "electronics", "799.00", "products/wireless-mouse.jpg"},
	{"Laptop Stand", "laptop-stand", "Adjustable aluminium stand for laptops and tablets", "electronics", "1499.00", ""},
	{"Smartphone Case", "smartphone-case", "Protective case for the latest smartphone models", "electronics", "349.00", ""},
	{"Programming Book", "programming-book", "Complete guide to modern software development", "books", "599.00", "products/programming-book.jpg"},
	{"Mystery Novel", "mystery-novel", "Bestselling mystery novel by a famous author", "books", "299.00", ""},
	{"Cotton T-Shirt", "cotton-t-shirt", "Premium cotton t-shirt, multiple sizes", "clothing", "399.00", ""},
	{"Winter Jacket", "winter-jacket", "Warm winter jacket in waterproof material", "clothing", "2499.00", ""},
	{"Coffee Mug", "coffee-mug", "Ceramic coffee mug, dishwasher safe", "home", "199.00", ""},
	{"LED Desk Lamp", "led-desk-lamp", "Adjustable LED lamp for the home office", "home", "899.00", ""},
	{"Yoga Mat", "yoga-mat", "Non-slip yoga mat for home workouts", "sports", "649.00", ""},
}

// Seed loads the sample catalog. Entries whose slug already exists are
// skipped, so running it twice is harmless. It returns the number of
// products created.
func Seed(ctx context.Context, repo repository.CatalogRepository) (int, error) {
	existing, err := repo.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list categories: %w", err)
	}
	categoryIDs := make(map[string]string, len(existing))
	for _, c := range existing {
		categoryIDs[c.Slug] = c.ID
	}

	for _, c := range sampleCategories {
		if _, ok := categoryIDs[c.Slug]; ok {
			continue
		}
		c := c
		if err := repo.CreateCategory(ctx, &c); err != nil {
			return 0, fmt.Errorf("failed to create category %s: %w", c.Slug, err)
		}
		categoryIDs[c.Slug] = c.ID
	}

	created := 0
	for _, sp := range sampleProducts {
		categoryID := categoryIDs[sp.category]
		p := &models.Product{
			Title:       sp.title,
			Slug:        sp.slug,
			Description: sp.description,
			Price:       decimal.RequireFromString(sp.price),
			Image:       sp.image,
			CategoryID:  &categoryID,
		}
		err := repo.CreateProduct(ctx, p)
		if errors.Is(err, models.ErrConflict) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to create product %s: %w", sp.slug, err)
		}
		created++
	}
	return created, nil
}
