package repository

import (
	"context"

	"github.com/matthieukhl/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// CatalogRepository handles persistence for categories and products.
type CatalogRepository interface {
	// ListProducts returns products newest first. limit <= 0 returns all.
	ListProducts(ctx context.Context, limit int) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ProductByID(ctx context.Context, id string) (*models.Product, error)

	CreateCategory(ctx context.Context, c *models.Category) error
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProductPrice(ctx context.Context, id string, price decimal.Decimal) error
	// DeleteProduct fails with models.ErrConflict while order items reference it.
	DeleteProduct(ctx context.Context, id string) error
	// DeleteCategory detaches its products before removing it.
	DeleteCategory(ctx context.Context, id string) error
}

// OrderRepository handles persistence for orders and payments.
type OrderRepository interface {
	// CreateOrder writes the order and all of its items in one transaction.
	CreateOrder(ctx context.Context, order *models.Order) error
	OrderByID(ctx context.Context, id string) (*models.Order, error)
	FindRecent(ctx context.Context, limit int) ([]models.Order, error)
	FindByUser(ctx context.Context, userID string, limit int) ([]models.Order, error)

	CreatePayment(ctx context.Context, p *models.Payment) error
	PaymentByExternalID(ctx context.Context, externalID string) (*models.Payment, error)
}

// UserRepository handles persistence for users and their profiles.
type UserRepository interface {
	// CreateUser writes the user and profile together. A taken username
	// yields models.ErrConflict.
	CreateUser(ctx context.Context, user *models.User, profile *models.UserProfile) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ProfileByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, profile *models.UserProfile) error
}

// Store bundles every repository behind one backend.
type Store interface {
	CatalogRepository
	OrderRepository
	UserRepository
	HealthCheck(ctx context.Context) error
}
