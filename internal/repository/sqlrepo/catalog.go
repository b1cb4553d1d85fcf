package sqlrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/shopspring/decimal"
)

const productColumns = "id, title, slug, description, price, image, category_id, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	var category sql.NullString
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.Price, &p.Image, &category, &p.CreatedAt, &p.UpdatedAt)
	p.CategoryID = stringPtr(category)
	return p, err
}

func (s *store) ListProducts(ctx context.Context, limit int) ([]models.Product, error) {
	query := "SELECT " + productColumns + " FROM products ORDER BY created_at DESC, id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.query(ctx, s.db, "SELECT id, name, slug FROM categories ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *store) ProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	p, err := scanProduct(s.queryRow(ctx, s.db, "SELECT "+productColumns+" FROM products WHERE slug = ?", slug))
	if err != nil {
		return nil, fmt.Errorf("failed to load product %q: %w", slug, notFound(err, models.ErrNotFound))
	}
	return &p, nil
}

func (s *store) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	p, err := scanProduct(s.queryRow(ctx, s.db, "SELECT "+productColumns+" FROM products WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", id, notFound(err, models.ErrNotFound))
	}
	return &p, nil
}

func (s *store) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.exec(ctx, s.db, "INSERT INTO categories (id, name, slug) VALUES (?, ?, ?)", c.ID, c.Name, c.Slug)
	if s.db.Dialect.IsUniqueViolation(err) {
		return fmt.Errorf("category slug %q: %w", c.Slug, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (s *store) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := s.exec(ctx, s.db,
		"INSERT INTO products ("+productColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Title, p.Slug, p.Description, p.Price, p.Image, nullString(p.CategoryID), p.CreatedAt, p.UpdatedAt,
	)
	if s.db.Dialect.IsUniqueViolation(err) {
		return fmt.Errorf("product slug %q: %w", p.Slug, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert product %s: %w", p.Slug, err)
	}
	return nil
}

func (s *store) UpdateProductPrice(ctx context.Context, id string, price decimal.Decimal) error {
	res, err := s.exec(ctx, s.db, "UPDATE products SET price = ?, updated_at = ? WHERE id = ?", price, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update product price: %w", err)
	}
	return requireAffected(res, fmt.Errorf("product %s: %w", id, models.ErrNotFound))
}

func (s *store) DeleteProduct(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var refs int
		if err := s.queryRow(ctx, tx, "SELECT COUNT(*) FROM order_items WHERE product_id = ?", id).Scan(&refs); err != nil {
			return fmt.Errorf("failed to count order items: %w", err)
		}
		if refs > 0 {
			return fmt.Errorf("product %s is referenced by %d order items: %w", id, refs, models.ErrConflict)
		}

		res, err := s.exec(ctx, tx, "DELETE FROM products WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return requireAffected(res, fmt.Errorf("product %s: %w", id, models.ErrNotFound))
	})
}

func (s *store) DeleteCategory(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx, "UPDATE products SET category_id = NULL WHERE category_id = ?", id); err != nil {
			return fmt.Errorf("failed to detach products: %w", err)
		}
		res, err := s.exec(ctx, tx, "DELETE FROM categories WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return requireAffected(res, fmt.Errorf("category %s: %w", id, models.ErrNotFound))
	})
}

func requireAffected(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return missing
	}
	return nil
}
