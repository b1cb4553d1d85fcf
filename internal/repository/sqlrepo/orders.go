package sqlrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matthieukhl/storefront/internal/models"
)

const orderColumns = "id, user_id, ordered, ordered_at, full_name, phone, email, address_line1, address_line2, " +
	"city, state, postal_code, country, payment_method, payment_status, cod_fee, total_amount, created_at"

func scanOrder(row rowScanner) (models.Order, error) {
	var o models.Order
	var orderedAt sql.NullTime
	err := row.Scan(
		&o.ID, &o.UserID, &o.Ordered, &orderedAt, &o.FullName, &o.Phone, &o.Email,
		&o.AddressLine1, &o.AddressLine2, &o.City, &o.State, &o.PostalCode, &o.Country,
		&o.PaymentMethod, &o.PaymentStatus, &o.CODFee, &o.TotalAmount, &o.CreatedAt,
	)
	if orderedAt.Valid {
		t := orderedAt.Time
		o.OrderedAt = &t
	}
	return o, err
}

// CreateOrder inserts the order header and every item inside one transaction.
func (s *store) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := s.queryRow(ctx, tx, "SELECT COUNT(*) FROM users WHERE id = ?", order.UserID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("user %s: %w", order.UserID, models.ErrNotFound)
		}

		var orderedAt sql.NullTime
		if order.OrderedAt != nil {
			orderedAt = sql.NullTime{Time: *order.OrderedAt, Valid: true}
		}
		_, err := s.exec(ctx, tx,
			"INSERT INTO orders ("+orderColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			order.ID, order.UserID, order.Ordered, orderedAt, order.FullName, order.Phone, order.Email,
			order.AddressLine1, order.AddressLine2, order.City, order.State, order.PostalCode, order.Country,
			order.PaymentMethod, order.PaymentStatus, order.CODFee, order.TotalAmount, order.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		for i := range order.Items {
			item := &order.Items[i]
			if item.Quantity < 1 {
				return fmt.Errorf("quantity %d for product %s: %w", item.Quantity, item.ProductID, models.ErrValidation)
			}
			if err := s.queryRow(ctx, tx, "SELECT COUNT(*) FROM products WHERE id = ?", item.ProductID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check product: %w", err)
			}
			if exists == 0 {
				return fmt.Errorf("product %s: %w", item.ProductID, models.ErrNotFound)
			}

			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			item.OrderID = order.ID
			_, err := s.exec(ctx, tx,
				"INSERT INTO order_items (id, order_id, product_id, quantity, price) VALUES (?, ?, ?, ?, ?)",
				item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price,
			)
			if err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
		}
		return nil
	})
}

func (s *store) OrderByID(ctx context.Context, id string) (*models.Order, error) {
	o, err := scanOrder(s.queryRow(ctx, s.db, "SELECT "+orderColumns+" FROM orders WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", id, notFound(err, models.ErrNotFound))
	}
	if o.Items, err = s.orderItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *store) FindRecent(ctx context.Context, limit int) ([]models.Order, error) {
	return s.findOrders(ctx, "", limit)
}

func (s *store) FindByUser(ctx context.Context, userID string, limit int) ([]models.Order, error) {
	return s.findOrders(ctx, userID, limit)
}

func (s *store) findOrders(ctx context.Context, userID string, limit int) ([]models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders"
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at DESC, id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Items are loaded after the cursor is released so the pool is not
	// holding two connections per call.
	for i := range orders {
		if orders[i].Items, err = s.orderItems(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *store) orderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := s.query(ctx, s.db,
		"SELECT id, order_id, product_id, quantity, price FROM order_items WHERE order_id = ? ORDER BY id", orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *store) CreatePayment(ctx context.Context, p *models.Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}

	_, err := s.exec(ctx, s.db,
		"INSERT INTO payments (id, user_id, order_id, stripe_payment_id, amount, status, payment_method, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.UserID, nullString(p.OrderID), p.ExternalID, p.Amount, p.Status, p.PaymentMethod, p.Timestamp,
	)
	if s.db.Dialect.IsUniqueViolation(err) {
		return fmt.Errorf("payment for order: %w", models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (s *store) PaymentByExternalID(ctx context.Context, externalID string) (*models.Payment, error) {
	var p models.Payment
	var orderID sql.NullString
	err := s.queryRow(ctx, s.db,
		"SELECT id, user_id, order_id, stripe_payment_id, amount, status, payment_method, created_at FROM payments WHERE stripe_payment_id = ?",
		externalID,
	).Scan(&p.ID, &p.UserID, &orderID, &p.ExternalID, &p.Amount, &p.Status, &p.PaymentMethod, &p.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment %q: %w", externalID, notFound(err, models.ErrNotFound))
	}
	p.OrderID = stringPtr(orderID)
	return &p, nil
}
