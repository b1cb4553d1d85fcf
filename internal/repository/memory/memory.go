// Package memory is an in-process Store. Every entity lives in an arena
// keyed by its generated id; relationships are plain id references and
// integrity is checked explicitly on write and delete.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/repository"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu sync.RWMutex

	categories map[string]models.Category
	products   map[string]models.Product
	orders     map[string]models.Order
	orderItems map[string][]models.OrderItem // by order id
	payments   map[string]models.Payment
	users      map[string]models.User
	profiles   map[string]models.UserProfile // by user id

	// insertion order, used as a tie-breaker when timestamps match
	productSeq []string
	orderSeq   []string

	now func() time.Time
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		categories: make(map[string]models.Category),
		products:   make(map[string]models.Product),
		orders:     make(map[string]models.Order),
		orderItems: make(map[string][]models.OrderItem),
		payments:   make(map[string]models.Payment),
		users:      make(map[string]models.User),
		profiles:   make(map[string]models.UserProfile),
		now:        time.Now,
	}
}

func (s *Store) HealthCheck(ctx context.Context) error { return nil }

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

func (s *Store) ListProducts(ctx context.Context, limit int) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(s.productSeq))
	for i := len(s.productSeq) - 1; i >= 0; i-- {
		out = append(out, s.products[s.productSeq[i]])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) ProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product %q: %w", slug, models.ErrNotFound)
}

func (s *Store) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.Slug == c.Slug {
			return fmt.Errorf("category slug %q: %w", c.Slug, models.ErrConflict)
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if existing.Slug == p.Slug {
			return fmt.Errorf("product slug %q: %w", p.Slug, models.ErrConflict)
		}
	}
	if p.CategoryID != nil {
		if _, ok := s.categories[*p.CategoryID]; !ok {
			return fmt.Errorf("category %s: %w", *p.CategoryID, models.ErrNotFound)
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.products[p.ID] = *p
	s.productSeq = append(s.productSeq, p.ID)
	return nil
}

func (s *Store) UpdateProductPrice(ctx context.Context, id string, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	p.Price = price
	p.UpdatedAt = s.now()
	s.products[id] = p
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	for orderID, items := range s.orderItems {
		for _, item := range items {
			if item.ProductID == id {
				return fmt.Errorf("product %s is referenced by order %s: %w", id, orderID, models.ErrConflict)
			}
		}
	}
	delete(s.products, id)
	s.productSeq = removeID(s.productSeq, id)
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("category %s: %w", id, models.ErrNotFound)
	}
	for pid, p := range s.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			s.products[pid] = p
		}
	}
	delete(s.categories, id)
	return nil
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// CreateOrder validates every reference before touching the arenas, so a
// bad line leaves nothing behind.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[order.UserID]; !ok {
		return fmt.Errorf("user %s: %w", order.UserID, models.ErrNotFound)
	}
	for _, item := range order.Items {
		if _, ok := s.products[item.ProductID]; !ok {
			return fmt.Errorf("product %s: %w", item.ProductID, models.ErrNotFound)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("quantity %d for product %s: %w", item.Quantity, item.ProductID, models.ErrValidation)
		}
	}

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = s.now()
	}
	items := make([]models.OrderItem, len(order.Items))
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.NewString()
		}
		order.Items[i].OrderID = order.ID
		items[i] = order.Items[i]
	}

	stored := *order
	stored.Items = nil
	s.orders[order.ID] = stored
	s.orderItems[order.ID] = items
	s.orderSeq = append(s.orderSeq, order.ID)
	return nil
}

func (s *Store) OrderByID(ctx context.Context, id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	o.Items = append([]models.OrderItem(nil), s.orderItems[id]...)
	return &o, nil
}

func (s *Store) FindRecent(ctx context.Context, limit int) ([]models.Order, error) {
	return s.findOrders(limit, func(models.Order) bool { return true }), nil
}

func (s *Store) FindByUser(ctx context.Context, userID string, limit int) ([]models.Order, error) {
	return s.findOrders(limit, func(o models.Order) bool { return o.UserID == userID }), nil
}

func (s *Store) findOrders(limit int, keep func(models.Order) bool) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Order
	for i := len(s.orderSeq) - 1; i >= 0; i-- {
		o := s.orders[s.orderSeq[i]]
		if !keep(o) {
			continue
		}
		o.Items = append([]models.OrderItem(nil), s.orderItems[o.ID]...)
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[p.UserID]; !ok {
		return fmt.Errorf("user %s: %w", p.UserID, models.ErrNotFound)
	}
	if p.OrderID != nil {
		if _, ok := s.orders[*p.OrderID]; !ok {
			return fmt.Errorf("order %s: %w", *p.OrderID, models.ErrNotFound)
		}
		for _, existing := range s.payments {
			if existing.OrderID != nil && *existing.OrderID == *p.OrderID {
				return fmt.Errorf("payment for order %s: %w", *p.OrderID, models.ErrConflict)
			}
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = s.now()
	}
	s.payments[p.ID] = *p
	return nil
}

func (s *Store) PaymentByExternalID(ctx context.Context, externalID string) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.payments {
		if p.ExternalID == externalID {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("payment %q: %w", externalID, models.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, user *models.User, profile *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return fmt.Errorf("username %q: %w", user.Username, models.ErrConflict)
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	s.users[user.ID] = *user
	if profile != nil {
		profile.UserID = user.ID
		s.profiles[user.ID] = *profile
	}
	return nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	return &u, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Username == username }, username)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return strings.EqualFold(u.Email, email) }, email)
}

func (s *Store) findUser(match func(models.User) bool, key string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", key, models.ErrNotFound)
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.UserByEmail(ctx, email)
	return err == nil, nil
}

func (s *Store) ProfileByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile for user %s: %w", userID, models.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, profile *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[profile.UserID]; !ok {
		return fmt.Errorf("user %s: %w", profile.UserID, models.ErrNotFound)
	}
	s.profiles[profile.UserID] = *profile
	return nil
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
