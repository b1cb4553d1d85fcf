package sqlrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matthieukhl/storefront/internal/models"
)

const (
	userColumns    = "id, username, email, password_hash, first_name, last_name, created_at"
	profileColumns = "user_id, full_name, gender, phone, address, city, state, postal_code, country"
)

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt)
	return u, err
}

func (s *store) CreateUser(ctx context.Context, user *models.User, profile *models.UserProfile) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := s.exec(ctx, tx,
			"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
			user.ID, user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.CreatedAt,
		)
		if s.db.Dialect.IsUniqueViolation(err) {
			return fmt.Errorf("username %q: %w", user.Username, models.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}

		if profile == nil {
			return nil
		}
		profile.UserID = user.ID
		return s.insertProfile(ctx, tx, profile)
	})
}

func (s *store) insertProfile(ctx context.Context, q querier, p *models.UserProfile) error {
	_, err := s.exec(ctx, q,
		"INSERT INTO user_profiles ("+profileColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.UserID, p.FullName, p.Gender, p.Phone, p.Address, p.City, p.State, p.PostalCode, p.Country,
	)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

func (s *store) UserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, "username = ?", username)
}

func (s *store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "LOWER(email) = LOWER(?)", email)
}

func (s *store) findUser(ctx context.Context, where, arg string) (*models.User, error) {
	u, err := scanUser(s.queryRow(ctx, s.db, "SELECT "+userColumns+" FROM users WHERE "+where+" ORDER BY created_at LIMIT 1", arg))
	if err != nil {
		return nil, fmt.Errorf("failed to load user %q: %w", arg, notFound(err, models.ErrNotFound))
	}
	return &u, nil
}

func (s *store) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	if err := s.queryRow(ctx, s.db, "SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER(?)", email).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return n > 0, nil
}

func (s *store) ProfileByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.queryRow(ctx, s.db, "SELECT "+profileColumns+" FROM user_profiles WHERE user_id = ?", userID).Scan(
		&p.UserID, &p.FullName, &p.Gender, &p.Phone, &p.Address, &p.City, &p.State, &p.PostalCode, &p.Country,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for user %s: %w", userID, notFound(err, models.ErrNotFound))
	}
	return &p, nil
}

// UpdateProfile overwrites the profile, creating it when the user has none.
func (s *store) UpdateProfile(ctx context.Context, p *models.UserProfile) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var users, profiles int
		err := s.queryRow(ctx, tx,
			"SELECT (SELECT COUNT(*) FROM users WHERE id = ?), (SELECT COUNT(*) FROM user_profiles WHERE user_id = ?)",
			p.UserID, p.UserID,
		).Scan(&users, &profiles)
		if err != nil {
			return fmt.Errorf("failed to check profile: %w", err)
		}
		if users == 0 {
			return fmt.Errorf("user %s: %w", p.UserID, models.ErrNotFound)
		}
		if profiles == 0 {
			return s.insertProfile(ctx, tx, p)
		}

		_, err = s.exec(ctx, tx,
			"UPDATE user_profiles SET full_name = ?, gender = ?, phone = ?, address = ?, city = ?, state = ?, postal_code = ?, country = ? WHERE user_id = ?",
			p.FullName, p.Gender, p.Phone, p.Address, p.City, p.State, p.PostalCode, p.Country, p.UserID,
		)
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		return nil
	})
}
