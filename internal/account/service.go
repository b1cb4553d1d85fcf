// Package account manages storefront users and their profiles.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidLogin = models.Public(models.ErrUnauthorized, "Invalid username or password")

// recentOrders caps the orders shown on the profile page.
const recentOrders = 20

type Service struct {
	users  repository.UserRepository
	orders repository.OrderRepository
	cost   int
}

func NewService(users repository.UserRepository, orders repository.OrderRepository) *Service {
	return &Service{users: users, orders: orders, cost: bcrypt.DefaultCost}
}

type SignupInput struct {
	FullName   string
	Email      string
	Password   string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
	Gender     string
}

func (in *SignupInput) normalize() {
	for _, f := range []*string{&in.FullName, &in.Email, &in.Password, &in.Phone, &in.Address,
		&in.City, &in.State, &in.PostalCode, &in.Country, &in.Gender} {
		*f = strings.TrimSpace(*f)
	}
	if in.Country == "" {
		in.Country = models.DefaultCountry
	}
}

// SplitFullName takes the first space separated token as the first name and
// joins the rest with single spaces as the last name.
func SplitFullName(full string) (first, last string) {
	if full == "" {
		return "", ""
	}
	parts := strings.Split(full, " ")
	return parts[0], strings.Join(parts[1:], " ")
}

// Signup creates the user keyed by email together with its profile. An email
// that is already registered yields models.ErrConflict.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.normalize()
	if in.Email == "" || in.Password == "" {
		return nil, models.Public(models.ErrValidation, "Email and password are required")
	}
	if !models.ValidGender(in.Gender) {
		return nil, models.Public(models.ErrValidation, "Unknown gender")
	}

	exists, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, models.Public(models.ErrConflict, "Email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	first, last := SplitFullName(in.FullName)
	user := &models.User{
		Username:     in.Email,
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    first,
		LastName:     last,
	}
	profile := &models.UserProfile{
		FullName:   in.FullName,
		Gender:     in.Gender,
		Phone:      in.Phone,
		Address:    in.Address,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
	}
	if err := s.users.CreateUser(ctx, user, profile); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate checks the password for a username, falling back to an
// email lookup. Any mismatch is models.ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, errInvalidLogin
	}

	user, err := s.users.UserByUsername(ctx, login)
	if errors.Is(err, models.ErrNotFound) {
		user, err = s.users.UserByEmail(ctx, login)
	}
	if errors.Is(err, models.ErrNotFound) {
		return nil, errInvalidLogin
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidLogin
	}
	return user, nil
}

// Profile is what the profile page renders.
type Profile struct {
	User    *models.User
	Profile *models.UserProfile
	Orders  []models.Order
}

// DisplayName prefers the profile's full name.
func (p *Profile) DisplayName() string {
	if p.Profile != nil && p.Profile.FullName != "" {
		return p.Profile.FullName
	}
	return p.User.DisplayName()
}

// LoadProfile returns the user, its profile (nil when missing) and its most
// recent orders.
func (s *Service) LoadProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	profile, err := s.users.ProfileByUserID(ctx, userID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	orders, err := s.orders.FindByUser(ctx, userID, recentOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	return &Profile{User: user, Profile: profile, Orders: orders}, nil
}

// ProfileInput is the editable part of a profile.
type ProfileInput struct {
	FullName   string
	Gender     string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
}

// UpdateProfile overwrites the profile owned by userID. The owner always
// comes from the caller's identity, never from the submitted form.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.UserProfile, error) {
	if userID == "" {
		return nil, models.Public(models.ErrUnauthorized, "Login required")
	}
	for _, f := range []*string{&in.FullName, &in.Gender, &in.Phone, &in.Address,
		&in.City, &in.State, &in.PostalCode, &in.Country} {
		*f = strings.TrimSpace(*f)
	}
	if in.Country == "" {
		in.Country = models.DefaultCountry
	}
	if !models.ValidGender(in.Gender) {
		return nil, models.Public(models.ErrValidation, "Unknown gender")
	}

	profile := &models.UserProfile{
		UserID:     userID,
		FullName:   in.FullName,
		Gender:     in.Gender,
		Phone:      in.Phone,
		Address:    in.Address,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
	}
	if err := s.users.UpdateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}
