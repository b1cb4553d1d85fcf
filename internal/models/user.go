package models

import (
	"strings"
	"time"
)

// User is a storefront account. Username is the email address.
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// DisplayName joins first and last name.
func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserProfile holds contact and address details, one per user.
type UserProfile struct {
	UserID     string `json:"user_id" db:"user_id"`
	FullName   string `json:"full_name" db:"full_name"`
	Gender     string `json:"gender" db:"gender"`
	Phone      string `json:"phone" db:"phone"`
	Address    string `json:"address" db:"address"`
	City       string `json:"city" db:"city"`
	State      string `json:"state" db:"state"`
	PostalCode string `json:"postal_code" db:"postal_code"`
	Country    string `json:"country" db:"country"`
}

// Genders
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// ValidGender reports whether g is an accepted gender value. Blank is allowed.
func ValidGender(g string) bool {
	switch g {
	case "", GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}
