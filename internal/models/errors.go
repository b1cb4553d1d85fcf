package models

import "errors"

// Sentinel errors shared by repositories, services and handlers.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
)

// PublicError pairs a message that is safe to show customers with the
// sentinel it classifies as.
type PublicError struct {
	Kind error
	Msg  string
}

func (e *PublicError) Error() string { return e.Msg }
func (e *PublicError) Unwrap() error { return e.Kind }

// Public wraps kind with a customer facing message.
func Public(kind error, msg string) error {
	return &PublicError{Kind: kind, Msg: msg}
}
