// Package sqlrepo implements repository.Store on database/sql. Queries are
// written with ? placeholders and rebound for the configured dialect.
package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/matthieukhl/storefront/internal/database"
	"github.com/matthieukhl/storefront/internal/repository"
)

type store struct {
	db *database.DB
}

// New creates a Store backed by the given connection.
func New(db *database.DB) repository.Store {
	return &store{db: db}
}

func (s *store) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *store) exec(ctx context.Context, q querier, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, s.db.Rebind(query), args...)
}

func (s *store) query(ctx context.Context, q querier, query string, args ...any) (*sql.Rows, error) {
	return q.QueryContext(ctx, s.db.Rebind(query), args...)
}

func (s *store) queryRow(ctx context.Context, q querier, query string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, s.db.Rebind(query), args...)
}

// withTx runs fn inside a transaction, committing only when fn succeeds.
func (s *store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func notFound(err error, what error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return what
	}
	return err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
