package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		in      string
		want    string
	}{
		{
			name:    "mysql untouched",
			dialect: MySQL,
			in:      "SELECT id FROM products WHERE slug = ? AND price > ?",
			want:    "SELECT id FROM products WHERE slug = ? AND price > ?",
		},
		{
			name:    "postgres numbered",
			dialect: Postgres,
			in:      "INSERT INTO orders (id, user_id) VALUES (?, ?)",
			want:    "INSERT INTO orders (id, user_id) VALUES ($1, $2)",
		},
		{
			name:    "quoted question mark kept",
			dialect: Postgres,
			in:      "SELECT '?' FROM t WHERE a = ?",
			want:    "SELECT '?' FROM t WHERE a = $1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.Rebind(tt.in))
		})
	}
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)
	assert.Equal(t, "pgx", d.DriverName())

	d, err = DialectFor("mysql")
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.DriverName())

	_, err = DialectFor("sqlite")
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	dupMySQL := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.c' for key 'username'"}
	dupPg := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}

	tests := []struct {
		name    string
		dialect Dialect
		err     error
		want    bool
	}{
		{"mysql duplicate", MySQL, dupMySQL, true},
		{"mysql wrapped duplicate", MySQL, fmt.Errorf("failed to insert: %w", dupMySQL), true},
		{"mysql other code", MySQL, &mysql.MySQLError{Number: 1452}, false},
		{"mysql text only", MySQL, errors.New("Error 1062 (23000): Duplicate entry"), false},
		{"postgres duplicate", Postgres, dupPg, true},
		{"postgres wrapped duplicate", Postgres, fmt.Errorf("failed to insert: %w", dupPg), true},
		{"postgres foreign key", Postgres, &pgconn.PgError{Code: "23503"}, false},
		{"postgres given mysql error", Postgres, dupMySQL, false},
		{"nil", MySQL, nil, false},
		{"connection refused", Postgres, errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.IsUniqueViolation(tt.err))
		})
	}
}
