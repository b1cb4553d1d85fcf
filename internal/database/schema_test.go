package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return &DB{DB: sqlDB, Dialect: MySQL}, mock
}

func TestCleanupDataDeletesChildTablesFirst(t *testing.T) {
	db, mock := newMockDB(t)
	for _, table := range []string{"payments", "order_items", "orders", "user_profiles", "users", "products", "categories"} {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM " + table)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, db.CleanupData(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupDataStopsOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM payments")).WillReturnError(errors.New("locked"))

	err := db.CleanupData(context.Background())
	assert.ErrorContains(t, err, "payments")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetupSchemaAppliesEveryStatement(t *testing.T) {
	db, mock := newMockDB(t)
	for range schemaStatements {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, db.SetupSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
