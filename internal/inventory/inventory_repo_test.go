package inventory

import (
	"context"
	"errors"
	"testing"

	inventoryerrors "cerven-ot/internal/inventory/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestMapRepositoryError(t *testing.T) {
	assert.NoError(t, mapRepositoryError(nil))
	assert.ErrorIs(t, mapRepositoryError(gorm.ErrRecordNotFound), inventoryerrors.ErrStoreNotFound)
	assert.ErrorIs(t, mapRepositoryError(&pgconn.PgError{Code: "23505", ConstraintName: storeCodeIndex}), inventoryerrors.ErrStoreCodeTaken)

	other := &pgconn.PgError{Code: "23505", ConstraintName: "uq_something_else"}
	assert.Equal(t, error(other), mapRepositoryError(other))

	boom := errors.New("boom")
	assert.Equal(t, boom, mapRepositoryError(boom))
}

func TestRepository_StoreIDsByCode(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	repo := NewRepository(gdb)
	id := uuid.New()

	t.Run("no codes skips the query", func(t *testing.T) {
		got, err := repo.StoreIDsByCode(context.Background(), "c-1", nil)

		assert.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("maps code to id", func(t *testing.T) {
		mock.ExpectQuery(`SELECT "id","code" FROM "stores"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "code"}).AddRow(id.String(), "ST01"))

		got, err := repo.StoreIDsByCode(context.Background(), "c-1", []string{"ST01", "ST02"})

		require.NoError(t, err)
		assert.Equal(t, map[string]uuid.UUID{"ST01": id}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
