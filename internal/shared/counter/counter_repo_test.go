package counter_test

import (
	"context"
	"errors"
	"testing"

	"cerven-ot/internal/shared/counter"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return gdb, mock
}

func TestGetNextValue(t *testing.T) {
	t.Run("returns upserted value", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := counter.NewRepository(gdb)

		mock.ExpectQuery(`INSERT INTO company_counters`).
			WithArgs("c-1", counter.TypeTicket).
			WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(int64(7)))

		n, err := repo.GetNextValue(context.Background(), "c-1", counter.TypeTicket)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("runs inside caller transaction", func(t *testing.T) {
		sqlDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer sqlDB.Close()
		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO company_counters`).
			WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(int64(1)))
		mock.ExpectCommit()

		tx, err := sqlDB.BeginTx(context.Background(), nil)
		require.NoError(t, err)

		n, err := counter.NewRepository(gdb).WithTx(tx).GetNextValue(context.Background(), "c-1", counter.TypeTicket)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), n)

		assert.NoError(t, tx.Commit())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates db error", func(t *testing.T) {
		gdb, mock := newMockDB(t)

		mock.ExpectQuery(`INSERT INTO company_counters`).WillReturnError(errors.New("db down"))

		n, err := counter.NewRepository(gdb).GetNextValue(context.Background(), "c-1", counter.TypeTicket)

		assert.Error(t, err)
		assert.Zero(t, n)
	})
}

func TestTicketNumber(t *testing.T) {
	assert.Equal(t, "TKT-000001", counter.TicketNumber(1))
	assert.Equal(t, "TKT-123456", counter.TicketNumber(123456))
	assert.Equal(t, "TKT-1234567", counter.TicketNumber(1234567))
}
