package employee_test

import (
	"context"
	"testing"

	"cerven-ot/internal/employee"

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

func TestRepository_FindProfile(t *testing.T) {
	t.Run("highest role and position", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := employee.NewRepository(gdb)

		mock.ExpectQuery(`SELECT e.id, e.company_id, e.full_name`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "full_name", "email", "employment_status", "position"}).
				AddRow("e-1", "c-1", "Rina", "rina@corp.id", "active", " Operations Manager "))
		mock.ExpectQuery(`SELECT roles.name FROM employee_roles er`).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("manager"))

		p, err := repo.FindProfile(context.Background(), "c-1", "e-1")

		require.NoError(t, err)
		assert.Equal(t, "MANAGER", p.Role)
		assert.Equal(t, "Operations Manager", p.Position)
		assert.Equal(t, "ACTIVE", p.EmploymentStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("defaults role", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := employee.NewRepository(gdb)

		mock.ExpectQuery(`SELECT e.id`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "full_name", "email", "employment_status", "position"}).
				AddRow("e-1", "c-1", "Rina", "rina@corp.id", "active", ""))
		mock.ExpectQuery(`SELECT roles.name`).
			WillReturnRows(sqlmock.NewRows([]string{"name"}))

		p, err := repo.FindProfile(context.Background(), "c-1", "e-1")

		require.NoError(t, err)
		assert.Equal(t, "EMPLOYEE", p.Role)
	})

	t.Run("not found", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := employee.NewRepository(gdb)

		mock.ExpectQuery(`SELECT e.id`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindProfile(context.Background(), "c-1", "e-1")

		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
