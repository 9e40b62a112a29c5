package tenant_test

import (
	"testing"

	"cerven-ot/internal/tenant"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type row struct {
	ID        string
	CompanyID string
}

func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db.Session(&gorm.Session{DryRun: true})
}

func TestScope(t *testing.T) {
	tests := []struct {
		name    string
		scope   func(*gorm.DB) *gorm.DB
		wantSQL string
	}{
		{"company", tenant.Scope("c-1"), "WHERE company_id = $1"},
		{"empty company matches nothing", tenant.Scope(" "), "WHERE 1 = 0"},
		{"qualified", tenant.ScopeTable("t", "c-1"), "WHERE t.company_id = $1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows []row
			stmt := dryRun(t).Table("rows").Scopes(tt.scope).Find(&rows).Statement

			assert.Contains(t, stmt.SQL.String(), tt.wantSQL)
		})
	}
}
