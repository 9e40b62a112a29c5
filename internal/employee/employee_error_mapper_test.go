package employee

import (
	"errors"
	"testing"

	employeeerrors "cerven-ot/internal/employee/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapRepositoryError(t *testing.T) {
	boom := errors.New("connection reset")
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"not found", gorm.ErrRecordNotFound, employeeerrors.ErrEmployeeNotFound},
		{"malformed uuid", &pgconn.PgError{Code: "22P02"}, employeeerrors.ErrEmployeeNotFound},
		{"other pg error", &pgconn.PgError{Code: "57014"}, &pgconn.PgError{Code: "57014"}},
		{"passthrough", boom, boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapRepositoryError(tt.in))
		})
	}
}
