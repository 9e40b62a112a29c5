package employee

import (
	"errors"

	employeeerrors "cerven-ot/internal/employee/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// invalid_text_representation, raised when a malformed uuid reaches postgres
const pgInvalidText = "22P02"

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgInvalidText {
		return employeeerrors.ErrEmployeeNotFound
	}

	return err
}
