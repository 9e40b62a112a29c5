package overtime

import (
	"errors"

	overtimeerrors "cerven-ot/internal/overtime/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return overtimeerrors.ErrOvertimeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return overtimeerrors.ErrAlreadyRequested
	}

	return err
}
