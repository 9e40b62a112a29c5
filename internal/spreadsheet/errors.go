package spreadsheet

import (
	"net/http"

	"cerven-ot/internal/shared/apperror"
)

var (
	ErrUnreadableFile = apperror.New(
		apperror.CodeInvalidInput,
		"file could not be read as a spreadsheet",
		http.StatusBadRequest,
	)
	ErrEmptySheet = apperror.New(
		apperror.CodeInvalidInput,
		"worksheet is empty",
		http.StatusBadRequest,
	)
	ErrMissingHeader = apperror.New(
		apperror.CodeInvalidInput,
		"required column is missing",
		http.StatusBadRequest,
	)
	ErrUnsupportedFormat = apperror.New(
		apperror.CodeInvalidInput,
		"only .xlsx and .xls files are supported",
		http.StatusBadRequest,
	)
)
