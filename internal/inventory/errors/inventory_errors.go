package inventoryerrors

import (
	"net/http"

	"cerven-ot/internal/shared/apperror"
)

var (
	ErrStoreNotFound = apperror.New(
		apperror.CodeNotFound,
		"store not found",
		http.StatusNotFound,
	)
	ErrStoreCodeTaken = apperror.New(
		apperror.CodeConflict,
		"store code already exists in this company",
		http.StatusConflict,
	)
	ErrInvalidStoreCode = apperror.New(
		apperror.CodeInvalidInput,
		"store code may only contain letters, digits, dash and underscore",
		http.StatusBadRequest,
	)
	ErrInvalidQuantity = apperror.New(
		apperror.CodeInvalidInput,
		"quantity must be a whole number of zero or more",
		http.StatusBadRequest,
	)
)
