package cashadvanceerrors

import (
	"net/http"

	"cerven-ot/internal/shared/apperror"
)

var (
	ErrCashAdvanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"cash advance not found",
		http.StatusNotFound,
	)
	ErrInvalidType = apperror.New(
		apperror.CodeInvalidInput,
		"type must be personal, support or reimbursement",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount must be greater than zero",
		http.StatusBadRequest,
	)
	ErrAlreadyDecided = apperror.New(
		apperror.CodeConflict,
		"cash advance has already been decided",
		http.StatusConflict,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"rejection_reason is required",
		http.StatusBadRequest,
	)
)
