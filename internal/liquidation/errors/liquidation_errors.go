package liquidationerrors

import (
	"net/http"

	"cerven-ot/internal/shared/apperror"
)

var (
	ErrLiquidationNotFound = apperror.New(
		apperror.CodeNotFound,
		"liquidation not found",
		http.StatusNotFound,
	)
	ErrInvalidCashAdvanceID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid cash_advance_id",
		http.StatusBadRequest,
	)
	ErrCashAdvanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"cash advance not found",
		http.StatusNotFound,
	)
	ErrNotOwnCashAdvance = apperror.New(
		apperror.CodeForbidden,
		"cash advance belongs to another employee",
		http.StatusForbidden,
	)
	ErrCashAdvanceNotApproved = apperror.New(
		apperror.CodeInvalidState,
		"cash advance must be approved before liquidation",
		http.StatusBadRequest,
	)
	ErrActiveLiquidationExists = apperror.New(
		apperror.CodeInvalidInput,
		"an active liquidation already exists",
		http.StatusBadRequest,
	)
	ErrItemsRequired = apperror.New(
		apperror.CodeInvalidInput,
		"at least one expense item is required",
		http.StatusBadRequest,
	)
	ErrInvalidExpenseDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid expense_date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrNegativeAmount = apperror.New(
		apperror.CodeInvalidInput,
		"expense amounts cannot be negative",
		http.StatusBadRequest,
	)
	ErrAlreadyDecided = apperror.New(
		apperror.CodeConflict,
		"liquidation has already been decided",
		http.StatusConflict,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"rejection_reason is required",
		http.StatusBadRequest,
	)
)
