package ticketerrors

import (
	"net/http"

	"cerven-ot/internal/shared/apperror"
)

var (
	ErrTicketNotFound = apperror.New(
		apperror.CodeNotFound,
		"ticket not found",
		http.StatusNotFound,
	)
	ErrStoreNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"store not found in this company",
		http.StatusBadRequest,
	)
	ErrInvalidStoreID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid store id",
		http.StatusBadRequest,
	)
	ErrInvalidAssignee = apperror.New(
		apperror.CodeInvalidInput,
		"invalid assignee id",
		http.StatusBadRequest,
	)
	ErrInvalidSeverity = apperror.New(
		apperror.CodeInvalidInput,
		"severity must be one of sev1, sev2, sev3, sev4",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"invalid ticket status",
		http.StatusBadRequest,
	)
	ErrTitleRequired = apperror.New(
		apperror.CodeInvalidInput,
		"title is required",
		http.StatusBadRequest,
	)
	ErrIDRequired = apperror.New(
		apperror.CodeInvalidInput,
		"ticket id is required",
		http.StatusBadRequest,
	)
	ErrTicketClosed = apperror.New(
		apperror.CodeInvalidState,
		"closed tickets cannot be modified",
		http.StatusBadRequest,
	)
)
