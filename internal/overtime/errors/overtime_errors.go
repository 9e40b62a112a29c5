package overtimeerrors

import (
	"cerven-ot/internal/shared/apperror"
	"net/http"
)

var (
	ErrOvertimeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Overtime request not found",
		http.StatusNotFound,
	)
	ErrInvalidOvertimeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid overtime ID",
		http.StatusBadRequest,
	)
	ErrInvalidAttendanceID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid attendance ID",
		http.StatusBadRequest,
	)
	ErrInvalidLevel = apperror.New(
		apperror.CodeInvalidInput,
		"level must be 1 or 2",
		http.StatusBadRequest,
	)
	ErrInvalidAction = apperror.New(
		apperror.CodeInvalidInput,
		"action must be approve or reject",
		http.StatusBadRequest,
	)
	ErrInvalidHours = apperror.New(
		apperror.CodeInvalidInput,
		"requested hours must be greater than zero and within worked hours",
		http.StatusBadRequest,
	)
	ErrLevel1Required = apperror.New(
		apperror.CodeInvalidState,
		"level 1 approval is required first",
		http.StatusBadRequest,
	)
	ErrAlreadyDecided = apperror.New(
		apperror.CodeConflict,
		"already decided",
		http.StatusConflict,
	)
	ErrAlreadyRequested = apperror.New(
		apperror.CodeConflict,
		"overtime already requested for this attendance",
		http.StatusConflict,
	)
	ErrAttendanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance not found",
		http.StatusNotFound,
	)
	ErrNotOwnAttendance = apperror.New(
		apperror.CodeForbidden,
		"overtime can only be requested for your own attendance",
		http.StatusForbidden,
	)
	ErrNotClockedOut = apperror.New(
		apperror.CodeInvalidState,
		"attendance has not been clocked out",
		http.StatusBadRequest,
	)
)
