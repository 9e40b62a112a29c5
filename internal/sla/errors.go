package sla

import (
	"net/http"

	"cerven-ot/internal/shared/apperror"
)

var (
	ErrInvalidDate = apperror.New(
		apperror.CodeValidationFailed,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidTime = apperror.New(
		apperror.CodeValidationFailed,
		"invalid time format, expected HH:MM or HH:MM:SS",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidTimestamp = apperror.New(
		apperror.CodeValidationFailed,
		"invalid pause timestamp, expected YYYY-MM-DDTHH:MM[:SS]",
		http.StatusUnprocessableEntity,
	)
	ErrNegativeDuration = apperror.New(
		apperror.CodeValidationFailed,
		"work end is before acknowledge time",
		http.StatusUnprocessableEntity,
	)
	ErrIncompletePause = apperror.New(
		apperror.CodeValidationFailed,
		"pause start and end must be provided together",
		http.StatusUnprocessableEntity,
	)
	ErrPauseRange = apperror.New(
		apperror.CodeValidationFailed,
		"pause end must be after pause start",
		http.StatusUnprocessableEntity,
	)
	ErrPauseTooLong = apperror.New(
		apperror.CodeValidationFailed,
		"pause duration exceeds the remaining working time",
		http.StatusUnprocessableEntity,
	)
)
