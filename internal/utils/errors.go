package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrPropertyNotFound    = errors.New("property_not_found")
	ErrTransactionNotFound = errors.New("transaction_not_found")
	ErrTicketNotFound      = errors.New("ticket_not_found")
	ErrUserNotFound        = errors.New("user_not_found")

	ErrWrongStatus        = errors.New("wrong_status")
	ErrStageNotAllowed    = errors.New("stage_not_allowed")
	ErrAlreadyRemoved     = errors.New("already_removed")
	ErrNoRemovalRequested = errors.New("no_removal_requested")
	ErrUnknownTracker     = errors.New("unknown_tracker")

	// For concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")

	// For external service failures (SendGrid, Twilio, Stripe, MinIO)
	ErrExternalServiceFailure = errors.New("external_service_failure")

	ErrNoRowsUpdated = errors.New("no_rows_updated")
)

// AppError carries structured failure information from services to
// controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// ValidationError is an AppError carrying a field-keyed error map. It is
// raised before any mutation occurs, so a caller seeing one can assume no
// partial writes happened.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation_error"
}

func NewValidationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

// HandleAppError centralizes responding to service-layer errors.
func HandleAppError(w http.ResponseWriter, err error) {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		RespondErrorWithCode(w, http.StatusUnprocessableEntity, ErrCodeValidation, "Validation failed", valErr.Fields)
		return
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
		return
	}
	// Fallback for unexpected error types; never leak internals to the caller.
	RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
}
