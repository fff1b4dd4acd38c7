// Package httpx provides HTTP response utilities following RFC7807
// problem details, plus the sentinel errors of the business-rule
// taxonomy shared across domain services.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer. Services wrap these so
// handlers can map them without knowing the originating module.
var (
	// ErrValidation covers bad date ranges, negative trip counts and
	// missing scope identifiers.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound covers unknown routes, timesheets and report scopes.
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden covers capability failures such as factory-price
	// edits without privilege.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized indicates a missing or invalid session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict indicates a uniqueness clash. Timesheet creation
	// races are absorbed before reaching a handler; anything else
	// surfaces as 409.
	ErrConflict = errors.New("conflict")
)

// RespondError maps domain errors to RFC7807 problem responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
