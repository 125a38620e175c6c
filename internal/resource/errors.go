package resource

import (
	"errors"
	"net/http"
)

// Sentinel errors returned by operations and mapped onto HTTP status
// codes by the app adapter.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
)

// StatusCode maps an error to an HTTP status code. Errors that do not
// wrap a sentinel map to 500 so that internal details never pick their
// own status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// SafeMessage returns a client-facing message for an error. Unknown
// errors collapse to a generic message so internals do not leak.
func SafeMessage(err error) string {
	switch {
	case errors.Is(err, ErrBadRequest):
		return "Bad request"
	case errors.Is(err, ErrUnauthorized):
		return "Unauthorized"
	case errors.Is(err, ErrForbidden):
		return "Forbidden"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrConflict):
		return "Conflict"
	default:
		return "An unexpected error occurred"
	}
}
