// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/taskhub/taskhub/internal/shared"
)

// Error kinds carried in the "error" field of failure envelopes.
const (
	KindUnauthenticated    = "unauthenticated"
	KindForbidden          = "forbidden"
	KindInvalidCredentials = "invalid_credentials"
	KindNotFound           = "not_found"
	KindValidation         = "validation"
	KindConflict           = "conflict"
	KindRateLimited        = "rate_limited"
	KindInternal           = "internal"
)

// RespondError maps domain errors to the failure envelope.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, http.StatusNotFound, KindNotFound, "resource not found")
	case errors.Is(err, shared.ErrValidation):
		Fail(w, http.StatusBadRequest, KindValidation, err.Error())
	case errors.Is(err, shared.ErrConflict):
		Fail(w, http.StatusConflict, KindConflict, "resource already exists")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Fail(w, http.StatusUnauthorized, KindInvalidCredentials, "invalid email or password")
	case errors.Is(err, shared.ErrUnauthenticated):
		Fail(w, http.StatusUnauthorized, KindUnauthenticated, "authentication required")
	case errors.Is(err, shared.ErrForbidden):
		Fail(w, http.StatusForbidden, KindForbidden, "insufficient permissions")
	default:
		Fail(w, http.StatusInternalServerError, KindInternal, "internal error")
	}
}
