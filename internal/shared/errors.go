package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation indicates malformed or incomplete input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrForbidden indicates the principal may not act on the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated indicates no valid principal is attached to the request.
	ErrUnauthenticated = errors.New("authentication required")
)
