package services

import "errors"

// Sentinel error kinds used across services. Handlers translate them (plus
// repositories.ErrNotFound) to HTTP statuses with errors.Is.
var (
	// ErrConflict marks a uniqueness violation (username, email, category name).
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized marks failed authentication: bad credentials or a
	// missing/invalid/expired token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks an authenticated request the policy rejects.
	ErrForbidden = errors.New("forbidden")
	// ErrBadRequest marks a request that is well-formed but semantically
	// invalid, e.g. a dangling category reference or self-deactivation.
	ErrBadRequest = errors.New("bad request")
)
