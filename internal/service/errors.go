package service

import "errors"

// Service-level error taxonomy. Handlers map these onto HTTP statuses; the
// concrete cause stays in logs, not in response bodies.
var (
	// ErrValidation is returned for malformed or missing input (400)
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized is returned for missing/invalid/expired credentials (401).
	// No distinction between expired, malformed and revoked is surfaced.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when an authenticated user lacks permission (403)
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when a referenced resource is absent (404)
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on duplicate unique keys (409)
	ErrConflict = errors.New("conflict")

	// ErrUpstream is returned when a database or CDN call failed (500)
	ErrUpstream = errors.New("upstream failure")
)
