// Package common defines shared constants and sentinel errors used across
// the goodnight backend. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors.
	ErrorValidation = errors.New("validation error")

	// Short-code allocation errors. ErrorShortCodeTaken triggers another
	// draw; ErrorCapacityExhausted means the bounded attempt count ran out.
	ErrorShortCodeTaken    = errors.New("short code taken")
	ErrorCapacityExhausted = errors.New("short code capacity exhausted")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
