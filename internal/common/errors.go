// Package common defines shared constants and sentinel errors used across
// unidesk layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal        = errors.New("internal error")
	ErrorUnauthorized    = errors.New("unauthorized")
	ErrorForbidden       = errors.New("forbidden")
	ErrorTooManyAttempts = errors.New("too many failed attempts")

	// Validation errors, rejected before storage is touched.
	ErrorValidation     = errors.New("validation error")
	ErrorRoleNotAllowed = errors.New("role not allowed for self-registration")
	ErrorWeakPassword   = errors.New("password too weak")

	// Credential hashing errors.
	ErrCryptoUnavailable = errors.New("crypto unavailable")
	ErrorEmptyPassword   = errors.New("empty password")

	// Session token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
