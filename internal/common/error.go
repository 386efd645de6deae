// Package common defines shared constants and sentinel errors used across
// client and server layers of Staffolio. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Auth errors. ErrorUnauthorized is returned uniformly for unknown
	// email and wrong password so callers cannot tell the two apart.
	ErrorUnauthorized = errors.New("invalid credentials")
	ErrorForbidden    = errors.New("forbidden")

	// Token lifecycle errors. Both map to HTTP 401, but clients react
	// differently: expired triggers a re-login prompt, invalid a hard logout.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
