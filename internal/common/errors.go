// Package common defines shared constants and sentinel errors used across
// the server layers of SessionKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidRole    = errors.New("invalid role")

	// Credential errors. Unknown login and wrong password are reported
	// with the same value.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Refresh token lifecycle errors.
	ErrTokenNotFound = errors.New("refresh token not found")
	ErrTokenRevoked  = errors.New("refresh token revoked")
	ErrInvalidUser   = errors.New("refresh token owner does not exist")

	// Access token errors.
	ErrTokenExpired     = errors.New("token expired")
	ErrSignatureInvalid = errors.New("invalid token signature")
	ErrMalformedHeader  = errors.New("malformed authorization header")
	ErrForbidden        = errors.New("forbidden")

	// ErrInternalInconsistency is fatal: a revoke that had to affect exactly
	// one row affected a different number of rows.
	ErrInternalInconsistency = errors.New("internal inconsistency")
)
