// Package common defines shared constants and sentinel errors used across
// the HTMLVault server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors (bad filename, malformed fields, duplicate identity).
	ErrorInvalidInput  = errors.New("invalid input")
	ErrorAlreadyExists = errors.New("already exists")

	// File registry errors.
	ErrorFileLocked = errors.New("file is locked")

	// Share redemption errors.
	ErrorShareExpired     = errors.New("share expired")
	ErrorPasswordRequired = errors.New("password required")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
