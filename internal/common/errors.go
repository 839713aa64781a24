// Package common defines shared constants and sentinel errors used across
// the server and client layers of the portfolio. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Upload errors.
	ErrFileTooLarge       = errors.New("file too large")
	ErrUnsupportedFile    = errors.New("unsupported file type")
	ErrUploadInterrupted  = errors.New("upload interrupted")
	ErrMissingUploadField = errors.New("no file provided")
)
