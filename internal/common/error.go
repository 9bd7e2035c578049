// Package common defines shared constants and sentinel errors used across
// the client layers of SyncDraft. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Validation errors, reported before any request is made.
	ErrValidation    = errors.New("validation error")
	ErrEmptyContent  = errors.New("please write some content before using AI features")
	ErrNoActivePost  = errors.New("no active post")
	ErrInvalidAIMode = errors.New("invalid AI mode")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	// ErrSessionReset reports a result that arrived after the local session
	// state was cleared.
	ErrSessionReset = errors.New("session was reset")
)
