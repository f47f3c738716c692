// Package common defines shared constants and sentinel errors used across
// MailTrack layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrIDInUse    = errors.New("tracking id already in use")

	// Backend availability.
	ErrUnavailable = errors.New("backend unavailable")

	// Store-level errors.
	ErrNotLoaded = errors.New("records not loaded")

	// Validation / record-specific errors.
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid tracking id")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrStatusUnchanged = errors.New("status unchanged")
	ErrEmptyComment    = errors.New("comment text is empty")
)
