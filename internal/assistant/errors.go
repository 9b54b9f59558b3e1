package assistant

import "errors"

var (
	// ErrAssistant marks a failed model call. Nothing was changed; the user may retry.
	ErrAssistant     = errors.New("assistant unavailable")
	ErrNotConfigured = errors.New("assistant not configured")
	// ErrInvalidIntent marks one create_booking call whose arguments could not be read.
	ErrInvalidIntent = errors.New("invalid booking intent")
)
