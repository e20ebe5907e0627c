package storage

import "errors"

// Common client storage errors
var (
	// ErrSessionNotFound indicates that no session data exists
	ErrSessionNotFound = errors.New("session not found")
)
