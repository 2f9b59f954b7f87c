package auth

import "errors"

// Domain errors for account and session operations.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already registered")
	ErrSessionNotFound = errors.New("session not found")
)
