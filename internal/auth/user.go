// Package auth provides user accounts, password verification, and
// cookie-backed login sessions gating the rest of the application.
package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Created      time.Time
}

// Session represents a stored login session.
type Session struct {
	Token   string
	UserID  uuid.UUID
	Created time.Time
	Expires time.Time
}
