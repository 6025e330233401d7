package models

import (
	"time"

	"github.com/sitewise/backend/pkg/constants"
)

// User is an editor account. Authorization beyond the session gate is handled
// upstream; the engine only distinguishes Admin from Editor.
type User struct {
	ID           string             `json:"id"`
	Email        string             `json:"email"`
	Name         string             `json:"name"`
	PasswordHash string             `json:"-"`
	Role         constants.UserRole `json:"role"`
	IsActive     bool               `json:"is_active"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// Session is a server-side login session keyed by the JWT ID claim
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ExpiresAt    time.Time `json:"expires_at"`
	IsRevoked    bool      `json:"is_revoked"`
	LastActivity time.Time `json:"last_activity"`
	CreatedAt    time.Time `json:"created_at"`
}
