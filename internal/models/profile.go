package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents a user account. PasswordHash never leaves the server.
type Profile struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
