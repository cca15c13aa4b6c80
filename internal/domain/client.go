package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a shop client account. Authentication-only entity;
// carts and orders reference clients through ClientID.
type Client struct {
	ID           ClientID  `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken represents a stored refresh token for a client session.
type RefreshToken struct {
	ID        uuid.UUID `json:"id"`
	ClientID  ClientID  `json:"client_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	Revoked   bool      `json:"revoked"`
}
