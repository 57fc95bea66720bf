package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered wallet identity.
type User struct {
	ID            uuid.UUID `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	TokenHash     string    `json:"-"` // bcrypt hash of the API token secret
	CreatedAt     time.Time `json:"created_at"`
}
