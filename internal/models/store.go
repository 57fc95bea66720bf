package models

import (
	"time"

	"github.com/google/uuid"
)

// Store represents a merchant storefront. The owner is set at creation and
// never changes afterwards.
type Store struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          uuid.UUID `json:"owner_id"`
	OwnerWallet      string    `json:"owner_wallet,omitempty"` // populated display field
	Name             string    `json:"name"`
	ShortDescription string    `json:"short_description"`
	Description      string    `json:"description,omitempty"`
	ImageURL         string    `json:"image_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
