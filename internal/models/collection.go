package models

import (
	"time"

	"github.com/google/uuid"
)

// Collection groups products inside a store. A collection always references a
// store that belongs to the same owner.
type Collection struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          uuid.UUID `json:"owner_id"`
	OwnerWallet      string    `json:"owner_wallet,omitempty"` // populated display field
	StoreID          uuid.UUID `json:"store_id"`
	StoreName        string    `json:"store_name,omitempty"` // populated display field
	Name             string    `json:"name"`
	ShortDescription string    `json:"short_description"`
	Description      string    `json:"description,omitempty"`
	ImageURL         string    `json:"image_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
