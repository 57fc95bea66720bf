package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a listed item in a store. Its product ID also keys the chat room
// for buyer/seller conversations about it.
type Product struct {
	ID               uuid.UUID  `json:"id"`
	OwnerID          uuid.UUID  `json:"owner_id"`
	OwnerWallet      string     `json:"owner_wallet,omitempty"` // populated display field
	StoreID          uuid.UUID  `json:"store_id"`
	StoreName        string     `json:"store_name,omitempty"` // populated display field
	CollectionID     *uuid.UUID `json:"collection_id,omitempty"`
	Name             string     `json:"name"`
	ShortDescription string     `json:"short_description"`
	Description      string     `json:"description,omitempty"`
	Price            int64      `json:"price"` // minor units
	ImageURL         string     `json:"image_url,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
