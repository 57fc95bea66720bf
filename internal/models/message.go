package models

// Message represents a chat message scoped to a product conversation.
// Messages are immutable once stored.
type Message struct {
	ID             string `json:"id"` // ULID
	ProductID      string `json:"product_id"`
	SenderID       string `json:"sender_id"`
	ReceiverID     string `json:"receiver_id"`
	SenderWallet   string `json:"sender_wallet,omitempty"`
	ReceiverWallet string `json:"receiver_wallet,omitempty"`
	Body           string `json:"body"`
	Timestamp      int64  `json:"ts"` // Unix ms
}
