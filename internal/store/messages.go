package store

import (
	"context"

	"github.com/eldtechnologies/bazaar/internal/models"
)

// MessageStore defines append-only persistence of product chat messages.
// RedisMessageStore is the production implementation; MemoryMessageStore
// backs development runs and tests.
type MessageStore interface {
	// Ping checks the backing connection.
	Ping(ctx context.Context) error

	// Append stores a message. It assigns the message ID and timestamp when
	// unset. A message is either fully stored or not stored at all.
	Append(ctx context.Context, msg *models.Message) error

	// ListForProduct returns the messages of a product conversation where
	// participantID is the sender or receiver, ascending by timestamp.
	// Callers that are not a participant of any message get an empty slice.
	ListForProduct(ctx context.Context, productID, participantID string) ([]models.Message, error)
}
