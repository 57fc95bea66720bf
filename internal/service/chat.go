package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/bazaar/internal/hub"
	"github.com/eldtechnologies/bazaar/internal/metrics"
	"github.com/eldtechnologies/bazaar/internal/models"
	"github.com/eldtechnologies/bazaar/internal/store"
)

const maxMessageBytes = 4096

// Chat handles product-scoped conversations: message persistence plus live
// fan-out to the product's room.
type Chat struct {
	db       store.DataStore
	messages store.MessageStore
	hub      *hub.Hub
	logger   zerolog.Logger
}

// NewChat creates a chat service.
func NewChat(db store.DataStore, messages store.MessageStore, h *hub.Hub, logger zerolog.Logger) *Chat {
	return &Chat{db: db, messages: messages, hub: h, logger: logger}
}

// Send persists a message about a product and publishes it to the product's
// room. The receiver is the product owner; the owner sending to their own
// product is rejected, so conversations are always buyer-initiated.
//
// NOTE: the receiver rule gives the seller no way to reply through this
// operation. See DESIGN.md before generalizing.
func (c *Chat) Send(ctx context.Context, sender *models.User, productID, body string) (*models.Message, error) {
	if productID == "" || body == "" {
		return nil, fmt.Errorf("%w: product id and message are required", ErrInvalidArgument)
	}
	if len(body) > maxMessageBytes {
		return nil, fmt.Errorf("%w: message too long (max %d bytes)", ErrInvalidArgument, maxMessageBytes)
	}

	pid, err := uuid.Parse(productID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid product id", ErrInvalidArgument)
	}

	product, err := c.db.GetProduct(ctx, pid)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product not found", ErrNotFound)
	}

	if product.OwnerID == sender.ID {
		return nil, fmt.Errorf("%w: cannot send message to yourself", ErrInvalidArgument)
	}

	msg := &models.Message{
		ProductID:      product.ID.String(),
		SenderID:       sender.ID.String(),
		ReceiverID:     product.OwnerID.String(),
		SenderWallet:   sender.WalletAddress,
		ReceiverWallet: product.OwnerWallet,
		Body:           body,
	}

	if err := c.messages.Append(ctx, msg); err != nil {
		return nil, err
	}
	metrics.MessagesSent.Inc()

	delivered := c.hub.Publish(msg.ProductID, msg)
	metrics.LiveDeliveries.Add(float64(delivered))
	c.logger.Debug().
		Str("product_id", msg.ProductID).
		Int("delivered", delivered).
		Msg("message published")

	return msg, nil
}

// History returns the caller's conversation messages for a product,
// ascending by timestamp. Visibility is participant-scoped: a caller that is
// neither sender nor receiver of any message gets an empty list.
func (c *Chat) History(ctx context.Context, caller *models.User, productID string) ([]models.Message, error) {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid product id", ErrInvalidArgument)
	}

	product, err := c.db.GetProduct(ctx, pid)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product not found", ErrNotFound)
	}

	return c.messages.ListForProduct(ctx, product.ID.String(), caller.ID.String())
}

// CheckRoom verifies the product a live subscription targets exists.
func (c *Chat) CheckRoom(ctx context.Context, productID string) error {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return fmt.Errorf("%w: invalid product id", ErrInvalidArgument)
	}
	product, err := c.db.GetProduct(ctx, pid)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("%w: product not found", ErrNotFound)
	}
	return nil
}
