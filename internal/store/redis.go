package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/eldtechnologies/bazaar/internal/models"
)

// RedisMessageStore persists product chat messages in Redis, one sorted set
// per product scored by timestamp. Messages are never rewritten after ZADD.
type RedisMessageStore struct {
	client *redis.Client
}

// NewRedisMessageStore creates a new Redis-backed message store.
func NewRedisMessageStore(ctx context.Context, redisURL string) (*RedisMessageStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisMessageStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisMessageStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisMessageStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying Redis client for rate limiting.
func (s *RedisMessageStore) Client() *redis.Client {
	return s.client
}

// productMessagesKey returns the key for a product's message sorted set.
func productMessagesKey(productID string) string {
	return fmt.Sprintf("product:%s:messages", productID)
}

// Append stores a message.
func (s *RedisMessageStore) Append(ctx context.Context, msg *models.Message) error {
	// Generate ULID if not set
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}

	// Set timestamp if not set
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// Single ZADD: the message is either fully stored or not stored at all.
	return s.client.ZAdd(ctx, productMessagesKey(msg.ProductID), redis.Z{
		Score:  float64(msg.Timestamp),
		Member: string(data),
	}).Err()
}

// ListForProduct retrieves the conversation messages visible to a participant,
// ascending by timestamp.
func (s *RedisMessageStore) ListForProduct(ctx context.Context, productID, participantID string) ([]models.Message, error) {
	results, err := s.client.ZRange(ctx, productMessagesKey(productID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, len(results))
	for _, data := range results {
		var msg models.Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			continue
		}
		if msg.SenderID != participantID && msg.ReceiverID != participantID {
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}
