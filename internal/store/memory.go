package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/eldtechnologies/bazaar/internal/models"
)

// MemoryMessageStore implements MessageStore with an in-memory map. It backs
// development runs without REDIS_URL and the test suite.
type MemoryMessageStore struct {
	mu       sync.Mutex
	messages map[string][]models.Message
}

// NewMemoryMessageStore creates an empty in-memory message store.
func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{messages: make(map[string][]models.Message)}
}

// Ping always succeeds.
func (s *MemoryMessageStore) Ping(ctx context.Context) error {
	return nil
}

// Append stores a message.
func (s *MemoryMessageStore) Append(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.ProductID] = append(s.messages[msg.ProductID], *msg)
	return nil
}

// ListForProduct retrieves the conversation messages visible to a participant,
// ascending by timestamp.
func (s *MemoryMessageStore) ListForProduct(ctx context.Context, productID, participantID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var messages []models.Message
	for _, msg := range s.messages[productID] {
		if msg.SenderID != participantID && msg.ReceiverID != participantID {
			continue
		}
		messages = append(messages, msg)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})
	return messages, nil
}
