// Package contextstore persists conversation contexts between turns. The
// engine itself is stateless; whatever store the server wires in is the
// only memory a conversation has.
package contextstore

import (
	"context"
	"sync"

	"finchat/internal/models"
)

// Store loads and saves per-conversation contexts. Load returns a fresh
// empty context when the conversation is unknown; callers never see nil.
type Store interface {
	Load(ctx context.Context, conversationID string) (*models.ConversationContext, error)
	Save(ctx context.Context, conversationID string, c *models.ConversationContext) error
	Delete(ctx context.Context, conversationID string) error
}

// MemoryStore is a process-local Store for tests and single-node runs.
type MemoryStore struct {
	mu       sync.RWMutex
	contexts map[string]*models.ConversationContext
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contexts: make(map[string]*models.ConversationContext)}
}

func (s *MemoryStore) Load(_ context.Context, conversationID string) (*models.ConversationContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.contexts[conversationID]; ok {
		return c.Clone(), nil
	}
	return models.NewConversationContext(), nil
}

func (s *MemoryStore) Save(_ context.Context, conversationID string, c *models.ConversationContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[conversationID] = c.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, conversationID)
	return nil
}
