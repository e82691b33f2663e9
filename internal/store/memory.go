package store

import (
	"context"
	"sync"

	"github.com/soyeahso/voyant/internal/domain"
)

// MemoryStore is an in-memory ConversationStore. Conversations live for the
// process lifetime; useful for tests and ephemeral sessions.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*domain.ConversationState
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{conversations: make(map[string]*domain.ConversationState)}
}

// Load returns a copy of the stored state, or a fresh default for a new id.
func (s *MemoryStore) Load(ctx context.Context, id string) (*domain.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if state, ok := s.conversations[id]; ok {
		return state.Clone(), nil
	}
	return domain.NewConversationState(), nil
}

// Save stores a copy of the state under the id.
func (s *MemoryStore) Save(ctx context.Context, id string, state *domain.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[id] = state.Clone()
	return nil
}
