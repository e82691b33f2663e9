// Package store persists conversation state keyed by conversation id.
package store

import (
	"context"
	"fmt"

	"github.com/soyeahso/voyant/internal/domain"
)

// PersistenceError signals the backing store is unreachable. It is fatal
// for the turn and must be surfaced distinctly: retrying the turn without
// confirming whether the prior write landed is unsafe.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConversationStore loads and saves conversation state.
//
// Load never fails for an absent id; it returns a fresh default state.
// Implementations must be safe for concurrent use across different ids;
// per-id turn serialization is the session runner's job.
type ConversationStore interface {
	Load(ctx context.Context, id string) (*domain.ConversationState, error)
	Save(ctx context.Context, id string, state *domain.ConversationState) error
}
