package session

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryRepository keeps sessions in process memory, suitable for local
// development and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryRepository constructs an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]Session)}
}

// Get implements Repository.
func (r *MemoryRepository) Get(ctx context.Context, userID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Put implements Repository. The user id must be non-empty.
func (r *MemoryRepository) Put(ctx context.Context, sess Session) error {
	if strings.TrimSpace(sess.UserID) == "" {
		return ErrMissingUserID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := r.sessions[sess.UserID]; ok {
		sess.CreatedAt = existing.CreatedAt
	} else if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now

	r.sessions[sess.UserID] = sess
	return nil
}

// Clear implements Repository. Clearing an absent session is a no-op.
func (r *MemoryRepository) Clear(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
	return nil
}
