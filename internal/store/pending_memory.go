package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type pendingItem struct {
	codes     []string
	expiresAt time.Time
}

// MemoryPendingStore is a PendingStore with lazy expiry.
type MemoryPendingStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]pendingItem
	now   func() time.Time
}

var _ PendingStore = (*MemoryPendingStore)(nil)

func NewMemoryPendingStore(now func() time.Time) *MemoryPendingStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryPendingStore{items: make(map[uuid.UUID]pendingItem), now: now}
}

func (s *MemoryPendingStore) PutPending(_ context.Context, userID uuid.UUID, codes []string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[userID] = pendingItem{codes: slices.Clone(codes), expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryPendingStore) GetPending(_ context.Context, userID uuid.UUID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if !s.now().Before(item.expiresAt) {
		delete(s.items, userID)
		return nil, ErrNotFound
	}
	return slices.Clone(item.codes), nil
}

func (s *MemoryPendingStore) DeletePending(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, userID)
	return nil
}
