package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryClock overrides the timestamp source.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) {
		if now != nil {
			m.now = now
		}
	}
}

// MemoryStore is a mutex-guarded Store for tests and single-process runs.
type MemoryStore struct {
	mu        sync.RWMutex
	twoFactor map[uuid.UUID]TwoFactor
	entries   map[uuid.UUID]VaultEntry
	events    []SecurityEvent
	now       func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		twoFactor: make(map[uuid.UUID]TwoFactor),
		entries:   make(map[uuid.UUID]VaultEntry),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryStore) GetTwoFactor(_ context.Context, userID uuid.UUID) (TwoFactor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tf, ok := m.twoFactor[userID]
	if !ok {
		return TwoFactor{UserID: userID}, nil
	}
	tf.BackupCodes = slices.Clone(tf.BackupCodes)
	return tf, nil
}

func (m *MemoryStore) SavePendingSecret(_ context.Context, userID uuid.UUID, secret string) error {
	if secret == "" {
		return fmt.Errorf("%w: empty secret", ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tf := m.twoFactor[userID]
	if tf.Enabled {
		return ErrVersionConflict
	}
	m.twoFactor[userID] = TwoFactor{
		UserID:    userID,
		Secret:    secret,
		Version:   tf.Version + 1,
		UpdatedAt: m.now(),
	}
	return nil
}

func (m *MemoryStore) EnableTwoFactor(_ context.Context, userID uuid.UUID, secret string, codes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tf, ok := m.twoFactor[userID]
	if !ok || tf.Enabled || tf.Secret == "" || tf.Secret != secret {
		return ErrVersionConflict
	}
	tf.Enabled = true
	tf.BackupCodes = slices.Clone(codes)
	tf.Version++
	tf.UpdatedAt = m.now()
	m.twoFactor[userID] = tf
	return nil
}

func (m *MemoryStore) DisableTwoFactor(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tf, ok := m.twoFactor[userID]
	if !ok {
		return nil
	}
	m.twoFactor[userID] = TwoFactor{
		UserID:    userID,
		Version:   tf.Version + 1,
		UpdatedAt: m.now(),
	}
	return nil
}

func (m *MemoryStore) ReplaceBackupCodes(_ context.Context, userID uuid.UUID, expectedVersion int64, codes []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tf, ok := m.twoFactor[userID]
	if !ok || !tf.Enabled || tf.Version != expectedVersion {
		return 0, ErrVersionConflict
	}
	tf.BackupCodes = slices.Clone(codes)
	tf.Version++
	tf.UpdatedAt = m.now()
	m.twoFactor[userID] = tf
	return tf.Version, nil
}

func (m *MemoryStore) CreateEntry(_ context.Context, e VaultEntry) (VaultEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if _, exists := m.entries[e.ID]; exists {
		return VaultEntry{}, fmt.Errorf("%w: duplicate entry id", ErrInvalidArgument)
	}
	now := m.now()
	e.CreatedAt, e.UpdatedAt = now, now
	m.entries[e.ID] = e
	return e, nil
}

func (m *MemoryStore) GetEntry(_ context.Context, userID, id uuid.UUID) (VaultEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok || e.UserID != userID {
		return VaultEntry{}, ErrNotFound
	}
	return e, nil
}

func (m *MemoryStore) UpdateEntry(_ context.Context, e VaultEntry) (VaultEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.entries[e.ID]
	if !ok || cur.UserID != e.UserID {
		return VaultEntry{}, ErrNotFound
	}
	e.CreatedAt = cur.CreatedAt
	e.UpdatedAt = m.now()
	m.entries[e.ID] = e
	return e, nil
}

func (m *MemoryStore) DeleteEntry(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok || e.UserID != userID {
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *MemoryStore) ListEntries(_ context.Context, userID uuid.UUID, f EntryFilter) ([]VaultEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	search := strings.ToLower(f.Search)
	out := make([]VaultEntry, 0)
	for e := range maps.Values(m.entries) {
		if e.UserID != userID {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.ServiceName), search) &&
			!strings.Contains(strings.ToLower(e.Username), search) &&
			!strings.Contains(strings.ToLower(e.Email), search) {
			continue
		}
		e.EncryptedPassword = ""
		out = append(out, e)
	}

	slices.SortFunc(out, func(a, b VaultEntry) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (m *MemoryStore) AppendEvent(_ context.Context, ev SecurityEvent) (SecurityEvent, error) {
	if ev.Action == "" {
		return SecurityEvent{}, fmt.Errorf("%w: action is required", ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = m.now()
	}
	ev.Metadata = maps.Clone(ev.Metadata)
	m.events = append(m.events, ev)
	return ev, nil
}

func (m *MemoryStore) ListEvents(_ context.Context, userID uuid.UUID, limit, offset int) ([]SecurityEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var mine []SecurityEvent
	for _, ev := range m.events {
		if ev.UserID == userID {
			mine = append(mine, ev)
		}
	}
	slices.SortStableFunc(mine, func(a, b SecurityEvent) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if offset >= len(mine) {
		return []SecurityEvent{}, nil
	}
	mine = mine[offset:]
	if limit > 0 && limit < len(mine) {
		mine = mine[:limit]
	}
	return slices.Clone(mine), nil
}

func (m *MemoryStore) SummarizeEvents(_ context.Context, userID uuid.UUID, since time.Time) (ActivitySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sum ActivitySummary
	for _, ev := range m.events {
		if ev.UserID != userID || ev.CreatedAt.Before(since) {
			continue
		}
		sum.Count++
		if sum.LastActivity == nil || ev.CreatedAt.After(*sum.LastActivity) {
			t := ev.CreatedAt
			sum.LastActivity = &t
		}
	}
	return sum, nil
}
