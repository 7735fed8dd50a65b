package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TwoFactorStore interface {
	// GetTwoFactor never returns ErrNotFound; unknown users are disabled.
	GetTwoFactor(ctx context.Context, userID uuid.UUID) (TwoFactor, error)
	// SavePendingSecret stores a not-yet-enabled secret and clears backup
	// codes. ErrVersionConflict when two-factor is already enabled.
	SavePendingSecret(ctx context.Context, userID uuid.UUID, secret string) error
	// EnableTwoFactor activates the pending secret with codes.
	// ErrVersionConflict when the pending secret no longer matches.
	EnableTwoFactor(ctx context.Context, userID uuid.UUID, secret string, codes []string) error
	DisableTwoFactor(ctx context.Context, userID uuid.UUID) error
	// ReplaceBackupCodes swaps the code set when the stored version equals
	// expectedVersion and returns the new version.
	ReplaceBackupCodes(ctx context.Context, userID uuid.UUID, expectedVersion int64, codes []string) (int64, error)
}

type VaultStore interface {
	CreateEntry(ctx context.Context, e VaultEntry) (VaultEntry, error)
	GetEntry(ctx context.Context, userID, id uuid.UUID) (VaultEntry, error)
	UpdateEntry(ctx context.Context, e VaultEntry) (VaultEntry, error)
	DeleteEntry(ctx context.Context, userID, id uuid.UUID) error
	// ListEntries returns entries newest-updated first with EncryptedPassword blank.
	ListEntries(ctx context.Context, userID uuid.UUID, f EntryFilter) ([]VaultEntry, error)
}

type EventStore interface {
	AppendEvent(ctx context.Context, ev SecurityEvent) (SecurityEvent, error)
	// ListEvents returns events newest first.
	ListEvents(ctx context.Context, userID uuid.UUID, limit, offset int) ([]SecurityEvent, error)
	SummarizeEvents(ctx context.Context, userID uuid.UUID, since time.Time) (ActivitySummary, error)
}

// PendingStore holds backup codes issued at enrollment until the user
// confirms the first TOTP code.
type PendingStore interface {
	PutPending(ctx context.Context, userID uuid.UUID, codes []string, ttl time.Duration) error
	// GetPending returns ErrNotFound when nothing is stored or it expired.
	GetPending(ctx context.Context, userID uuid.UUID) ([]string, error)
	DeletePending(ctx context.Context, userID uuid.UUID) error
}

// Store is the full persistence surface of the application.
type Store interface {
	TwoFactorStore
	VaultStore
	EventStore
}
