package store

import (
	"time"

	"github.com/google/uuid"
)

// TwoFactor is the persisted second-factor state of one user. A user without a
// row is reported as the zero value with UserID set.
type TwoFactor struct {
	UserID      uuid.UUID
	Secret      string
	Enabled     bool
	BackupCodes []string
	Version     int64
	UpdatedAt   time.Time
}

// VaultEntry is one stored credential. EncryptedPassword holds the
// "hex(iv):hex(ciphertext)" form and is never returned by list queries.
type VaultEntry struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	ServiceName       string
	Username          string
	Email             string
	URL               string
	Notes             string
	Category          string
	EncryptedPassword string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EntryFilter narrows ListEntries. Search matches service name, username and
// email case-insensitively.
type EntryFilter struct {
	Category string
	Search   string
}

// SecurityEvent is one audit record. It never contains secret material.
type SecurityEvent struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Action     string
	Result     string
	EntityType string
	EntityID   string
	IPAddress  string
	UserAgent  string
	RequestID  string
	Metadata   map[string]any
	CreatedAt  time.Time
}

// ActivitySummary aggregates a user's events since a point in time.
type ActivitySummary struct {
	Count        int
	LastActivity *time.Time
}
