// Package store persists two-factor state, vault entries and security events.
//
// Services depend on the TwoFactorStore, VaultStore, EventStore and
// PendingStore interfaces. MemoryStore and PostgresStore implement the first
// three with identical semantics; MemoryPendingStore and RedisPendingStore
// implement PendingStore.
//
// Two-factor rows carry a version counter that every write increments.
// ReplaceBackupCodes only succeeds when the caller's version is still current,
// which is how a backup code is guaranteed to be spent at most once.
package store
