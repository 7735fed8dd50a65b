// Package audit records security events for the activity feed and summary.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/lifevault/internal/store"
	"github.com/dmitrymomot/lifevault/pkg/logger"
)

// Result values stored with each event.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Actions.
const (
	ActionTwoFactorEnable        = "2fa.enable"
	ActionTwoFactorConfirm       = "2fa.confirm"
	ActionTwoFactorDisable       = "2fa.disable"
	ActionTwoFactorLogin         = "2fa.login"
	ActionBackupCodeUsed         = "2fa.backup_code"
	ActionBackupCodesRegenerated = "2fa.backup_codes_regenerated"
	ActionRateLimited            = "2fa.rate_limited"
	ActionVaultCreate            = "vault.create"
	ActionVaultReveal            = "vault.reveal"
	ActionVaultUpdate            = "vault.update"
	ActionVaultDelete            = "vault.delete"
)

// EventOption customises an event before it is stored.
type EventOption func(*store.SecurityEvent)

func WithEntity(kind, id string) EventOption {
	return func(e *store.SecurityEvent) {
		e.EntityType = kind
		e.EntityID = id
	}
}

func WithMetadata(key string, value any) EventOption {
	return func(e *store.SecurityEvent) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}

// Failed marks the event as a failure with a short reason.
func Failed(reason string) EventOption {
	return func(e *store.SecurityEvent) {
		e.Result = ResultFailure
		if reason != "" {
			WithMetadata("reason", reason)(e)
		}
	}
}

// Option configures a Recorder.
type Option func(*Recorder)

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.log = l
		}
	}
}

// Recorder appends events to an EventStore and mirrors them to the log.
type Recorder struct {
	events store.EventStore
	log    *slog.Logger
	now    func() time.Time
}

func NewRecorder(events store.EventStore, opts ...Option) *Recorder {
	if events == nil {
		panic("audit: event store cannot be nil")
	}
	r := &Recorder{events: events, log: logger.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record stores one event. Storage failures are logged and swallowed so an
// audit outage never blocks the audited operation.
func (r *Recorder) Record(ctx context.Context, userID uuid.UUID, action string, opts ...EventOption) {
	ev := store.SecurityEvent{
		UserID:    userID,
		Action:    action,
		Result:    ResultSuccess,
		CreatedAt: r.now(),
	}
	if meta, ok := RequestMetaFromContext(ctx); ok {
		ev.IPAddress = meta.IP
		ev.UserAgent = meta.UserAgent
		ev.RequestID = meta.RequestID
	}
	for _, opt := range opts {
		opt(&ev)
	}

	level := slog.LevelInfo
	if ev.Result == ResultFailure {
		level = slog.LevelWarn
	}
	r.log.Log(ctx, level, "security event",
		logger.Event(ev.Action),
		logger.UserID(ev.UserID),
		logger.Status(ev.Result),
	)

	if _, err := r.events.AppendEvent(ctx, ev); err != nil {
		r.log.ErrorContext(ctx, "failed to store security event",
			logger.Event(ev.Action),
			logger.UserID(ev.UserID),
			logger.Error(err),
		)
	}
}

// List returns a page of the user's events, newest first.
func (r *Recorder) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]store.SecurityEvent, error) {
	return r.events.ListEvents(ctx, userID, limit, offset)
}

// Summary aggregates the user's events within the trailing window.
func (r *Recorder) Summary(ctx context.Context, userID uuid.UUID, window time.Duration) (store.ActivitySummary, error) {
	return r.events.SummarizeEvents(ctx, userID, r.now().Add(-window))
}
