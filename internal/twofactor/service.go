package twofactor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/lifevault/internal/audit"
	"github.com/dmitrymomot/lifevault/internal/store"
	"github.com/dmitrymomot/lifevault/pkg/logger"
	"github.com/dmitrymomot/lifevault/pkg/ratelimiter"
	"github.com/dmitrymomot/lifevault/pkg/totp"
)

const reasonInvalidCode = "invalid_code"

// Credentials is a second factor presented by the user: a TOTP code or a
// backup code. Code wins when both are set.
type Credentials struct {
	Code       string
	BackupCode string
}

func (c Credentials) empty() bool {
	return strings.TrimSpace(c.Code) == "" && strings.TrimSpace(c.BackupCode) == ""
}

// Status is the current two-factor state of a user.
type Status struct {
	State                State
	BackupCodesRemaining int
}

// Summary combines Status with recent security activity.
type Summary struct {
	Status
	RecentActivityCount int
	LastActivity        *time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLimiter throttles code checks per user. Without it attempts are unlimited.
func WithLimiter(l ratelimiter.Limiter) Option {
	return func(s *Service) { s.limiter = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithConfig(cfg Config) Option {
	return func(s *Service) { s.cfg = cfg.withDefaults() }
}

type Service struct {
	store   store.TwoFactorStore
	pending store.PendingStore
	auth    *totp.Authenticator
	audit   *audit.Recorder
	limiter ratelimiter.Limiter
	log     *slog.Logger
	cfg     Config
}

func NewService(tf store.TwoFactorStore, pending store.PendingStore, auth *totp.Authenticator, recorder *audit.Recorder, opts ...Option) *Service {
	s := &Service{
		store:   tf,
		pending: pending,
		auth:    auth,
		audit:   recorder,
		log:     logger.Discard(),
		cfg:     Config{}.withDefaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("twofactor"))
	return s
}

// Enable starts or restarts enrollment. The secret is stored immediately as
// pending; the backup codes are held in the pending store until Confirm.
func (s *Service) Enable(ctx context.Context, userID uuid.UUID, accountLabel string) (totp.Enrollment, error) {
	tf, err := s.store.GetTwoFactor(ctx, userID)
	if err != nil {
		return totp.Enrollment{}, err
	}
	if _, err := advance(ctx, tf, eventEnable, nil); err != nil {
		return totp.Enrollment{}, err
	}

	enrollment, err := s.auth.StartEnrollment(accountLabel)
	if err != nil {
		return totp.Enrollment{}, err
	}

	if err := s.store.SavePendingSecret(ctx, userID, enrollment.Secret); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return totp.Enrollment{}, ErrAlreadyEnabled
		}
		return totp.Enrollment{}, err
	}

	if err := s.pending.PutPending(ctx, userID, enrollment.BackupCodes, s.cfg.PendingTTL); err != nil {
		// Confirm issues a fresh set when the pending one is missing.
		s.log.WarnContext(ctx, "failed to cache pending backup codes", logger.UserID(userID), logger.Error(err))
	}

	s.audit.Record(ctx, userID, audit.ActionTwoFactorEnable)
	return enrollment, nil
}

// Confirm activates two-factor when code matches the pending secret and
// returns the activated backup codes.
func (s *Service) Confirm(ctx context.Context, userID uuid.UUID, code string) ([]string, error) {
	tf, err := s.store.GetTwoFactor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := advance(ctx, tf, eventConfirm, nil); err != nil {
		return nil, err
	}
	if err := s.throttle(ctx, userID); err != nil {
		return nil, err
	}

	ok, err := s.auth.ConfirmEnrollment(normalizeCode(code), tf.Secret)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.audit.Record(ctx, userID, audit.ActionTwoFactorConfirm, audit.Failed(reasonInvalidCode))
		return nil, ErrInvalidCode
	}

	codes, err := s.pending.GetPending(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.WarnContext(ctx, "failed to read pending backup codes", logger.UserID(userID), logger.Error(err))
		}
		if codes, err = s.auth.GenerateBackupCodes(); err != nil {
			return nil, err
		}
	}

	if err := s.store.EnableTwoFactor(ctx, userID, tf.Secret, codes); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return nil, ErrConcurrentUpdate
		}
		return nil, err
	}

	s.forgetPending(ctx, userID)
	s.resetThrottle(ctx, userID)
	s.audit.Record(ctx, userID, audit.ActionTwoFactorConfirm)
	return codes, nil
}

// Disable turns two-factor off. An enabled user must present a valid TOTP or
// backup code; a pending enrollment is abandoned without one.
func (s *Service) Disable(ctx context.Context, userID uuid.UUID, creds Credentials) error {
	tf, err := s.store.GetTwoFactor(ctx, userID)
	if err != nil {
		return err
	}
	state := StateOf(tf)
	if _, err := advance(ctx, tf, eventDisable, creds); err != nil {
		return err
	}

	if state == StateEnabled {
		if err := s.throttle(ctx, userID); err != nil {
			return err
		}
		ok, err := s.checkCredentials(tf, creds)
		if err != nil {
			return err
		}
		if !ok {
			s.audit.Record(ctx, userID, audit.ActionTwoFactorDisable, audit.Failed(reasonInvalidCode))
			return ErrInvalidCode
		}
	}

	if err := s.store.DisableTwoFactor(ctx, userID); err != nil {
		return err
	}

	s.forgetPending(ctx, userID)
	s.resetThrottle(ctx, userID)
	s.audit.Record(ctx, userID, audit.ActionTwoFactorDisable, audit.WithMetadata("from", string(state)))
	return nil
}

// VerifyLogin checks the TOTP code of login step two.
func (s *Service) VerifyLogin(ctx context.Context, userID uuid.UUID, code string) error {
	tf, err := s.requireEnabled(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.throttle(ctx, userID); err != nil {
		return err
	}

	ok, err := s.auth.VerifyLoginSecondFactor(normalizeCode(code), tf.Secret)
	if err != nil {
		return err
	}
	if !ok {
		s.audit.Record(ctx, userID, audit.ActionTwoFactorLogin, audit.Failed(reasonInvalidCode))
		return ErrInvalidCode
	}

	s.resetThrottle(ctx, userID)
	s.audit.Record(ctx, userID, audit.ActionTwoFactorLogin)
	return nil
}

// UseBackupCode spends one backup code and returns how many remain.
func (s *Service) UseBackupCode(ctx context.Context, userID uuid.UUID, code string) (int, error) {
	if _, err := s.requireEnabled(ctx, userID); err != nil {
		return 0, err
	}
	if err := s.throttle(ctx, userID); err != nil {
		return 0, err
	}

	// One retry: a conflicting writer either spent this same code, which the
	// re-read then rejects, or changed the set for another reason.
	for range 2 {
		tf, err := s.requireEnabled(ctx, userID)
		if err != nil {
			return 0, err
		}

		res := s.auth.VerifyAndConsumeBackupCode(code, tf.BackupCodes)
		if !res.Valid {
			s.audit.Record(ctx, userID, audit.ActionBackupCodeUsed, audit.Failed(reasonInvalidCode))
			return 0, ErrInvalidCode
		}

		_, err = s.store.ReplaceBackupCodes(ctx, userID, tf.Version, res.RemainingCodes)
		if errors.Is(err, store.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return 0, err
		}

		remaining := len(res.RemainingCodes)
		s.resetThrottle(ctx, userID)
		s.audit.Record(ctx, userID, audit.ActionBackupCodeUsed, audit.WithMetadata("remaining", remaining))
		if remaining == 0 {
			s.log.InfoContext(ctx, "last backup code used", logger.UserID(userID))
		}
		return remaining, nil
	}

	return 0, ErrConcurrentUpdate
}

// RegenerateBackupCodes replaces the backup code set after a valid TOTP code.
func (s *Service) RegenerateBackupCodes(ctx context.Context, userID uuid.UUID, code string) ([]string, error) {
	tf, err := s.requireEnabled(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.throttle(ctx, userID); err != nil {
		return nil, err
	}

	ok, err := s.auth.VerifyLoginSecondFactor(normalizeCode(code), tf.Secret)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.audit.Record(ctx, userID, audit.ActionBackupCodesRegenerated, audit.Failed(reasonInvalidCode))
		return nil, ErrInvalidCode
	}

	codes, err := s.auth.GenerateBackupCodes()
	if err != nil {
		return nil, err
	}
	if _, err := s.store.ReplaceBackupCodes(ctx, userID, tf.Version, codes); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return nil, ErrConcurrentUpdate
		}
		return nil, err
	}

	s.resetThrottle(ctx, userID)
	s.audit.Record(ctx, userID, audit.ActionBackupCodesRegenerated)
	return codes, nil
}

func (s *Service) Status(ctx context.Context, userID uuid.UUID) (Status, error) {
	tf, err := s.store.GetTwoFactor(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	st := Status{State: StateOf(tf)}
	if st.State == StateEnabled {
		st.BackupCodesRemaining = len(tf.BackupCodes)
	}
	return st, nil
}

// Summary reports Status plus activity within the configured window.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID) (Summary, error) {
	st, err := s.Status(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	act, err := s.audit.Summary(ctx, userID, s.cfg.ActivityWindow)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Status:              st,
		RecentActivityCount: act.Count,
		LastActivity:        act.LastActivity,
	}, nil
}

// Events lists the user's security events, newest first.
func (s *Service) Events(ctx context.Context, userID uuid.UUID, limit, offset int) ([]store.SecurityEvent, error) {
	return s.audit.List(ctx, userID, limit, offset)
}

func (s *Service) requireEnabled(ctx context.Context, userID uuid.UUID) (store.TwoFactor, error) {
	tf, err := s.store.GetTwoFactor(ctx, userID)
	if err != nil {
		return store.TwoFactor{}, err
	}
	if _, err := advance(ctx, tf, eventVerify, nil); err != nil {
		return store.TwoFactor{}, err
	}
	return tf, nil
}

func (s *Service) checkCredentials(tf store.TwoFactor, creds Credentials) (bool, error) {
	if strings.TrimSpace(creds.Code) != "" {
		return s.auth.VerifyLoginSecondFactor(normalizeCode(creds.Code), tf.Secret)
	}
	return totp.VerifyBackupCode(creds.BackupCode, tf.BackupCodes), nil
}

func (s *Service) throttle(ctx context.Context, userID uuid.UUID) error {
	if s.limiter == nil {
		return nil
	}
	res, err := s.limiter.Allow(ctx, userID.String())
	if err != nil {
		return err
	}
	if !res.Allowed() {
		s.audit.Record(ctx, userID, audit.ActionRateLimited, audit.Failed("rate_limited"))
		return &RateLimitError{RetryAfter: res.RetryAfter()}
	}
	return nil
}

func (s *Service) resetThrottle(ctx context.Context, userID uuid.UUID) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Reset(ctx, userID.String()); err != nil {
		s.log.WarnContext(ctx, "failed to reset attempt limiter", logger.UserID(userID), logger.Error(err))
	}
}

func (s *Service) forgetPending(ctx context.Context, userID uuid.UUID) {
	if err := s.pending.DeletePending(ctx, userID); err != nil {
		s.log.WarnContext(ctx, "failed to drop pending backup codes", logger.UserID(userID), logger.Error(err))
	}
}

// normalizeCode drops the spaces authenticator apps show inside codes.
func normalizeCode(code string) string {
	return strings.ReplaceAll(strings.TrimSpace(code), " ", "")
}
