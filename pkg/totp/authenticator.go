package totp

import (
	"strings"
	"time"
)

// Enrollment is what a user receives when starting two-factor setup.
type Enrollment struct {
	Secret        string
	BackupCodes   []string
	EnrollmentURI string
}

// BackupCodeResult is the outcome of VerifyAndConsumeBackupCode.
type BackupCodeResult struct {
	Valid          bool
	RemainingCodes []string
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithClock injects a custom clock, primarily for testing.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithIssuer overrides the issuer encoded in enrollment URIs.
func WithIssuer(issuer string) Option {
	return func(a *Authenticator) {
		if strings.TrimSpace(issuer) != "" {
			a.issuer = issuer
		}
	}
}

// WithBackupCodeCount overrides how many backup codes an enrollment issues.
func WithBackupCodeCount(count int) Option {
	return func(a *Authenticator) {
		if count > 0 {
			a.backupCodeCount = count
		}
	}
}

// Authenticator bundles the enrollment and verification operations used by the
// two-factor flow. It holds no per-user state and is safe for concurrent use.
type Authenticator struct {
	issuer          string
	backupCodeCount int
	now             func() time.Time
}

// NewAuthenticator creates an Authenticator with the "APP" issuer, 10 backup
// codes and the system clock unless overridden.
func NewAuthenticator(opts ...Option) *Authenticator {
	a := &Authenticator{
		issuer:          DefaultIssuer,
		backupCodeCount: DefaultBackupCodeCount,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewAuthenticatorFromConfig applies cfg before the extra options.
func NewAuthenticatorFromConfig(cfg Config, opts ...Option) *Authenticator {
	return NewAuthenticator(append([]Option{
		WithIssuer(cfg.Issuer),
		WithBackupCodeCount(cfg.BackupCodeCount),
	}, opts...)...)
}

func (a *Authenticator) Issuer() string { return a.issuer }

// Now returns the authenticator's notion of the current time.
func (a *Authenticator) Now() time.Time { return a.now() }

// StartEnrollment creates a fresh secret, backup codes and the enrollment URI.
func (a *Authenticator) StartEnrollment(accountLabel string) (Enrollment, error) {
	if strings.TrimSpace(accountLabel) == "" {
		return Enrollment{}, ErrMissingAccountLabel
	}

	secret, err := GenerateSecret()
	if err != nil {
		return Enrollment{}, err
	}
	codes, err := GenerateBackupCodes(a.backupCodeCount)
	if err != nil {
		return Enrollment{}, err
	}
	uri, err := BuildEnrollmentURI(secret, accountLabel, a.issuer)
	if err != nil {
		return Enrollment{}, err
	}

	return Enrollment{
		Secret:        secret,
		BackupCodes:   codes,
		EnrollmentURI: uri,
	}, nil
}

// GenerateBackupCodes issues a new set using the configured count.
func (a *Authenticator) GenerateBackupCodes() ([]string, error) {
	return GenerateBackupCodes(a.backupCodeCount)
}

// GenerateCode returns the code for the authenticator's current window shifted by windowOffset.
func (a *Authenticator) GenerateCode(secret string, windowOffset int) (string, error) {
	return GenerateCodeAt(secret, a.now(), windowOffset)
}

// ConfirmEnrollment verifies the first code produced by the user's device.
func (a *Authenticator) ConfirmEnrollment(candidateCode, secret string) (bool, error) {
	return VerifyCodeAt(candidateCode, secret, a.now())
}

// VerifyLoginSecondFactor verifies a code presented during login step two.
func (a *Authenticator) VerifyLoginSecondFactor(candidateCode, secret string) (bool, error) {
	return VerifyCodeAt(candidateCode, secret, a.now())
}

// VerifyAndConsumeBackupCode checks candidate against currentCodes and, when it
// matches, returns the set without it. currentCodes is never modified.
func (a *Authenticator) VerifyAndConsumeBackupCode(candidate string, currentCodes []string) BackupCodeResult {
	remaining, ok := BackupCodes(currentCodes).Remove(candidate)
	if !ok {
		return BackupCodeResult{Valid: false, RemainingCodes: cloneCodes(currentCodes)}
	}
	return BackupCodeResult{Valid: true, RemainingCodes: remaining}
}

func cloneCodes(codes []string) []string {
	out := make([]string, len(codes))
	copy(out, codes)
	return out
}
