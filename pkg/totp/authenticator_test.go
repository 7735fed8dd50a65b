package totp_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lifevault/pkg/totp"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestAuthenticatorDefaults(t *testing.T) {
	t.Parallel()
	auth := totp.NewAuthenticator()
	assert.Equal(t, totp.DefaultIssuer, auth.Issuer())

	enrollment, err := auth.StartEnrollment("user@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, enrollment.Secret)
	assert.Len(t, enrollment.BackupCodes, totp.DefaultBackupCodeCount)
	assert.Contains(t, enrollment.EnrollmentURI, "otpauth://totp/APP:user%40example.com?secret=")
}

func TestAuthenticatorOptions(t *testing.T) {
	t.Parallel()
	auth := totp.NewAuthenticatorFromConfig(
		totp.Config{Issuer: "Organizer", BackupCodeCount: 4},
		totp.WithBackupCodeCount(0), // ignored
		totp.WithIssuer(" "),        // ignored
	)
	assert.Equal(t, "Organizer", auth.Issuer())

	enrollment, err := auth.StartEnrollment("bob")
	require.NoError(t, err)
	assert.Len(t, enrollment.BackupCodes, 4)
	assert.Contains(t, enrollment.EnrollmentURI, "otpauth://totp/Organizer:bob?")
}

func TestAuthenticatorStartEnrollmentRequiresLabel(t *testing.T) {
	t.Parallel()
	_, err := totp.NewAuthenticator().StartEnrollment("")
	assert.ErrorIs(t, err, totp.ErrMissingAccountLabel)
}

func TestAuthenticatorEndToEnd(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	auth := totp.NewAuthenticator(totp.WithClock(clock.Now))

	enrollment, err := auth.StartEnrollment("user@example.com")
	require.NoError(t, err)
	require.Len(t, enrollment.BackupCodes, 10)

	code, err := auth.GenerateCode(enrollment.Secret, 0)
	require.NoError(t, err)
	ok, err := auth.ConfirmEnrollment(code, enrollment.Secret)
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(20 * time.Second)
	ok, err = auth.VerifyLoginSecondFactor(code, enrollment.Secret)
	require.NoError(t, err)
	assert.True(t, ok, "code from the same or adjacent window must verify")

	current, err := auth.GenerateCode(enrollment.Secret, 0)
	require.NoError(t, err)
	guess := "000000"
	if guess == current {
		guess = "000001"
	}
	prev, _ := auth.GenerateCode(enrollment.Secret, -1)
	next, _ := auth.GenerateCode(enrollment.Secret, 1)
	if guess != prev && guess != next {
		ok, err = auth.VerifyLoginSecondFactor(guess, enrollment.Secret)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	clock.Advance(5 * time.Minute)
	ok, err = auth.VerifyLoginSecondFactor(code, enrollment.Secret)
	require.NoError(t, err)
	assert.False(t, ok, "stale code must be rejected")
}

func TestAuthenticatorVerifyAndConsumeBackupCode(t *testing.T) {
	t.Parallel()
	auth := totp.NewAuthenticator()
	codes, err := auth.GenerateBackupCodes()
	require.NoError(t, err)
	require.Len(t, codes, 10)

	res := auth.VerifyAndConsumeBackupCode(codes[0], codes)
	require.True(t, res.Valid)
	assert.Len(t, res.RemainingCodes, 9)
	assert.Equal(t, codes[1:], res.RemainingCodes)

	again := auth.VerifyAndConsumeBackupCode(codes[0], res.RemainingCodes)
	assert.False(t, again.Valid)
	assert.Equal(t, res.RemainingCodes, again.RemainingCodes)
}
