package twofactor

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAlreadyEnabled   = errors.New("two-factor authentication is already enabled")
	ErrNotEnabled       = errors.New("two-factor authentication is not enabled")
	ErrNotPending       = errors.New("two-factor enrollment has not been started")
	ErrInvalidCode      = errors.New("invalid verification code")
	ErrCodeRequired     = errors.New("verification code or backup code is required")
	ErrRateLimited      = errors.New("too many verification attempts")
	ErrConcurrentUpdate = errors.New("two-factor state changed concurrently, retry")
)

// RateLimitError carries the wait time of a throttled attempt. It matches
// ErrRateLimited with errors.Is.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s, retry in %s", ErrRateLimited, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
