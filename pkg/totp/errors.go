package totp

import "errors"

var (
	ErrInvalidSecret               = errors.New("invalid TOTP secret")
	ErrFailedToGenerateSecret      = errors.New("failed to generate TOTP secret")
	ErrInvalidBackupCodeCount      = errors.New("invalid backup code count, must be greater than 0")
	ErrFailedToGenerateBackupCodes = errors.New("failed to generate backup codes")
	ErrMissingAccountLabel         = errors.New("missing account label")
)
