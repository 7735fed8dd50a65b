package vaultcrypto

import "errors"

var (
	ErrCrypto                = errors.New("vault crypto primitive unavailable")
	ErrDecryption            = errors.New("failed to decrypt vault secret")
	ErrMasterKeyNotSet       = errors.New("vault master key not set")
	ErrMalformedCiphertext   = errors.New("malformed encrypted secret")
	ErrInvalidPadding        = errors.New("invalid PKCS#7 padding")
	ErrInvalidPasswordLength = errors.New("invalid password length, must be greater than 0")
)
