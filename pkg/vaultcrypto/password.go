package vaultcrypto

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const DefaultPasswordLength = 16

// PasswordCharset is the alphabet used by GeneratePassword.
const PasswordCharset = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"!@#$%^&*()_+-=[]{}|;:,.<>?~/"

// GeneratePassword returns length characters drawn uniformly from
// PasswordCharset. rand.Int samples without modulo bias.
func GeneratePassword(length int) (string, error) {
	if length < 1 {
		return "", ErrInvalidPasswordLength
	}

	upper := big.NewInt(int64(len(PasswordCharset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, upper)
		if err != nil {
			return "", errors.Join(ErrCrypto, err)
		}
		out[i] = PasswordCharset[n.Int64()]
	}
	return string(out), nil
}
