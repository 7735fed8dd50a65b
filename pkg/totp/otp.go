package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	Digits     = 6  // Code length
	Period     = 30 // Window length in seconds
	SecretSize = 20 // 160-bit secret (RFC 4226 recommendation)

	// DriftWindows is how many windows before and after the current one are accepted.
	DriftWindows = 1
)

// GenerateSecret returns 20 random bytes encoded as standard base64.
func GenerateSecret() (string, error) {
	secret := make([]byte, SecretSize)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecret, err)
	}
	return base64.StdEncoding.EncodeToString(secret), nil
}

// Window returns the 30-second TOTP window containing t.
func Window(t time.Time) int64 {
	return t.Unix() / Period
}

// GenerateCode returns the code for the current window shifted by windowOffset.
func GenerateCode(secret string, windowOffset int) (string, error) {
	return GenerateCodeAt(secret, time.Now(), windowOffset)
}

// GenerateCodeAt returns the code for the window containing t shifted by windowOffset.
func GenerateCodeAt(secret string, t time.Time, windowOffset int) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	return formatCode(GenerateHOTP(key, Window(t)+int64(windowOffset), Digits)), nil
}

// VerifyCode reports whether candidate matches the code of the previous, current
// or next window. A wrong or malformed candidate yields false without error.
func VerifyCode(candidate, secret string) (bool, error) {
	return VerifyCodeAt(candidate, secret, time.Now())
}

// VerifyCodeAt is VerifyCode evaluated at time t.
func VerifyCodeAt(candidate, secret string, t time.Time) (bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	candidate = strings.TrimSpace(candidate)
	if !isNumeric(candidate, Digits) {
		return false, nil
	}

	window := Window(t)
	for offset := -DriftWindows; offset <= DriftWindows; offset++ {
		code := formatCode(GenerateHOTP(key, window+int64(offset), Digits))
		if subtle.ConstantTimeCompare([]byte(code), []byte(candidate)) == 1 {
			return true, nil
		}
	}
	return false, nil
}

// GenerateHOTP implements the RFC 4226 HMAC-based One-Time Password algorithm.
func GenerateHOTP(key []byte, counter int64, digits int) int {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	hash := mac.Sum(nil)

	// Dynamic truncation: low nibble of the last byte selects 4 bytes, MSB cleared.
	offset := hash[len(hash)-1] & 0x0f
	code := int(binary.BigEndian.Uint32(hash[offset:offset+4]) & 0x7fffffff)

	return code % int(math.Pow10(digits))
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrInvalidSecret
	}
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	if len(key) == 0 {
		return nil, ErrInvalidSecret
	}
	return key, nil
}

func formatCode(code int) string {
	return fmt.Sprintf("%0*d", Digits, code)
}

func isNumeric(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
