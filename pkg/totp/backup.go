package totp

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"slices"
	"strings"
)

const (
	DefaultBackupCodeCount = 10
	backupCodeBytes        = 4 // 8 hex characters
)

// GenerateBackupCodes creates count single-use recovery codes, each 4 random
// bytes rendered as 8 uppercase hex characters. Duplicates are redrawn.
func GenerateBackupCodes(count int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidBackupCodeCount
	}

	codes := make(BackupCodes, 0, count)
	buf := make([]byte, backupCodeBytes)
	for len(codes) < count {
		if _, err := rand.Read(buf); err != nil {
			return nil, errors.Join(ErrFailedToGenerateBackupCodes, err)
		}
		code := strings.ToUpper(hex.EncodeToString(buf))
		if codes.Contains(code) {
			continue
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// NormalizeBackupCode trims and upper-cases a user supplied code.
func NormalizeBackupCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// BackupCodes is an ordered set of backup codes. Methods never mutate the
// receiver; they return a new set.
type BackupCodes []string

// Contains reports whether the set holds candidate, ignoring case.
func (b BackupCodes) Contains(candidate string) bool {
	return b.index(candidate) >= 0
}

// Add returns the set with code appended, unless it is already present.
func (b BackupCodes) Add(code string) BackupCodes {
	code = NormalizeBackupCode(code)
	if code == "" || b.Contains(code) {
		return slices.Clone(b)
	}
	return append(slices.Clone(b), code)
}

// Remove returns the set without candidate and whether it was present.
func (b BackupCodes) Remove(candidate string) (BackupCodes, bool) {
	i := b.index(candidate)
	if i < 0 {
		return slices.Clone(b), false
	}
	return slices.Delete(slices.Clone(b), i, i+1), true
}

func (b BackupCodes) Len() int {
	return len(b)
}

func (b BackupCodes) index(candidate string) int {
	candidate = NormalizeBackupCode(candidate)
	if candidate == "" {
		return -1
	}
	found := -1
	for i, code := range b {
		// Scan the whole set so timing does not reveal the position.
		if subtle.ConstantTimeCompare([]byte(code), []byte(candidate)) == 1 && found < 0 {
			found = i
		}
	}
	return found
}

// VerifyBackupCode reports whether candidate is one of codes, ignoring case.
func VerifyBackupCode(candidate string, codes []string) bool {
	return BackupCodes(codes).Contains(candidate)
}

// ConsumeBackupCode returns codes without candidate. The caller must persist the
// result so the code cannot be used again.
func ConsumeBackupCode(candidate string, codes []string) []string {
	remaining, _ := BackupCodes(codes).Remove(candidate)
	return remaining
}
