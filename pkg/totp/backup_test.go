package totp_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lifevault/pkg/totp"
)

func TestGenerateBackupCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		count   int
		wantErr bool
	}{
		{name: "default count", count: totp.DefaultBackupCodeCount},
		{name: "single code", count: 1},
		{name: "zero codes", count: 0, wantErr: true},
		{name: "negative count", count: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			codes, err := totp.GenerateBackupCodes(tt.count)
			if tt.wantErr {
				assert.ErrorIs(t, err, totp.ErrInvalidBackupCodeCount)
				assert.Nil(t, codes)
				return
			}

			require.NoError(t, err)
			assert.Len(t, codes, tt.count)

			seen := make(map[string]bool)
			for _, code := range codes {
				assert.Regexp(t, `^[0-9A-F]{8}$`, code)
				assert.False(t, seen[code], "duplicate code found")
				seen[code] = true
			}
		})
	}
}

func TestVerifyBackupCode(t *testing.T) {
	t.Parallel()
	codes := []string{"A1B2C3D4", "00FF00FF", "DEADBEEF"}

	assert.True(t, totp.VerifyBackupCode("A1B2C3D4", codes))
	assert.True(t, totp.VerifyBackupCode("deadbeef", codes))
	assert.True(t, totp.VerifyBackupCode(" 00ff00FF ", codes))
	assert.False(t, totp.VerifyBackupCode("12345678", codes))
	assert.False(t, totp.VerifyBackupCode("", codes))
	assert.False(t, totp.VerifyBackupCode("A1B2C3D4", nil))
}

func TestConsumeBackupCode(t *testing.T) {
	t.Parallel()
	codes, err := totp.GenerateBackupCodes(10)
	require.NoError(t, err)
	original := append([]string(nil), codes...)

	used := strings.ToLower(codes[3])
	remaining := totp.ConsumeBackupCode(used, codes)

	require.Len(t, remaining, 9)
	assert.NotContains(t, remaining, codes[3])
	for i, code := range original {
		if i == 3 {
			continue
		}
		assert.Contains(t, remaining, code)
	}
	assert.Equal(t, original, codes, "input must not be modified")

	assert.False(t, totp.VerifyBackupCode(used, remaining))
	again := totp.ConsumeBackupCode(used, remaining)
	assert.Equal(t, remaining, again)
}

func TestBackupCodesSet(t *testing.T) {
	t.Parallel()
	set := totp.BackupCodes{"AAAA0000", "BBBB1111"}

	added := set.Add("cccc2222")
	assert.Equal(t, totp.BackupCodes{"AAAA0000", "BBBB1111", "CCCC2222"}, added)
	assert.Equal(t, 2, set.Len(), "receiver must not change")

	dup := added.Add("aaaa0000")
	assert.Equal(t, 3, dup.Len())

	removed, ok := added.Remove("bbbb1111")
	require.True(t, ok)
	assert.Equal(t, totp.BackupCodes{"AAAA0000", "CCCC2222"}, removed)

	_, ok = removed.Remove("BBBB1111")
	assert.False(t, ok)
}
