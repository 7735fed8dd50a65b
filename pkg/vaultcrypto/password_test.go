package vaultcrypto_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lifevault/pkg/vaultcrypto"
)

func TestGeneratePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		length  int
		wantErr bool
	}{
		{name: "default length", length: vaultcrypto.DefaultPasswordLength},
		{name: "single character", length: 1},
		{name: "long password", length: 128},
		{name: "zero length", length: 0, wantErr: true},
		{name: "negative length", length: -5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pwd, err := vaultcrypto.GeneratePassword(tt.length)
			if tt.wantErr {
				assert.ErrorIs(t, err, vaultcrypto.ErrInvalidPasswordLength)
				assert.Empty(t, pwd)
				return
			}
			require.NoError(t, err)
			assert.Len(t, pwd, tt.length)
			for _, r := range pwd {
				assert.True(t, strings.ContainsRune(vaultcrypto.PasswordCharset, r), "unexpected rune %q", r)
			}
		})
	}
}

func TestPasswordCharsetSize(t *testing.T) {
	t.Parallel()
	assert.GreaterOrEqual(t, len(vaultcrypto.PasswordCharset), 90)

	seen := make(map[rune]bool)
	for _, r := range vaultcrypto.PasswordCharset {
		assert.False(t, seen[r], "duplicate charset rune %q", r)
		seen[r] = true
	}
}

func TestGeneratePasswordIsNotDeterministic(t *testing.T) {
	t.Parallel()
	a, err := vaultcrypto.GeneratePassword(32)
	require.NoError(t, err)
	b, err := vaultcrypto.GeneratePassword(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGeneratePasswordDistribution(t *testing.T) {
	t.Parallel()

	const samples = 90_000
	pwd, err := vaultcrypto.GeneratePassword(samples)
	require.NoError(t, err)

	counts := make(map[byte]int, len(vaultcrypto.PasswordCharset))
	for i := range len(pwd) {
		counts[pwd[i]]++
	}

	// Expected ~1000 per symbol; bounds are far outside normal variance.
	expected := samples / len(vaultcrypto.PasswordCharset)
	for i := range len(vaultcrypto.PasswordCharset) {
		c := vaultcrypto.PasswordCharset[i]
		assert.Greater(t, counts[c], expected/2, "symbol %q under-represented", c)
		assert.Less(t, counts[c], expected*2, "symbol %q over-represented", c)
	}

	// Each character class should appear roughly in proportion to its size.
	var lower, upper, digit int
	for i := range len(pwd) {
		switch c := pwd[i]; {
		case c >= 'a' && c <= 'z':
			lower++
		case c >= 'A' && c <= 'Z':
			upper++
		case c >= '0' && c <= '9':
			digit++
		}
	}
	assert.InDelta(t, float64(samples)*26/90, float64(lower), float64(samples)*0.03)
	assert.InDelta(t, float64(samples)*26/90, float64(upper), float64(samples)*0.03)
	assert.InDelta(t, float64(samples)*10/90, float64(digit), float64(samples)*0.03)
}
