package vaultcrypto_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lifevault/pkg/vaultcrypto"
)

func TestDeriveKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		material string
		want     string
		wantErr  error
	}{
		{
			name:     "short material is padded with zeros",
			material: "secret",
			want:     "secret" + strings.Repeat("0", 26),
		},
		{
			name:     "exact length is kept",
			material: strings.Repeat("k", 32),
			want:     strings.Repeat("k", 32),
		},
		{
			name:     "long material is truncated",
			material: strings.Repeat("a", 32) + "overflow",
			want:     strings.Repeat("a", 32),
		},
		{
			name:     "legacy default key",
			material: "default-key-change-this-in-prod",
			want:     "default-key-change-this-in-prod0",
		},
		{
			name:     "empty material",
			material: "",
			wantErr:  vaultcrypto.ErrMasterKeyNotSet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			key, err := vaultcrypto.DeriveKey(tt.material)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, key, vaultcrypto.KeySize)
			assert.Equal(t, tt.want, string(key))
		})
	}
}

func TestKeyDerivationCompatibility(t *testing.T) {
	t.Parallel()

	// Material that pads to the same 32 bytes must read each other's output.
	short, err := vaultcrypto.New("abc")
	require.NoError(t, err)
	padded, err := vaultcrypto.New("abc" + strings.Repeat("0", 29))
	require.NoError(t, err)

	enc, err := short.Encrypt("shared")
	require.NoError(t, err)
	got, err := padded.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "shared", got)

	long, err := vaultcrypto.New(strings.Repeat("z", 32) + "tail")
	require.NoError(t, err)
	exact, err := vaultcrypto.New(strings.Repeat("z", 32))
	require.NoError(t, err)

	enc, err = long.Encrypt("truncated")
	require.NoError(t, err)
	got, err = exact.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "truncated", got)
}

func TestNewWithoutMasterKey(t *testing.T) {
	t.Parallel()
	c, err := vaultcrypto.New("")
	require.Error(t, err)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, vaultcrypto.ErrCrypto)
	assert.ErrorIs(t, err, vaultcrypto.ErrMasterKeyNotSet)
}

func TestGenerateMasterKey(t *testing.T) {
	t.Parallel()

	a, err := vaultcrypto.GenerateMasterKey()
	require.NoError(t, err)
	b, err := vaultcrypto.GenerateMasterKey()
	require.NoError(t, err)

	assert.Len(t, a, vaultcrypto.KeySize)
	assert.NotEqual(t, a, b)

	key, err := vaultcrypto.DeriveKey(a)
	require.NoError(t, err)
	assert.Equal(t, a, string(key))
}

func TestGenerateMasterKeyUsesFullCharset(t *testing.T) {
	t.Parallel()

	seen := make(map[rune]struct{})
	for range 200 {
		k, err := vaultcrypto.GenerateMasterKey()
		require.NoError(t, err)
		require.Len(t, k, vaultcrypto.KeySize)
		for _, r := range k {
			require.True(t, strings.ContainsRune(vaultcrypto.PasswordCharset, r), "unexpected %q", r)
			seen[r] = struct{}{}
		}
	}

	// Hex output would never exceed 16 distinct symbols.
	assert.Greater(t, len(seen), 16)
}
