package logger_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lifevault/pkg/logger"
)

func TestRedaction(t *testing.T) {
	t.Parallel()

	t.Run("masks secret-like keys", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))

		log.Info("enrollment",
			"password", "hunter2",
			"secret", "QUJDREVGR0hJSktMTU5PUFFSU1Q=",
			"code", "otp-value",
			"backup_codes", []string{"A1B2C3D4"},
			"new_password", "x",
			"Master-Key", "mk-material",
			"user_id", "u-1",
		)

		out := buf.String()
		for _, leaked := range []string{"hunter2", "QUJDREVGR0hJSktMTU5PUFFSU1Q=", "otp-value", "A1B2C3D4", "mk-material"} {
			assert.NotContains(t, out, leaked)
		}

		entry := decodeLine(t, buf)
		assert.Equal(t, logger.RedactedValue, entry["password"])
		assert.Equal(t, logger.RedactedValue, entry["new_password"])
		assert.Equal(t, logger.RedactedValue, entry["Master-Key"])
		assert.Equal(t, "u-1", entry["user_id"])
	})

	t.Run("masks inside groups and With attrs", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf)).With("token", "eyJhbGciOi")

		log.Info("login", logger.Group("req", logger.UserID("u-1")), "req_secret", "s")
		out := buf.String()
		assert.NotContains(t, out, "eyJhbGciOi")

		entry := decodeLine(t, buf)
		group, ok := entry["req"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "u-1", group["user_id"])
		assert.Equal(t, logger.RedactedValue, entry["req_secret"])
	})

	t.Run("extra keys", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithRedactedKeys("notes"))

		log.Info("entry", "notes", "pin is pinvalue")
		assert.NotContains(t, buf.String(), "pinvalue")
	})
}

func TestIsSensitiveKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want bool
	}{
		{"password", true},
		{"totp_secret", true},
		{"backupCode", true},
		{"backup_code", true},
		{"TOKEN", true},
		{"user_id", false},
		{"service_name", false},
		{"encoded", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, logger.IsSensitiveKey(tt.key), tt.key)
	}
}
