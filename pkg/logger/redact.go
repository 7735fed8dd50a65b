package logger

import (
	"log/slog"
	"strings"
)

// RedactedValue replaces the value of sensitive attributes.
const RedactedValue = "[REDACTED]"

var defaultRedactedKeys = []string{
	"password",
	"secret",
	"code",
	"backup_code",
	"backup_codes",
	"backupcode",
	"backupcodes",
	"token",
	"master_key",
	"plaintext",
	"authorization",
}

type redactor struct {
	keys map[string]struct{}
}

func newRedactor(extra ...string) *redactor {
	r := &redactor{keys: make(map[string]struct{}, len(defaultRedactedKeys)+len(extra))}
	for _, k := range defaultRedactedKeys {
		r.keys[k] = struct{}{}
	}
	for _, k := range extra {
		r.keys[normalizeKey(k)] = struct{}{}
	}
	return r
}

// IsSensitiveKey reports whether an attribute with this key would be redacted
// by a logger built with default options.
func IsSensitiveKey(key string) bool {
	return newRedactor().sensitive(key)
}

func (r *redactor) sensitive(key string) bool {
	k := normalizeKey(key)
	if _, ok := r.keys[k]; ok {
		return true
	}
	// Catch suffixed variants such as new_password or totp_secret.
	for sk := range r.keys {
		if strings.HasSuffix(k, "_"+sk) {
			return true
		}
	}
	return false
}

func (r *redactor) replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		return a
	}
	if r.sensitive(a.Key) {
		return slog.String(a.Key, RedactedValue)
	}
	return a
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer("-", "_", " ", "_").Replace(key)
}
