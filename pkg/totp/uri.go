package totp

import (
	"net/url"
	"strings"
)

const DefaultIssuer = "APP"

// BuildEnrollmentURI returns
//
//	otpauth://totp/{issuer}:{accountLabel}?secret={secret}&issuer={issuer}
//
// with every variable component percent-encoded. An empty issuer falls back to
// DefaultIssuer.
func BuildEnrollmentURI(secret, accountLabel, issuer string) (string, error) {
	if _, err := decodeSecret(secret); err != nil {
		return "", err
	}
	if strings.TrimSpace(accountLabel) == "" {
		return "", ErrMissingAccountLabel
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}

	encIssuer := encodeComponent(issuer)
	return "otpauth://totp/" + encIssuer + ":" + encodeComponent(accountLabel) +
		"?secret=" + encodeComponent(secret) +
		"&issuer=" + encIssuer, nil
}

// encodeComponent percent-encodes everything outside the unreserved set,
// using %20 for spaces.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
