// Package auth issues and verifies the bearer tokens of the API.
//
// Password login is handled elsewhere; it calls IssueForLogin, which returns an
// access token for users without two-factor and a short-lived "mfa" token for
// users who still have to present a second factor. Only access tokens open
// the protected API; mfa tokens are accepted solely by the second-factor
// login endpoint.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingSecret  = errors.New("auth: signing secret is not configured")
	ErrMissingToken   = errors.New("auth: missing bearer token")
	ErrInvalidToken   = errors.New("auth: invalid or expired token")
	ErrWrongTokenKind = errors.New("auth: token kind not accepted here")
)

// Kind distinguishes full access tokens from pending second-factor tokens.
type Kind string

const (
	KindAccess Kind = "access"
	KindMFA    Kind = "mfa"
)

type Config struct {
	Secret    string        `env:"JWT_SECRET,required"`
	Issuer    string        `env:"JWT_ISSUER" envDefault:"lifevault"`
	AccessTTL time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`
	MFATTL    time.Duration `env:"JWT_MFA_TTL" envDefault:"5m"`
}

type claims struct {
	jwt.RegisteredClaims
	Kind  Kind   `json:"kind"`
	Email string `json:"email,omitempty"`
}

// Identity is the verified content of a token.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Kind   Kind
}

// Token is a signed token with its expiry.
type Token struct {
	Value     string
	Kind      Kind
	ExpiresAt time.Time
}

type Option func(*Issuer)

func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// Issuer signs and parses HS256 tokens.
type Issuer struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	mfaTTL    time.Duration
	now       func() time.Time
}

func NewIssuer(cfg Config, opts ...Option) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	i := &Issuer{
		secret:    []byte(cfg.Secret),
		issuer:    cfg.Issuer,
		accessTTL: cfg.AccessTTL,
		mfaTTL:    cfg.MFATTL,
		now:       time.Now,
	}
	if i.accessTTL <= 0 {
		i.accessTTL = 15 * time.Minute
	}
	if i.mfaTTL <= 0 {
		i.mfaTTL = 5 * time.Minute
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// IssueForLogin completes password login: an mfa token when the user has
// two-factor enabled, an access token otherwise.
func (i *Issuer) IssueForLogin(userID uuid.UUID, email string, twoFactorEnabled bool) (Token, error) {
	if twoFactorEnabled {
		return i.IssueMFA(userID, email)
	}
	return i.IssueAccess(userID, email)
}

func (i *Issuer) IssueAccess(userID uuid.UUID, email string) (Token, error) {
	return i.issue(userID, email, KindAccess, i.accessTTL)
}

func (i *Issuer) IssueMFA(userID uuid.UUID, email string) (Token, error) {
	return i.issue(userID, email, KindMFA, i.mfaTTL)
}

func (i *Issuer) issue(userID uuid.UUID, email string, kind Kind, ttl time.Duration) (Token, error) {
	now := i.now()
	exp := now.Add(ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
		Kind:  kind,
		Email: email,
	})
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return Token{Value: signed, Kind: kind, ExpiresAt: exp}, nil
}

// Parse verifies signature, issuer and expiry and returns the identity.
func (i *Issuer) Parse(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrMissingToken
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, errors.Join(ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return Identity{}, errors.Join(ErrInvalidToken, err)
	}
	switch c.Kind {
	case KindAccess, KindMFA:
	default:
		return Identity{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidToken, c.Kind)
	}

	return Identity{UserID: userID, Email: c.Email, Kind: c.Kind}, nil
}
