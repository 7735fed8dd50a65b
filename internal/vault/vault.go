// Package vault stores credentials with passwords encrypted under the
// server master key. Passwords are encrypted before they reach the store and
// decrypted only by Reveal; listings never carry them.
package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/lifevault/internal/audit"
	"github.com/dmitrymomot/lifevault/internal/store"
	"github.com/dmitrymomot/lifevault/pkg/logger"
	"github.com/dmitrymomot/lifevault/pkg/vaultcrypto"
)

const entityType = "vault_entry"

var (
	ErrNotFound              = errors.New("vault entry not found")
	ErrServiceNameRequired   = errors.New("service name is required")
	ErrPasswordRequired      = errors.New("password is required")
	ErrInvalidPasswordLength = errors.New("invalid password length")
)

type Config struct {
	MaxGeneratedLength int `env:"VAULT_MAX_GENERATED_LENGTH" envDefault:"128"`
}

// Crypter protects passwords at rest. *vaultcrypto.Cipher implements it.
type Crypter interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(serialized string) (string, error)
}

// Entry is a vault entry as returned to callers. Password is set only by
// Reveal.
type Entry struct {
	ID          uuid.UUID
	ServiceName string
	Username    string
	Email       string
	URL         string
	Notes       string
	Category    string
	Password    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateInput struct {
	ServiceName string
	Username    string
	Email       string
	URL         string
	Notes       string
	Category    string
	Password    string
}

// UpdateInput changes only the non-nil fields. The password is re-encrypted
// only when Password is set.
type UpdateInput struct {
	ServiceName *string
	Username    *string
	Email       *string
	URL         *string
	Notes       *string
	Category    *string
	Password    *string
}

type ListFilter = store.EntryFilter

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithConfig(cfg Config) Option {
	return func(s *Service) {
		if cfg.MaxGeneratedLength > 0 {
			s.cfg = cfg
		}
	}
}

type Service struct {
	store  store.VaultStore
	crypto Crypter
	audit  *audit.Recorder
	log    *slog.Logger
	cfg    Config
}

func NewService(entries store.VaultStore, crypto Crypter, recorder *audit.Recorder, opts ...Option) *Service {
	s := &Service{
		store:  entries,
		crypto: crypto,
		audit:  recorder,
		log:    logger.Discard(),
		cfg:    Config{MaxGeneratedLength: 128},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("vault"))
	return s
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (Entry, error) {
	if strings.TrimSpace(in.ServiceName) == "" {
		return Entry{}, ErrServiceNameRequired
	}
	if in.Password == "" {
		return Entry{}, ErrPasswordRequired
	}

	encrypted, err := s.crypto.Encrypt(in.Password)
	if err != nil {
		return Entry{}, err
	}

	saved, err := s.store.CreateEntry(ctx, store.VaultEntry{
		UserID:            userID,
		ServiceName:       strings.TrimSpace(in.ServiceName),
		Username:          in.Username,
		Email:             in.Email,
		URL:               in.URL,
		Notes:             in.Notes,
		Category:          in.Category,
		EncryptedPassword: encrypted,
	})
	if err != nil {
		return Entry{}, err
	}

	s.audit.Record(ctx, userID, audit.ActionVaultCreate, audit.WithEntity(entityType, saved.ID.String()))
	return toEntry(saved), nil
}

// Reveal loads an entry and decrypts its password.
func (s *Service) Reveal(ctx context.Context, userID, id uuid.UUID) (Entry, error) {
	saved, err := s.get(ctx, userID, id)
	if err != nil {
		return Entry{}, err
	}

	plaintext, err := s.crypto.Decrypt(saved.EncryptedPassword)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to decrypt vault entry", logger.UserID(userID), logger.EntryID(id), logger.Error(err))
		return Entry{}, err
	}

	s.audit.Record(ctx, userID, audit.ActionVaultReveal, audit.WithEntity(entityType, id.String()))
	e := toEntry(saved)
	e.Password = plaintext
	return e, nil
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, in UpdateInput) (Entry, error) {
	saved, err := s.get(ctx, userID, id)
	if err != nil {
		return Entry{}, err
	}

	if in.ServiceName != nil {
		name := strings.TrimSpace(*in.ServiceName)
		if name == "" {
			return Entry{}, ErrServiceNameRequired
		}
		saved.ServiceName = name
	}
	assign(&saved.Username, in.Username)
	assign(&saved.Email, in.Email)
	assign(&saved.URL, in.URL)
	assign(&saved.Notes, in.Notes)
	assign(&saved.Category, in.Category)

	passwordChanged := false
	if in.Password != nil {
		if *in.Password == "" {
			return Entry{}, ErrPasswordRequired
		}
		if saved.EncryptedPassword, err = s.crypto.Encrypt(*in.Password); err != nil {
			return Entry{}, err
		}
		passwordChanged = true
	}

	updated, err := s.store.UpdateEntry(ctx, saved)
	if err != nil {
		return Entry{}, mapNotFound(err)
	}

	s.audit.Record(ctx, userID, audit.ActionVaultUpdate,
		audit.WithEntity(entityType, id.String()),
		audit.WithMetadata("password_changed", passwordChanged),
	)
	return toEntry(updated), nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.store.DeleteEntry(ctx, userID, id); err != nil {
		return mapNotFound(err)
	}
	s.audit.Record(ctx, userID, audit.ActionVaultDelete, audit.WithEntity(entityType, id.String()))
	return nil
}

// List returns the user's entries without passwords, most recently updated first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, f ListFilter) ([]Entry, error) {
	saved, err := s.store.ListEntries(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(saved))
	for _, e := range saved {
		out = append(out, toEntry(e))
	}
	return out, nil
}

// GeneratePassword returns a random password. Zero selects the default length.
func (s *Service) GeneratePassword(length int) (string, error) {
	if length == 0 {
		length = vaultcrypto.DefaultPasswordLength
	}
	if length < 1 || length > s.cfg.MaxGeneratedLength {
		return "", fmt.Errorf("%w: must be between 1 and %d", ErrInvalidPasswordLength, s.cfg.MaxGeneratedLength)
	}
	return vaultcrypto.GeneratePassword(length)
}

func (s *Service) get(ctx context.Context, userID, id uuid.UUID) (store.VaultEntry, error) {
	saved, err := s.store.GetEntry(ctx, userID, id)
	if err != nil {
		return store.VaultEntry{}, mapNotFound(err)
	}
	return saved, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func toEntry(e store.VaultEntry) Entry {
	return Entry{
		ID:          e.ID,
		ServiceName: e.ServiceName,
		Username:    e.Username,
		Email:       e.Email,
		URL:         e.URL,
		Notes:       e.Notes,
		Category:    e.Category,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
