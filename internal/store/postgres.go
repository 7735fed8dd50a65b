package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/lifevault/pkg/pg"
)

// DB is the subset of *pgxpool.Pool used by PostgresStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	db  DB
	now func() time.Time
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) GetTwoFactor(ctx context.Context, userID uuid.UUID) (TwoFactor, error) {
	tf := TwoFactor{UserID: userID}
	err := s.db.QueryRow(ctx, `
		SELECT secret, enabled, backup_codes, version, updated_at
		FROM two_factor WHERE user_id = $1`, userID,
	).Scan(&tf.Secret, &tf.Enabled, &tf.BackupCodes, &tf.Version, &tf.UpdatedAt)
	if pg.IsNotFoundError(err) {
		return TwoFactor{UserID: userID}, nil
	}
	if err != nil {
		return TwoFactor{}, errors.Join(ErrUnavailable, err)
	}
	return tf, nil
}

func (s *PostgresStore) SavePendingSecret(ctx context.Context, userID uuid.UUID, secret string) error {
	if secret == "" {
		return fmt.Errorf("%w: empty secret", ErrInvalidArgument)
	}
	tag, err := s.db.Exec(ctx, `
		INSERT INTO two_factor (user_id, secret, enabled, backup_codes, version, updated_at)
		VALUES ($1, $2, false, '{}', 1, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET secret = EXCLUDED.secret,
		    enabled = false,
		    backup_codes = '{}',
		    version = two_factor.version + 1,
		    updated_at = EXCLUDED.updated_at
		WHERE two_factor.enabled = false`, userID, secret, s.now())
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (s *PostgresStore) EnableTwoFactor(ctx context.Context, userID uuid.UUID, secret string, codes []string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE two_factor
		SET enabled = true, backup_codes = $3, version = version + 1, updated_at = $4
		WHERE user_id = $1 AND secret = $2 AND secret <> '' AND enabled = false`,
		userID, secret, nonNil(codes), s.now())
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (s *PostgresStore) DisableTwoFactor(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `
		UPDATE two_factor
		SET secret = '', enabled = false, backup_codes = '{}', version = version + 1, updated_at = $2
		WHERE user_id = $1`, userID, s.now())
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) ReplaceBackupCodes(ctx context.Context, userID uuid.UUID, expectedVersion int64, codes []string) (int64, error) {
	var version int64
	err := s.db.QueryRow(ctx, `
		UPDATE two_factor
		SET backup_codes = $3, version = version + 1, updated_at = $4
		WHERE user_id = $1 AND version = $2 AND enabled = true
		RETURNING version`, userID, expectedVersion, nonNil(codes), s.now(),
	).Scan(&version)
	if pg.IsNotFoundError(err) {
		return 0, ErrVersionConflict
	}
	if err != nil {
		return 0, errors.Join(ErrUnavailable, err)
	}
	return version, nil
}

const entryColumns = `id, user_id, service_name, username, email, url, notes, category, password_encrypted, created_at, updated_at`

func scanEntry(row pgx.Row) (VaultEntry, error) {
	var e VaultEntry
	err := row.Scan(&e.ID, &e.UserID, &e.ServiceName, &e.Username, &e.Email, &e.URL,
		&e.Notes, &e.Category, &e.EncryptedPassword, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (s *PostgresStore) CreateEntry(ctx context.Context, e VaultEntry) (VaultEntry, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := s.now()
	out, err := scanEntry(s.db.QueryRow(ctx, `
		INSERT INTO vault_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING `+entryColumns,
		e.ID, e.UserID, e.ServiceName, e.Username, e.Email, e.URL, e.Notes, e.Category, e.EncryptedPassword, now))
	if pg.IsDuplicateKeyError(err) {
		return VaultEntry{}, errors.Join(ErrInvalidArgument, err)
	}
	if err != nil {
		return VaultEntry{}, errors.Join(ErrUnavailable, err)
	}
	return out, nil
}

func (s *PostgresStore) GetEntry(ctx context.Context, userID, id uuid.UUID) (VaultEntry, error) {
	e, err := scanEntry(s.db.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM vault_entries WHERE id = $1 AND user_id = $2`, id, userID))
	if pg.IsNotFoundError(err) {
		return VaultEntry{}, ErrNotFound
	}
	if err != nil {
		return VaultEntry{}, errors.Join(ErrUnavailable, err)
	}
	return e, nil
}

func (s *PostgresStore) UpdateEntry(ctx context.Context, e VaultEntry) (VaultEntry, error) {
	out, err := scanEntry(s.db.QueryRow(ctx, `
		UPDATE vault_entries
		SET service_name = $3, username = $4, email = $5, url = $6, notes = $7,
		    category = $8, password_encrypted = $9, updated_at = $10
		WHERE id = $1 AND user_id = $2
		RETURNING `+entryColumns,
		e.ID, e.UserID, e.ServiceName, e.Username, e.Email, e.URL, e.Notes, e.Category, e.EncryptedPassword, s.now()))
	if pg.IsNotFoundError(err) {
		return VaultEntry{}, ErrNotFound
	}
	if err != nil {
		return VaultEntry{}, errors.Join(ErrUnavailable, err)
	}
	return out, nil
}

func (s *PostgresStore) DeleteEntry(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM vault_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListEntries(ctx context.Context, userID uuid.UUID, f EntryFilter) ([]VaultEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, service_name, username, email, url, notes, category, '', created_at, updated_at
		FROM vault_entries
		WHERE user_id = $1
		  AND ($2::text = '' OR category = $2)
		  AND ($3::text = '' OR service_name ILIKE $4 OR username ILIKE $4 OR email ILIKE $4)
		ORDER BY updated_at DESC, id`,
		userID, f.Category, f.Search, "%"+escapeLike(f.Search)+"%")
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (VaultEntry, error) {
		return scanEntry(row)
	})
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	if out == nil {
		out = []VaultEntry{}
	}
	return out, nil
}

func (s *PostgresStore) AppendEvent(ctx context.Context, ev SecurityEvent) (SecurityEvent, error) {
	if ev.Action == "" {
		return SecurityEvent{}, fmt.Errorf("%w: action is required", ErrInvalidArgument)
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = s.now()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO security_events
		    (id, user_id, action, result, entity_type, entity_id, ip_address, user_agent, request_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		ev.ID, ev.UserID, ev.Action, ev.Result, ev.EntityType, ev.EntityID,
		ev.IPAddress, ev.UserAgent, ev.RequestID, ev.Metadata, ev.CreatedAt)
	if err != nil {
		return SecurityEvent{}, errors.Join(ErrUnavailable, err)
	}
	return ev, nil
}

func (s *PostgresStore) ListEvents(ctx context.Context, userID uuid.UUID, limit, offset int) ([]SecurityEvent, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, action, result, entity_type, entity_id, ip_address, user_agent, request_id, metadata, created_at
		FROM security_events
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, userID, lim, max(0, offset))
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SecurityEvent, error) {
		var ev SecurityEvent
		err := row.Scan(&ev.ID, &ev.UserID, &ev.Action, &ev.Result, &ev.EntityType, &ev.EntityID,
			&ev.IPAddress, &ev.UserAgent, &ev.RequestID, &ev.Metadata, &ev.CreatedAt)
		return ev, err
	})
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	if out == nil {
		out = []SecurityEvent{}
	}
	return out, nil
}

func (s *PostgresStore) SummarizeEvents(ctx context.Context, userID uuid.UUID, since time.Time) (ActivitySummary, error) {
	var sum ActivitySummary
	err := s.db.QueryRow(ctx, `
		SELECT count(*), max(created_at)
		FROM security_events
		WHERE user_id = $1 AND created_at >= $2`, userID, since,
	).Scan(&sum.Count, &sum.LastActivity)
	if err != nil {
		return ActivitySummary{}, errors.Join(ErrUnavailable, err)
	}
	return sum, nil
}

func nonNil(codes []string) []string {
	if codes == nil {
		return []string{}
	}
	return codes
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
