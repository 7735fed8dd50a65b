package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisPendingStore keeps pending enrollment codes as JSON values with a TTL.
type RedisPendingStore struct {
	client redis.UniversalClient
	prefix string
}

var _ PendingStore = (*RedisPendingStore)(nil)

func NewRedisPendingStore(client redis.UniversalClient, prefix string) *RedisPendingStore {
	if prefix == "" {
		prefix = "2fa:pending:"
	}
	return &RedisPendingStore{client: client, prefix: prefix}
}

func (s *RedisPendingStore) key(userID uuid.UUID) string {
	return s.prefix + userID.String()
}

func (s *RedisPendingStore) PutPending(ctx context.Context, userID uuid.UUID, codes []string, ttl time.Duration) error {
	raw, err := json.Marshal(codes)
	if err != nil {
		return errors.Join(ErrInvalidArgument, err)
	}
	if err := s.client.Set(ctx, s.key(userID), raw, ttl).Err(); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

func (s *RedisPendingStore) GetPending(ctx context.Context, userID uuid.UUID) ([]string, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}

	var codes []string
	if err := json.Unmarshal(raw, &codes); err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	return codes, nil
}

func (s *RedisPendingStore) DeletePending(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}
