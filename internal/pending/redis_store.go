package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/swiftsend/transfer-service/internal/domain"
)

// RedisStore keeps pending transactions in Redis with server-side expiry.
// The entry body also carries its own expires-at timestamp, checked lazily on
// Get, so the lazy cutoff and the Redis TTL agree even when clocks drift
// between the service and the Redis server.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore. An empty prefix defaults to
// "transfer:pending"; a non-positive ttl defaults to DefaultTTL.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	trimmed := strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if trimmed == "" {
		trimmed = "transfer:pending"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, prefix: trimmed, ttl: ttl}
}

func (s *RedisStore) key(id string) string {
	return fmt.Sprintf("%s:%s", s.prefix, id)
}

// Create stores a new entry under a generated id with the configured TTL.
func (s *RedisStore) Create(ctx context.Context, pendingType string, customerID uuid.UUID, payload domain.TransferPayload, stage domain.PendingStage) (string, error) {
	entry := newEntry(pendingType, customerID, payload, stage, s.ttl, time.Now().UTC())

	body, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, s.key(entry.ID), body, s.ttl).Err(); err != nil {
		return "", err
	}
	return entry.ID, nil
}

// Get fetches an entry, applying the lazy expiry check on top of Redis's own
// key expiry.
func (s *RedisStore) Get(ctx context.Context, id string) (*domain.PendingTransaction, error) {
	body, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var entry domain.PendingTransaction
	if err := json.Unmarshal(body, &entry); err != nil {
		return nil, err
	}
	if entry.Expired(time.Now().UTC()) {
		_ = s.client.Del(ctx, s.key(id)).Err()
		return nil, ErrNotFound
	}
	return &entry, nil
}

// Update rewrites an entry, keeping the remaining TTL so stage transitions do
// not extend the original expiry window.
func (s *RedisStore) Update(ctx context.Context, entry *domain.PendingTransaction) error {
	remaining := time.Until(entry.ExpiresAt)
	if remaining <= 0 {
		_ = s.client.Del(ctx, s.key(entry.ID)).Err()
		return ErrNotFound
	}

	body, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(entry.ID), body, remaining).Err()
}

// Delete removes an entry; unknown ids are ignored.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}
