/**
 * @description
 * This package provides the TTL-bounded store of in-flight transaction
 * intents. Two implementations share one contract: a Redis-backed store for
 * production (server-side expiry) and an in-memory store with a periodic
 * sweep. Both enforce the same cutoff: an entry is unreachable once
 * created-at + TTL has passed, regardless of which mechanism removes it.
 */

package pending

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/swiftsend/transfer-service/internal/domain"
)

// DefaultTTL is how long a pending transaction stays reachable without
// completing or being cancelled.
const DefaultTTL = 15 * time.Minute

// ErrNotFound is returned for unknown and for expired pending transaction ids;
// callers cannot distinguish the two.
var ErrNotFound = errors.New("pending transaction not found")

// Store is the keyed, TTL-bounded pending transaction store.
type Store interface {
	// Create persists a new entry under a freshly generated opaque id and
	// returns that id.
	Create(ctx context.Context, pendingType string, customerID uuid.UUID, payload domain.TransferPayload, stage domain.PendingStage) (string, error)
	// Get returns the entry for id, or ErrNotFound when the id is unknown or
	// the entry has expired.
	Get(ctx context.Context, id string) (*domain.PendingTransaction, error)
	// Update replaces the stored entry in place, preserving its expiry.
	Update(ctx context.Context, entry *domain.PendingTransaction) error
	// Delete removes the entry. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

func newEntry(pendingType string, customerID uuid.UUID, payload domain.TransferPayload, stage domain.PendingStage, ttl time.Duration, now time.Time) *domain.PendingTransaction {
	return &domain.PendingTransaction{
		ID:         uuid.NewString(),
		Type:       pendingType,
		CustomerID: customerID,
		Stage:      stage,
		Payload:    payload,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
}
