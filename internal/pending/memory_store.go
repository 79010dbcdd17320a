package pending

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/swiftsend/transfer-service/internal/domain"
)

// MemoryStore is a process-local Store used for tests and single-node
// development. Expiry is enforced lazily on Get and by Sweep; both use the
// same created-at + TTL cutoff the Redis store applies.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*domain.PendingTransaction
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a MemoryStore. A non-positive ttl defaults to
// DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]*domain.PendingTransaction),
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new entry under a generated id.
func (s *MemoryStore) Create(ctx context.Context, pendingType string, customerID uuid.UUID, payload domain.TransferPayload, stage domain.PendingStage) (string, error) {
	entry := newEntry(pendingType, customerID, payload, stage, s.ttl, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = entry
	return entry.ID, nil
}

// Get returns an entry, evicting it first when it has passed its cutoff.
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.PendingTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if entry.Expired(s.now()) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}

	copied := *entry
	return &copied, nil
}

// Update replaces a live entry in place.
func (s *MemoryStore) Update(ctx context.Context, entry *domain.PendingTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.entries[entry.ID]
	if !ok || existing.Expired(s.now()) {
		delete(s.entries, entry.ID)
		return ErrNotFound
	}

	copied := *entry
	s.entries[entry.ID] = &copied
	return nil
}

// Delete removes an entry; unknown ids are ignored.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Sweep evicts every expired entry and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, entry := range s.entries {
		if entry.Expired(now) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on the given interval until ctx is cancelled.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}
