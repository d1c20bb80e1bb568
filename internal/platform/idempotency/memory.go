package idempotency

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	record   *Record
	inFlight bool
}

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	clock   func() time.Time
}

// NewMemoryStore builds a store whose records expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		clock:   time.Now,
	}
}

func (s *MemoryStore) Begin(ctx context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[key]; ok {
		if entry.inFlight {
			return nil, ErrInFlight
		}
		if s.clock().Sub(entry.record.CreatedAt) < s.ttl {
			return entry.record, nil
		}
		delete(s.entries, key)
	}
	s.entries[key] = &memoryEntry{inFlight: true}
	return nil, nil
}

func (s *MemoryStore) Complete(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.clock()
	}
	s.entries[record.Key] = &memoryEntry{record: &record}
	return nil
}

func (s *MemoryStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[key]; ok && entry.inFlight {
		delete(s.entries, key)
	}
	return nil
}
