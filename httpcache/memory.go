package httpcache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryStore keeps entries in an in-process LRU.
//
// The LRU evicts everything after maxTTL, shorter ttls are checked on Get.
type MemoryStore struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

// NewMemoryStore returns a MemoryStore holding at most size entries for at most maxTTL.
func NewMemoryStore(size int, maxTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		lru: expirable.NewLRU[string, memoryEntry](size, nil, maxTTL),
		now: time.Now,
	}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := s.lru.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	if !s.now().Before(e.expires) {
		s.lru.Remove(key)
		return nil, ErrMiss
	}
	return e.value, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.lru.Add(key, memoryEntry{value: value, expires: s.now().Add(ttl)})
	return nil
}

// Len returns the number of entries, expired ones included.
func (s *MemoryStore) Len() int { return s.lru.Len() }
