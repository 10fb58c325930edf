package cache

import (
	"sync"
	"time"
)

// Entry is a stored value together with the time it was written.
type Entry[T any] struct {
	Key       string
	Data      T
	CreatedAt time.Time
}

// Store is an in-memory key-value store with lazy, read-time staleness checks.
// There is no background sweep and no capacity bound: stale entries stay in
// the map until a fresh write on the same key replaces them. The store lives
// as long as the process that owns it.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[T]
	now     func() time.Time
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithClock overrides the time source. Used by tests to advance the clock.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(s *Store[T]) {
		s.now = now
	}
}

// New creates an empty Store.
func New[T any](opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		entries: make(map[string]Entry[T]),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the entry for key, valid or not. Staleness is the caller's
// decision via IsValid.
func (s *Store[T]) Get(key string) (Entry[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	return entry, ok
}

// Put stores data under key with the current timestamp, overwriting any
// existing entry.
func (s *Store[T]) Put(key string, data T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = Entry[T]{
		Key:       key,
		Data:      data,
		CreatedAt: s.now(),
	}
}

// IsValid reports whether entry is younger than ttl.
func (s *Store[T]) IsValid(entry Entry[T], ttl time.Duration) bool {
	return s.now().Sub(entry.CreatedAt) < ttl
}

// Len returns the number of stored entries, stale ones included.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
