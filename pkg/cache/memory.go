package cache

import (
	"context"
	"sync"
	"time"
)

// memoryStore is a map-backed Store. It lets the tier run without a Redis
// server (tests, single-binary deployments) while keeping the same contract.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	tags    map[string]map[string]struct{}
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryStore creates an in-process Store
func NewMemoryStore() Store {
	return &memoryStore{
		entries: make(map[string]memoryEntry),
		tags:    make(map[string]map[string]struct{}),
	}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(s.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	s.entries[key] = memoryEntry{value: value, expiresAt: expires}
	return nil
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

func (s *memoryStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		if e.expiresAt.IsZero() || time.Now().Before(e.expiresAt) {
			return false, nil
		}
	}

	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	s.entries[key] = memoryEntry{value: value, expiresAt: expires}
	return true, nil
}

func (s *memoryStore) AddTags(_ context.Context, key string, tags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tag := range tags {
		set, ok := s.tags[tag]
		if !ok {
			set = make(map[string]struct{})
			s.tags[tag] = set
		}
		set[key] = struct{}{}
	}
	return nil
}

func (s *memoryStore) TaggedKeys(_ context.Context, tag string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.tags[tag]))
	for key := range s.tags[tag] {
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *memoryStore) ClearTag(_ context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tags, tag)
	return nil
}
