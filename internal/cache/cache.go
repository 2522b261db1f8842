// Package cache memoizes upstream lookup results per key with an absolute
// expiry. Entries are replaced wholesale on Put and are never swept; a stale
// entry is simply ignored by Get until the next successful Put overwrites it.
package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/pkordes/haul-slips/internal/clock"
	"github.com/pkordes/haul-slips/internal/domain"
)

// ClientsKey is the cache key for the client list.
const ClientsKey = "clients"

// ProjectsKey returns the cache key for the projects of one client.
func ProjectsKey(clientID string) string {
	return "projects:" + clientID
}

// Store is a TTL cache of lookup payloads shared by all concurrent callers.
type Store interface {
	// Get returns the payload for key if an entry exists and has not expired.
	Get(ctx context.Context, key string) ([]domain.LookupItem, bool, error)

	// Put stores items under key with expiry now+ttl, overwriting any prior entry.
	Put(ctx context.Context, key string, items []domain.LookupItem, ttl time.Duration) error
}

type entry struct {
	items    []domain.LookupItem
	expireAt time.Time
}

// Memory is an in-process Store. The zero value is not usable; call NewMemory.
type Memory struct {
	clock clock.Clock

	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemory constructs an empty in-memory store. It lives until the process exits.
func NewMemory(c clock.Clock) *Memory {
	return &Memory{clock: c, entries: make(map[string]entry)}
}

func (m *Memory) Get(_ context.Context, key string) ([]domain.LookupItem, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || !e.expireAt.After(m.clock.Now()) {
		return nil, false, nil
	}
	return slices.Clone(e.items), true, nil
}

func (m *Memory) Put(_ context.Context, key string, items []domain.LookupItem, ttl time.Duration) error {
	e := entry{items: slices.Clone(items), expireAt: m.clock.Now().Add(ttl)}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Len returns the number of entries held, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
