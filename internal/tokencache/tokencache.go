// Package tokencache holds bearer tokens for server-to-server calls.
package tokencache

import (
	"sync"
	"time"
)

// Cache stores tokens by key until they expire.
type Cache interface {
	// Get returns the token for key if it has not expired.
	Get(key string) (string, bool)

	// Set stores token under key for ttl. A non-positive ttl removes the entry.
	Set(key, token string, ttl time.Duration)
}

type entry struct {
	token     string
	expiresAt time.Time
}

// Memory is an in-process Cache safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the token for key if it has not expired.
func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || !m.now().Before(e.expiresAt) {
		return "", false
	}
	return e.token, true
}

// Set stores token under key for ttl.
func (m *Memory) Set(key, token string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ttl <= 0 {
		delete(m.entries, key)
		return
	}
	m.entries[key] = entry{token: token, expiresAt: m.now().Add(ttl)}
}
