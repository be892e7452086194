// Package store persists alert-gate state: per-class last-fired timestamps
// and the last tracked pool.
//
// DESIGN: This is operational state, not an event archive — a restart should
// not reset cooldowns or re-baseline failover detection, but no history of
// alerts is ever kept. Memory is the default; SQLite is opt-in via
// STATE_DB_PATH.
package store

import (
	"sync"
	"time"
)

// Store is the gate-state persistence interface.
type Store interface {
	// LastFired returns the last firing time for an alert class.
	// ok is false when the class has never fired.
	LastFired(class string) (t time.Time, ok bool, err error)

	// SetLastFired records the last firing time for an alert class.
	SetLastFired(class string, t time.Time) error

	// LastPool returns the last tracked pool. ok is false when no pool has
	// been observed yet.
	LastPool() (pool string, ok bool, err error)

	// SetLastPool records the tracked pool.
	SetLastPool(pool string) error

	// Close releases resources.
	Close() error
}

// Memory is the in-process Store used when persistence is disabled.
type Memory struct {
	mu      sync.RWMutex
	fired   map[string]time.Time
	pool    string
	hasPool bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{fired: make(map[string]time.Time)}
}

// LastFired returns the last firing time for class.
func (m *Memory) LastFired(class string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.fired[class]
	return t, ok, nil
}

// SetLastFired records the last firing time for class.
func (m *Memory) SetLastFired(class string, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fired[class] = t
	return nil
}

// LastPool returns the last tracked pool.
func (m *Memory) LastPool() (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.pool, m.hasPool, nil
}

// SetLastPool records the tracked pool.
func (m *Memory) SetLastPool(pool string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pool = pool
	m.hasPool = true
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// Ensure Memory implements Store
var _ Store = (*Memory)(nil)
