package querylog

import (
	"context"
	"sync"
)

// Compile-time interface check.
var _ Recorder = (*Memory)(nil)

// Memory is a bounded in-memory recorder. When full, the oldest entries
// are dropped.
type Memory struct {
	mu      sync.RWMutex
	entries []*Entry
	max     int
}

// NewMemory creates a memory recorder keeping at most max entries
// (default 1000 when max <= 0).
func NewMemory(max int) *Memory {
	if max <= 0 {
		max = 1000
	}
	return &Memory{max: max}
}

// Record stores an entry, evicting the oldest when at capacity.
func (m *Memory) Record(_ context.Context, e *Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	if len(m.entries) > m.max {
		m.entries = m.entries[len(m.entries)-m.max:]
	}
}

// List returns up to limit entries, newest first.
func (m *Memory) List(_ context.Context, limit int) []*Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.entries) {
		limit = len(m.entries)
	}
	out := make([]*Entry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out
}
