// Package cache provides caching implementations for datagrid relation
// resolutions and total counts.
package cache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xraph/datagrid"
)

// Compile-time interface check.
var _ datagrid.Cache = (*Memory)(nil)

// Memory is an in-memory cache with TTL-based expiration and targeted
// invalidation. Relations and counts live in one keyspace, distinguished
// by the engine's key prefixes.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	maxSize int
}

type entry struct {
	relation  datagrid.Relation
	count     int64
	isCount   bool
	expiresAt time.Time
}

// MemoryOption configures the memory cache.
type MemoryOption func(*Memory)

// WithTTL sets the cache entry time-to-live.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) { m.ttl = ttl }
}

// WithMaxSize sets the maximum number of cache entries.
func WithMaxSize(n int) MemoryOption {
	return func(m *Memory) { m.maxSize = n }
}

// NewMemory creates a new in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]*entry),
		ttl:     time.Minute,
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetRelation returns a cached relation resolution.
func (m *Memory) GetRelation(_ context.Context, key string) (datagrid.Relation, bool) {
	e, ok := m.get(key)
	if !ok || e.isCount {
		return datagrid.Relation{}, false
	}
	return e.relation, true
}

// SetRelation stores a relation resolution.
func (m *Memory) SetRelation(_ context.Context, key string, rel datagrid.Relation) {
	m.set(key, &entry{relation: rel}, m.ttl)
}

// GetCount returns a cached total count.
func (m *Memory) GetCount(_ context.Context, key string) (int64, bool) {
	e, ok := m.get(key)
	if !ok || !e.isCount {
		return 0, false
	}
	return e.count, true
}

// SetCount stores a total count. Counts carry their own ttl since the
// engine bounds count staleness independently of relation staleness; a
// non-positive ttl falls back to the cache-wide default.
func (m *Memory) SetCount(_ context.Context, key string, n int64, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.ttl
	}
	m.set(key, &entry{count: n, isCount: true}, ttl)
}

// Invalidate drops the entity's count entries plus its relation entries
// for the given instance. Unscoped (instance 0) relation entries are also
// dropped since they may have been resolved through this instance.
func (m *Memory) Invalidate(_ context.Context, entityName string, instanceID int64) {
	relPrefix := "relation:" + entityName + ":"
	countPrefix := "count:" + entityName + ":"
	instSuffix := ":" + strconv.FormatInt(instanceID, 10)

	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		switch {
		case strings.HasPrefix(k, countPrefix):
			delete(m.entries, k)
		case strings.HasPrefix(k, relPrefix) &&
			(strings.HasSuffix(k, instSuffix) || strings.HasSuffix(k, ":0")):
			delete(m.entries, k)
		}
	}
}

// InvalidateIdentity drops all relation entries for an identity.
func (m *Memory) InvalidateIdentity(_ context.Context, identityID string) {
	needle := ":" + identityID + ":"
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, "relation:") && strings.Contains(k, needle) {
			delete(m.entries, k)
		}
	}
}

// Reset drops everything. Administrative use only.
func (m *Memory) Reset(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*entry)
}

func (m *Memory) get(key string) (*entry, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return e, true
}

func (m *Memory) set(key string, e *entry, ttl time.Duration) {
	e.expiresAt = time.Now().Add(ttl)
	m.mu.Lock()
	defer m.mu.Unlock()

	// Evict if at capacity.
	if len(m.entries) >= m.maxSize {
		m.evictExpired()
		if len(m.entries) >= m.maxSize {
			m.evictOne()
		}
	}
	m.entries[key] = e
}

// evictExpired removes all expired entries. Must hold write lock.
func (m *Memory) evictExpired() {
	now := time.Now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// evictOne removes one arbitrary entry. Must hold write lock.
func (m *Memory) evictOne() {
	for k := range m.entries {
		delete(m.entries, k)
		return
	}
}
