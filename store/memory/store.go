// Package memory provides an in-memory implementation of the datagrid
// store. Relation data is held in maps; query execution returns scripted
// results. It is intended for testing and development.
package memory

import (
	"context"
	"sync"

	"github.com/xraph/datagrid/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a thread-safe in-memory store. Query and Count return the
// scripted Rows/TotalCount/FilteredCount values; set Err to force every
// database call to fail.
type Store struct {
	mu sync.RWMutex

	admins      map[string]struct{}
	memberships []store.Membership
	roles       map[string][]string

	// Scripted query behavior.
	Rows          []map[string]any
	TotalCount    int64
	FilteredCount int64
	Err           error

	countCalls int
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		admins: make(map[string]struct{}),
		roles:  make(map[string][]string),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Querier (scripted)
// ──────────────────────────────────────────────────

func (s *Store) Query(_ context.Context, _ string, _ ...any) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]map[string]any, len(s.Rows))
	copy(out, s.Rows)
	return out, nil
}

// Count returns TotalCount on the first call of a request and
// FilteredCount on the second, matching the engine's execution order.
func (s *Store) Count(_ context.Context, _ string, _ ...any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	s.countCalls++
	if s.countCalls%2 == 1 {
		return s.TotalCount, nil
	}
	return s.FilteredCount, nil
}

// ──────────────────────────────────────────────────
// RelationStore
// ──────────────────────────────────────────────────

func (s *Store) IsAdministrator(_ context.Context, identityID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return false, s.Err
	}
	_, ok := s.admins[identityID]
	return ok, nil
}

func (s *Store) IsMember(ctx context.Context, identityID, entityName string, instanceID int64) (int64, bool, error) {
	return s.membership(identityID, entityName, instanceID, store.KindMember)
}

func (s *Store) IsDelegate(ctx context.Context, identityID, entityName string, instanceID int64) (int64, bool, error) {
	return s.membership(identityID, entityName, instanceID, store.KindDelegate)
}

func (s *Store) IsOwner(ctx context.Context, identityID, entityName string, instanceID int64) (int64, bool, error) {
	return s.membership(identityID, entityName, instanceID, store.KindOwner)
}

func (s *Store) membership(identityID, entityName string, instanceID int64, kind store.MembershipKind) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return 0, false, s.Err
	}
	for _, m := range s.memberships {
		if m.IdentityID != identityID || m.Entity != entityName || m.Kind != kind {
			continue
		}
		if instanceID != 0 && m.InstanceID != instanceID {
			continue
		}
		return m.InstanceID, true, nil
	}
	return 0, false, nil
}

func (s *Store) PlatformRoles(_ context.Context, identityID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]string, len(s.roles[identityID]))
	copy(out, s.roles[identityID])
	return out, nil
}

// ──────────────────────────────────────────────────
// RelationWriter
// ──────────────────────────────────────────────────

func (s *Store) AddAdministrator(_ context.Context, identityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[identityID] = struct{}{}
	return nil
}

func (s *Store) RemoveAdministrator(_ context.Context, identityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.admins, identityID)
	return nil
}

func (s *Store) AddMembership(_ context.Context, m *store.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.memberships {
		if existing == *m {
			return nil
		}
	}
	s.memberships = append(s.memberships, *m)
	return nil
}

func (s *Store) RemoveMembership(_ context.Context, identityID, entityName string, instanceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.memberships[:0]
	for _, m := range s.memberships {
		if m.IdentityID == identityID && m.Entity == entityName && m.InstanceID == instanceID {
			continue
		}
		kept = append(kept, m)
	}
	s.memberships = kept
	return nil
}

func (s *Store) AddPlatformRole(_ context.Context, identityID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[identityID] = append(s.roles[identityID], role)
	return nil
}

// ──────────────────────────────────────────────────
// RecordStore (scripted: first scripted row wins)
// ──────────────────────────────────────────────────

func (s *Store) GetRecord(_ context.Context, _, _ string, _ int64) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.Rows) == 0 {
		return nil, nil
	}
	return s.Rows[0], nil
}
