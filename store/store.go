// Package store defines the persistence interfaces the datagrid engine
// executes against. Querier runs the engine-built parameterized SQL;
// RelationStore answers the relation resolver's ordered checks;
// RecordStore backs per-row detail lookups. A single backend (postgres,
// sqlite, memory) implements all of them.
package store

import "context"

// MembershipKind classifies a relation row between an identity and an
// entity instance.
type MembershipKind string

const (
	// KindMember is a direct employment/membership link. The common case.
	KindMember MembershipKind = "member"

	// KindDelegate is a delegated administrator of the instance's parent.
	KindDelegate MembershipKind = "delegate"

	// KindOwner is instance ownership.
	KindOwner MembershipKind = "owner"
)

// Membership is one relation row.
type Membership struct {
	IdentityID string         `json:"identity_id" db:"identity_id"`
	Entity     string         `json:"entity" db:"entity"`
	InstanceID int64          `json:"instance_id" db:"instance_id"`
	Kind       MembershipKind `json:"kind" db:"kind"`
}

// Querier executes engine-built queries. Query text uses '?' placeholders;
// backends rebind as needed.
type Querier interface {
	// Query runs a SELECT and returns rows as column-name keyed maps.
	Query(ctx context.Context, query string, args ...any) ([]map[string]any, error)

	// Count runs a single-value COUNT query.
	Count(ctx context.Context, query string, args ...any) (int64, error)
}

// RelationStore answers the resolver's relation checks. The instanceID
// argument pins a specific instance; 0 matches any, returning the matched
// instance so listing can scope rows to it.
type RelationStore interface {
	// IsAdministrator reports whether the identity is a global administrator.
	IsAdministrator(ctx context.Context, identityID string) (bool, error)

	// IsMember finds a direct membership link. The hot check: it runs
	// before the rarer owner and delegate lookups.
	IsMember(ctx context.Context, identityID, entityName string, instanceID int64) (int64, bool, error)

	// IsDelegate finds a delegated-administrator link.
	IsDelegate(ctx context.Context, identityID, entityName string, instanceID int64) (int64, bool, error)

	// IsOwner finds an ownership link.
	IsOwner(ctx context.Context, identityID, entityName string, instanceID int64) (int64, bool, error)

	// PlatformRoles returns the identity's cross-module platform roles.
	PlatformRoles(ctx context.Context, identityID string) ([]string, error)
}

// RelationWriter mutates relation data. Write paths that change
// memberships must invalidate the engine cache for the touched instance.
type RelationWriter interface {
	// AddAdministrator marks an identity as a global administrator.
	AddAdministrator(ctx context.Context, identityID string) error

	// RemoveAdministrator clears an identity's administrator flag.
	RemoveAdministrator(ctx context.Context, identityID string) error

	// AddMembership adds a relation row. Idempotent per
	// (identity, entity, instance, kind).
	AddMembership(ctx context.Context, m *Membership) error

	// RemoveMembership removes all relation rows for the triple.
	RemoveMembership(ctx context.Context, identityID, entityName string, instanceID int64) error

	// AddPlatformRole grants a platform role to an identity.
	AddPlatformRole(ctx context.Context, identityID, role string) error
}

// RecordStore backs detail lookups for a single entity row.
type RecordStore interface {
	// GetRecord returns the row with the given primary key, or nil when no
	// such row exists.
	GetRecord(ctx context.Context, table, indexColumn string, id int64) (map[string]any, error)
}

// Store is the aggregate persistence interface.
type Store interface {
	Querier
	RelationStore
	RelationWriter
	RecordStore

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
