package datagrid

import (
	"context"
	"strconv"
	"time"
)

// Cache memoizes relation resolutions and, optionally, total counts.
// Entries must never outlive the underlying relation data: write paths call
// Invalidate whenever an entity instance or its memberships change. Reset
// exists only for administrative use, never as part of normal operation.
type Cache interface {
	// GetRelation returns a cached relation resolution.
	GetRelation(ctx context.Context, key string) (Relation, bool)

	// SetRelation stores a relation resolution.
	SetRelation(ctx context.Context, key string, rel Relation)

	// GetCount returns a cached total count.
	GetCount(ctx context.Context, key string) (int64, bool)

	// SetCount stores a total count. The entry expires after ttl; a
	// non-positive ttl falls back to the implementation's default.
	SetCount(ctx context.Context, key string, n int64, ttl time.Duration)

	// Invalidate drops all entries touching the given entity instance,
	// plus the entity's unscoped relation entries and counts.
	Invalidate(ctx context.Context, entityName string, instanceID int64)

	// InvalidateIdentity drops all relation entries for an identity.
	InvalidateIdentity(ctx context.Context, identityID string)

	// Reset drops everything. Administrative use only.
	Reset(ctx context.Context)
}

// RelationKey builds the cache key for a relation resolution.
func RelationKey(entityName, identityID string, instanceID int64) string {
	return "relation:" + entityName + ":" + identityID + ":" + strconv.FormatInt(instanceID, 10)
}

// CountKey builds the cache key for an entity's unfiltered total count.
func CountKey(entityName string) string {
	return "count:" + entityName + ":total"
}
