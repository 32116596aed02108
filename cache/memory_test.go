package cache

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/datagrid"
)

func TestRelationRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	key := datagrid.RelationKey("customer", "user-1", 7)
	rel := datagrid.Relation{IsMember: true, HasAccess: true, AccessType: datagrid.AccessMember, InstanceID: 7}

	if _, ok := c.GetRelation(ctx, key); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.SetRelation(ctx, key, rel)
	got, ok := c.GetRelation(ctx, key)
	if !ok {
		t.Fatal("expected hit after set")
	}
	if got.AccessType != datagrid.AccessMember || got.InstanceID != 7 {
		t.Errorf("unexpected relation: %+v", got)
	}
}

func TestCountRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	key := datagrid.CountKey("customer")
	c.SetCount(ctx, key, 42, 0)
	got, ok := c.GetCount(ctx, key)
	if !ok || got != 42 {
		t.Errorf("expected 42, got %d (hit=%v)", got, ok)
	}

	// A relation key never satisfies a count lookup.
	relKey := datagrid.RelationKey("customer", "user-1", 0)
	c.SetRelation(ctx, relKey, datagrid.Relation{})
	if _, ok := c.GetCount(ctx, relKey); ok {
		t.Error("relation entry must not satisfy count lookup")
	}
}

func TestExpiration(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(10 * time.Millisecond))

	key := datagrid.RelationKey("customer", "user-1", 1)
	c.SetRelation(ctx, key, datagrid.Relation{HasAccess: true})
	if _, ok := c.GetRelation(ctx, key); !ok {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.GetRelation(ctx, key); ok {
		t.Error("expected miss after expiry")
	}
}

func TestCountTTLIndependentOfDefault(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	key := datagrid.CountKey("customer")
	c.SetCount(ctx, key, 12, 10*time.Millisecond)
	if _, ok := c.GetCount(ctx, key); !ok {
		t.Fatal("expected hit before expiry")
	}

	// The count's own ttl wins over the cache-wide default.
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.GetCount(ctx, key); ok {
		t.Error("expected count miss after its ttl elapsed")
	}

	relKey := datagrid.RelationKey("customer", "user-1", 1)
	c.SetRelation(ctx, relKey, datagrid.Relation{HasAccess: true})
	if _, ok := c.GetRelation(ctx, relKey); !ok {
		t.Error("relation entries still use the cache-wide default")
	}
}

func TestInvalidateEntity(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	hit := datagrid.RelationKey("customer", "user-1", 7)
	unscoped := datagrid.RelationKey("customer", "user-2", 0)
	other := datagrid.RelationKey("customer", "user-3", 8)
	otherEntity := datagrid.RelationKey("invoice", "user-1", 7)
	count := datagrid.CountKey("customer")

	for _, k := range []string{hit, unscoped, other, otherEntity} {
		c.SetRelation(ctx, k, datagrid.Relation{HasAccess: true})
	}
	c.SetCount(ctx, count, 10, 0)

	c.Invalidate(ctx, "customer", 7)

	if _, ok := c.GetRelation(ctx, hit); ok {
		t.Error("instance entry should be invalidated")
	}
	if _, ok := c.GetRelation(ctx, unscoped); ok {
		t.Error("unscoped entry should be invalidated")
	}
	if _, ok := c.GetCount(ctx, count); ok {
		t.Error("count entry should be invalidated")
	}
	if _, ok := c.GetRelation(ctx, other); !ok {
		t.Error("other instance entry should survive")
	}
	if _, ok := c.GetRelation(ctx, otherEntity); !ok {
		t.Error("other entity entry should survive")
	}
}

func TestInvalidateIdentity(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	mine := datagrid.RelationKey("customer", "user-1", 7)
	alsoMine := datagrid.RelationKey("invoice", "user-1", 3)
	theirs := datagrid.RelationKey("customer", "user-2", 7)

	for _, k := range []string{mine, alsoMine, theirs} {
		c.SetRelation(ctx, k, datagrid.Relation{HasAccess: true})
	}

	c.InvalidateIdentity(ctx, "user-1")

	if _, ok := c.GetRelation(ctx, mine); ok {
		t.Error("identity entry should be invalidated")
	}
	if _, ok := c.GetRelation(ctx, alsoMine); ok {
		t.Error("identity entry in other entity should be invalidated")
	}
	if _, ok := c.GetRelation(ctx, theirs); !ok {
		t.Error("other identity's entry should survive")
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	c.SetRelation(ctx, datagrid.RelationKey("customer", "user-1", 1), datagrid.Relation{})
	c.SetCount(ctx, datagrid.CountKey("customer"), 5, 0)
	c.Reset(ctx)

	if _, ok := c.GetRelation(ctx, datagrid.RelationKey("customer", "user-1", 1)); ok {
		t.Error("relation should be gone after reset")
	}
	if _, ok := c.GetCount(ctx, datagrid.CountKey("customer")); ok {
		t.Error("count should be gone after reset")
	}
}

func TestMaxSizeEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithMaxSize(2))

	c.SetCount(ctx, "count:a:total", 1, 0)
	c.SetCount(ctx, "count:b:total", 2, 0)
	c.SetCount(ctx, "count:c:total", 3, 0)

	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	if n > 2 {
		t.Errorf("expected at most 2 entries, got %d", n)
	}
}
