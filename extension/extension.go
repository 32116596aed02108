// Package extension implements the ordered hook registry that lets
// independently-loaded modules mutate query construction for entities they
// do not own.
//
// Each extension point (columns, where, joins, group-by, row format) is a
// typed function signature, so mutators are checked at compile time instead
// of being resolved from stringly-typed event names at runtime.
// Mutators receive the current accumulator value plus a read-only request
// Context and return a new value; they never reach into ambient request
// state.
package extension

import (
	"maps"

	"github.com/xraph/datagrid/entity"
)

// Context is the immutable request view passed to every mutator.
// The extra map is cloned at construction; mutators read it through
// accessors and cannot alter the originating request.
type Context struct {
	entity     string
	search     string
	identityID string
	instanceID int64
	extra      map[string]string
}

// NewContext builds a mutator context. The extra map is copied.
func NewContext(entityName, search, identityID string, instanceID int64, extra map[string]string) Context {
	return Context{
		entity:     entityName,
		search:     search,
		identityID: identityID,
		instanceID: instanceID,
		extra:      maps.Clone(extra),
	}
}

// Entity returns the entity name being listed.
func (c Context) Entity() string { return c.entity }

// Search returns the raw search value, possibly empty.
func (c Context) Search() string { return c.search }

// IdentityID returns the requesting identity's ID.
func (c Context) IdentityID() string { return c.identityID }

// InstanceID returns the parent instance scope, 0 when unscoped.
func (c Context) InstanceID() int64 { return c.instanceID }

// Extra returns a request extra parameter, e.g. "status_filter".
func (c Context) Extra(key string) (string, bool) {
	v, ok := c.extra[key]
	return v, ok
}

// ColumnsFunc mutates the projected column list.
type ColumnsFunc func(ctx Context, cols []entity.Column) []entity.Column

// WhereFunc appends or replaces WHERE fragments.
type WhereFunc func(ctx Context, where []entity.Where) []entity.Where

// JoinsFunc appends JOIN fragments.
type JoinsFunc func(ctx Context, joins []entity.Join) []entity.Join

// GroupByFunc sets or overrides the GROUP BY expression.
type GroupByFunc func(ctx Context, groupBy string) string

// RowFormatFunc post-processes a formatted row.
type RowFormatFunc func(ctx Context, row map[string]any) map[string]any
