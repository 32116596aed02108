package extension

import (
	"sort"
	"sync"

	"github.com/xraph/datagrid/entity"
)

// registration pairs a mutator with its ordering key. Registrations are
// named: re-registering (point, entity, name) replaces the function in
// place, so module reloads never duplicate applied clauses. The original
// sequence number is kept on replacement to keep tie-breaking stable.
type registration[T any] struct {
	name     string
	priority int
	seq      int
	fn       T
}

// Registry holds mutators per extension point per entity. Registration is
// write-once-at-startup shared state; application copies and sorts under a
// read lock, so concurrent listing requests never observe partial order.
type Registry struct {
	mu  sync.RWMutex
	seq int

	columns   map[string][]registration[ColumnsFunc]
	where     map[string][]registration[WhereFunc]
	joins     map[string][]registration[JoinsFunc]
	groupBy   map[string][]registration[GroupByFunc]
	rowFormat map[string][]registration[RowFormatFunc]
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{
		columns:   make(map[string][]registration[ColumnsFunc]),
		where:     make(map[string][]registration[WhereFunc]),
		joins:     make(map[string][]registration[JoinsFunc]),
		groupBy:   make(map[string][]registration[GroupByFunc]),
		rowFormat: make(map[string][]registration[RowFormatFunc]),
	}
}

// upsert replaces a same-named registration or appends a new one.
func upsert[T any](list []registration[T], name string, priority, seq int, fn T) []registration[T] {
	for i := range list {
		if list[i].name == name {
			list[i].priority = priority
			list[i].fn = fn
			return list
		}
	}
	return append(list, registration[T]{name: name, priority: priority, seq: seq, fn: fn})
}

// ordered returns a sorted copy: ascending priority, registration order on
// ties (first registered runs first).
func ordered[T any](list []registration[T]) []registration[T] {
	out := make([]registration[T], len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority < out[j].priority
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// OnColumns registers a column-list mutator for an entity.
func (r *Registry) OnColumns(entityName, name string, priority int, fn ColumnsFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.columns[entityName] = upsert(r.columns[entityName], name, priority, r.seq, fn)
}

// OnWhere registers a WHERE mutator for an entity.
func (r *Registry) OnWhere(entityName, name string, priority int, fn WhereFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.where[entityName] = upsert(r.where[entityName], name, priority, r.seq, fn)
}

// OnJoins registers a JOIN mutator for an entity.
func (r *Registry) OnJoins(entityName, name string, priority int, fn JoinsFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.joins[entityName] = upsert(r.joins[entityName], name, priority, r.seq, fn)
}

// OnGroupBy registers a GROUP BY mutator for an entity.
func (r *Registry) OnGroupBy(entityName, name string, priority int, fn GroupByFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.groupBy[entityName] = upsert(r.groupBy[entityName], name, priority, r.seq, fn)
}

// OnRowFormat registers a row post-processor for an entity.
func (r *Registry) OnRowFormat(entityName, name string, priority int, fn RowFormatFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.rowFormat[entityName] = upsert(r.rowFormat[entityName], name, priority, r.seq, fn)
}

// ApplyColumns folds all column mutators over cols, in order.
func (r *Registry) ApplyColumns(ctx Context, cols []entity.Column) []entity.Column {
	r.mu.RLock()
	regs := ordered(r.columns[ctx.Entity()])
	r.mu.RUnlock()
	for _, reg := range regs {
		cols = reg.fn(ctx, cols)
	}
	return cols
}

// ApplyWhere folds all WHERE mutators over where, in order.
func (r *Registry) ApplyWhere(ctx Context, where []entity.Where) []entity.Where {
	r.mu.RLock()
	regs := ordered(r.where[ctx.Entity()])
	r.mu.RUnlock()
	for _, reg := range regs {
		where = reg.fn(ctx, where)
	}
	return where
}

// ApplyJoins folds all JOIN mutators over joins, in order.
func (r *Registry) ApplyJoins(ctx Context, joins []entity.Join) []entity.Join {
	r.mu.RLock()
	regs := ordered(r.joins[ctx.Entity()])
	r.mu.RUnlock()
	for _, reg := range regs {
		joins = reg.fn(ctx, joins)
	}
	return joins
}

// ApplyGroupBy folds all GROUP BY mutators over groupBy, in order.
func (r *Registry) ApplyGroupBy(ctx Context, groupBy string) string {
	r.mu.RLock()
	regs := ordered(r.groupBy[ctx.Entity()])
	r.mu.RUnlock()
	for _, reg := range regs {
		groupBy = reg.fn(ctx, groupBy)
	}
	return groupBy
}

// ApplyRowFormat folds all row post-processors over row, in order.
func (r *Registry) ApplyRowFormat(ctx Context, row map[string]any) map[string]any {
	r.mu.RLock()
	regs := ordered(r.rowFormat[ctx.Entity()])
	r.mu.RUnlock()
	for _, reg := range regs {
		row = reg.fn(ctx, row)
	}
	return row
}
