// Package entity defines the declarative description of a queryable entity
// (base table, projected columns, searchable columns, joins, default
// predicates) plus the process-wide registry those descriptors live in.
//
// A Descriptor is declared once by the module that owns the entity and is
// immutable after registration. Everything interpolated into SQL text
// (table names, aliases, column identifiers) comes from the descriptor and
// is validated at registration time; request input only ever travels as
// bound parameters.
package entity

import (
	"fmt"
	"regexp"
	"slices"
)

// Column is a single projected column of a listing query.
type Column struct {
	// Expr is the SQL expression selecting the value, e.g. "c.company_name".
	Expr string `json:"expr"`

	// Alias is the name the value is exposed under in formatted rows.
	Alias string `json:"alias"`

	// Sortable marks the column as a valid ORDER BY target.
	Sortable bool `json:"sortable"`
}

// Join is a join fragment appended verbatim after the base table,
// e.g. "LEFT JOIN users u ON u.id = c.user_id".
type Join struct {
	Clause string `json:"clause"`
}

// Where is a parameterized predicate. Predicates are AND-joined; Args are
// bound, never interpolated.
type Where struct {
	Expr string `json:"expr"`
	Args []any  `json:"args,omitempty"`
}

// Descriptor declares a queryable entity. One instance per entity type,
// owned by the module that registers it, immutable after registration.
type Descriptor struct {
	// Name is the unique entity name, e.g. "customer".
	Name string `json:"name"`

	// Table is the base table name.
	Table string `json:"table"`

	// Alias is the base table alias used in column expressions.
	Alias string `json:"alias"`

	// IndexColumn is the primary key column (unqualified). It is the
	// ordering fallback and the row identity source.
	IndexColumn string `json:"index_column"`

	// Columns is the default projected column list.
	Columns []Column `json:"columns"`

	// Searchable lists the column expressions the search value is matched
	// against (OR-joined, case-insensitive substring).
	Searchable []string `json:"searchable"`

	// BaseJoins are joins present in every query for this entity.
	BaseJoins []Join `json:"base_joins,omitempty"`

	// BaseWhere are structural predicates present in every query,
	// including the unfiltered total count (e.g. soft-delete exclusion).
	BaseWhere []Where `json:"base_where,omitempty"`

	// ActiveColumn and ActiveValue drive the status badge and the default
	// status filter. The active literal is entity configuration; modules
	// in the wild use "active", "aktif", and worse.
	ActiveColumn string `json:"active_column,omitempty"`
	ActiveValue  string `json:"active_value,omitempty"`

	// OwnerColumn is the column holding the owning identity's ID
	// (unqualified). Used to scope rows for owner-resolved callers.
	OwnerColumn string `json:"owner_column,omitempty"`

	// ScopeColumn is the column holding the parent instance ID
	// (unqualified). Used to scope rows for member- and delegate-resolved
	// callers to their own branch.
	ScopeColumn string `json:"scope_column,omitempty"`

	// ListCapability is the coarse capability required to list the entity.
	// Defaults to "view_<name>_list".
	ListCapability string `json:"list_capability,omitempty"`

	// PlatformRoles are cross-module roles granted blanket access to this
	// entity without an explicit relation row.
	PlatformRoles []string `json:"platform_roles,omitempty"`
}

// identRe matches a bare or alias-qualified SQL identifier. Everything the
// engine interpolates into query text must match it.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidIdent reports whether s is a safe, interpolatable identifier.
func ValidIdent(s string) bool { return identRe.MatchString(s) }

// Validate checks the descriptor for structural problems. It is called at
// registration so malformed configuration fails fast, not at first query.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("entity: descriptor has no name")
	}
	if !ValidIdent(d.Name) {
		return fmt.Errorf("entity %q: name is not a valid identifier", d.Name)
	}
	if !ValidIdent(d.Table) {
		return fmt.Errorf("entity %q: invalid table %q", d.Name, d.Table)
	}
	if !ValidIdent(d.Alias) {
		return fmt.Errorf("entity %q: invalid alias %q", d.Name, d.Alias)
	}
	if !ValidIdent(d.IndexColumn) {
		return fmt.Errorf("entity %q: invalid index column %q", d.Name, d.IndexColumn)
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("entity %q: no columns declared", d.Name)
	}
	for i, c := range d.Columns {
		if c.Expr == "" {
			return fmt.Errorf("entity %q: column %d has no expression", d.Name, i)
		}
		if !ValidIdent(c.Alias) {
			return fmt.Errorf("entity %q: column %d has invalid alias %q", d.Name, i, c.Alias)
		}
	}
	for _, s := range d.Searchable {
		if !ValidIdent(s) {
			return fmt.Errorf("entity %q: invalid searchable column %q", d.Name, s)
		}
	}
	for _, col := range []string{d.ActiveColumn, d.OwnerColumn, d.ScopeColumn} {
		if col != "" && !ValidIdent(col) {
			return fmt.Errorf("entity %q: invalid column %q", d.Name, col)
		}
	}
	return nil
}

// Capability returns the coarse listing capability for the entity.
func (d *Descriptor) Capability() string {
	if d.ListCapability != "" {
		return d.ListCapability
	}
	return "view_" + d.Name + "_list"
}

// equal reports whether two descriptors declare the same entity with the
// same configuration. Identical re-registration is a load-order no-op.
func (d *Descriptor) equal(o *Descriptor) bool {
	if d.Name != o.Name || d.Table != o.Table || d.Alias != o.Alias ||
		d.IndexColumn != o.IndexColumn ||
		d.ActiveColumn != o.ActiveColumn || d.ActiveValue != o.ActiveValue ||
		d.OwnerColumn != o.OwnerColumn || d.ScopeColumn != o.ScopeColumn ||
		d.ListCapability != o.ListCapability {
		return false
	}
	if !slices.Equal(d.Columns, o.Columns) ||
		!slices.Equal(d.Searchable, o.Searchable) ||
		!slices.Equal(d.BaseJoins, o.BaseJoins) ||
		!slices.Equal(d.PlatformRoles, o.PlatformRoles) {
		return false
	}
	if len(d.BaseWhere) != len(o.BaseWhere) {
		return false
	}
	for i := range d.BaseWhere {
		if d.BaseWhere[i].Expr != o.BaseWhere[i].Expr {
			return false
		}
	}
	return true
}
