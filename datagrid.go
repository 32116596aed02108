// Package datagrid provides a permission-scoped server-side tabular query
// engine for Go.
//
// Modules declare queryable entities once (table, columns, searchable
// columns, default joins and predicates) and the engine turns incoming
// listing requests into parameterized SELECT and COUNT queries, narrowed to
// the rows the caller's access relation permits. Other modules extend query
// construction through ordered, typed extension points without touching the
// engine or the owning module.
//
//	eng, err := datagrid.NewEngine(
//	    datagrid.WithStore(st),
//	)
//	err = eng.RegisterEntity(&entity.Descriptor{
//	    Name: "customer", Table: "customers", Alias: "c", IndexColumn: "id",
//	    Columns: []entity.Column{{Expr: "c.company_name", Alias: "company_name", Sortable: true}},
//	    Searchable: []string{"c.company_name"},
//	})
//	env, err := eng.List(ctx, &datagrid.ListRequest{
//	    Entity:   "customer",
//	    Identity: datagrid.Identity{ID: "user_123", Capabilities: []string{"view_customer_list"}},
//	    Params:   datagrid.RequestParams{Draw: 1, Start: 0, Length: 25},
//	})
package datagrid

import "strings"

// Identity is the requesting actor. Capabilities are opaque strings
// supplied by the host platform's capability system.
type Identity struct {
	ID           string   `json:"id"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// SortDir is an ORDER BY direction.
type SortDir string

const (
	// SortAsc sorts ascending.
	SortAsc SortDir = "asc"

	// SortDesc sorts descending.
	SortDesc SortDir = "desc"
)

// ParseSortDir clamps an arbitrary direction string to a valid SortDir.
// Anything that is not "desc" sorts ascending; sort input is UI-driven and
// degrades instead of failing.
func ParseSortDir(s string) SortDir {
	if strings.EqualFold(s, string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// RequestParams are the per-request listing parameters. Constructed fresh
// per call and never retained.
type RequestParams struct {
	// Draw is the opaque request-correlation token echoed back in the
	// envelope so the caller can discard out-of-order responses.
	Draw int `json:"draw"`

	// Start is the zero-based row offset.
	Start int `json:"start"`

	// Length is the page size; -1 returns the full result set.
	Length int `json:"length"`

	// Search is the raw search value, matched case-insensitively as a
	// substring across the entity's searchable columns.
	Search string `json:"search"`

	// OrderColumn is the index into the projected column list. Out-of-range
	// or non-sortable indexes fall back to the entity's index column.
	OrderColumn int `json:"order_column"`

	// OrderDir is the sort direction.
	OrderDir SortDir `json:"order_dir"`

	// Extra carries entity-specific parameters, e.g. "status_filter".
	Extra map[string]string `json:"extra,omitempty"`
}

// ListRequest is the input to Engine.List.
type ListRequest struct {
	// Entity is the registered entity name.
	Entity string `json:"entity"`

	// Identity is the caller.
	Identity Identity `json:"identity"`

	// InstanceID optionally pins the parent instance scope (e.g. a branch
	// ID); 0 resolves the caller's own relation scope.
	InstanceID int64 `json:"instance_id,omitempty"`

	// Token is the anti-forgery token validated before anything else.
	Token string `json:"token,omitempty"`

	// Params are the listing parameters.
	Params RequestParams `json:"params"`
}

// Envelope keys for row identity, consumed by the external panel layer to
// route a row click to the correct detail endpoint.
const (
	RowIDKey   = "DT_RowId"
	RowDataKey = "DT_RowData"
	ActionsKey = "actions"
	StatusKey  = "status"
)

// Placeholder renders unknown or missing optional fields. It is never the
// empty string, so "field absent" stays distinguishable from "field empty".
const Placeholder = "-"

// RowData is the stable identity of a formatted row.
type RowData struct {
	ID     int64  `json:"id"`
	Entity string `json:"entity"`
}

// Row is a formatted response row: column aliases plus RowIDKey,
// RowDataKey, StatusKey, and ActionsKey.
type Row map[string]any

// Envelope is the listing response.
//
// RecordsTotal ignores search and ad-hoc filters; RecordsFiltered reflects
// search, extension-contributed predicates, and relation scoping. The two
// counts and the page are independent reads, so under concurrent writes
// they may observe slightly different snapshots. Callers must tolerate it.
type Envelope struct {
	Draw            int   `json:"draw"`
	RecordsTotal    int64 `json:"recordsTotal"`
	RecordsFiltered int64 `json:"recordsFiltered"`
	Rows            []Row `json:"data"`
}
