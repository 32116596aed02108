package api

// ──────────────────────────────────────────────────
// Grid requests
// ──────────────────────────────────────────────────

// SearchInput is the nested search clause of a listing request.
type SearchInput struct {
	Value string `json:"value" description:"Raw search value, matched as a case-insensitive substring"`
}

// OrderInput is one ordering clause of a listing request.
type OrderInput struct {
	Column int    `json:"column" description:"Index into the projected column list"`
	Dir    string `json:"dir" description:"Sort direction (asc or desc)"`
}

// ListGridRequest is the request body for a grid listing.
type ListGridRequest struct {
	Entity     string            `path:"entity" description:"Registered entity name"`
	Draw       int               `json:"draw" description:"Request correlation token, echoed back"`
	Start      int               `json:"start" description:"Zero-based row offset"`
	Length     int               `json:"length" description:"Page size (-1 for all rows)"`
	Search     SearchInput       `json:"search" description:"Search clause"`
	Order      []OrderInput      `json:"order,omitempty" description:"Ordering clauses (first one wins)"`
	InstanceID int64             `json:"instance_id,omitempty" description:"Parent instance scope (0 = caller's own scope)"`
	Token      string            `json:"token,omitempty" description:"Anti-forgery token"`
	Extra      map[string]string `json:"extra,omitempty" description:"Entity-specific extra parameters"`
}

// GetRecordRequest is the path parameter set for a detail lookup.
type GetRecordRequest struct {
	Entity   string `path:"entity" description:"Registered entity name"`
	RecordID int64  `path:"recordId" description:"Row primary key"`
	Token    string `query:"token" description:"Anti-forgery token"`
}

// ──────────────────────────────────────────────────
// Relation requests
// ──────────────────────────────────────────────────

// AddMembershipRequest is the body for adding a relation row.
type AddMembershipRequest struct {
	IdentityID string `json:"identity_id" description:"Identity identifier"`
	Entity     string `json:"entity" description:"Entity name"`
	InstanceID int64  `json:"instance_id" description:"Entity instance ID"`
	Kind       string `json:"kind" description:"Relation kind (member, delegate, owner)"`
}

// RemoveMembershipRequest is the body for removing relation rows.
type RemoveMembershipRequest struct {
	IdentityID string `json:"identity_id" description:"Identity identifier"`
	Entity     string `json:"entity" description:"Entity name"`
	InstanceID int64  `json:"instance_id" description:"Entity instance ID"`
}

// AdministratorRequest is the body for administrator grants.
type AdministratorRequest struct {
	IdentityID string `json:"identity_id" description:"Identity identifier"`
}

// PlatformRoleRequest is the body for granting a platform role.
type PlatformRoleRequest struct {
	IdentityID string `json:"identity_id" description:"Identity identifier"`
	Role       string `json:"role" description:"Platform role name"`
}

// ──────────────────────────────────────────────────
// Cache and query log requests
// ──────────────────────────────────────────────────

// InvalidateCacheRequest is the body for a targeted cache invalidation.
type InvalidateCacheRequest struct {
	Entity     string `json:"entity" description:"Entity name"`
	InstanceID int64  `json:"instance_id,omitempty" description:"Entity instance ID (0 = unscoped entries)"`
}

// ListQueryLogsRequest holds query parameters for the query log listing.
type ListQueryLogsRequest struct {
	Limit int `query:"limit" description:"Maximum results (default: 50)"`
}
