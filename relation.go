package datagrid

// AccessType is the terminal state of a relation resolution.
type AccessType string

const (
	// AccessAdmin means the identity is a global administrator.
	AccessAdmin AccessType = "admin"

	// AccessOwner means the identity owns the entity instance.
	AccessOwner AccessType = "owner"

	// AccessDelegate means the identity administers the instance's parent
	// (e.g. a branch administrator).
	AccessDelegate AccessType = "delegate"

	// AccessMember means the identity holds a direct employment or
	// membership link to the instance. The most common relation.
	AccessMember AccessType = "member"

	// AccessPlatform means a cross-module platform role grants blanket
	// access without an explicit relation row.
	AccessPlatform AccessType = "platform"

	// AccessNone means no relation was found. A valid terminal state, not
	// an error: listing with it yields zero rows, fail-closed.
	AccessNone AccessType = "none"
)

// Relation is the computed access relationship between an identity and an
// entity instance. Request-scoped apart from the process cache; never
// persisted to durable storage.
type Relation struct {
	IsAdministrator bool       `json:"is_administrator"`
	IsOwner         bool       `json:"is_owner"`
	IsDelegate      bool       `json:"is_delegate"`
	IsMember        bool       `json:"is_member"`
	PlatformRole    string     `json:"platform_role,omitempty"`
	HasAccess       bool       `json:"has_access"`
	AccessType      AccessType `json:"access_type"`

	// InstanceID is the entity instance the relation was matched against;
	// for members and delegates it scopes which rows are visible.
	InstanceID int64 `json:"instance_id,omitempty"`
}

// noRelation is the fail-closed terminal relation.
var noRelation = Relation{AccessType: AccessNone}
