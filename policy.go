package datagrid

// Actions are the per-row affordances a caller may be granted.
type Actions struct {
	View   bool `json:"view"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
}

// Policy maps a resolved relation to row-level actions. A single
// parameterized policy replaces per-entity reimplementations of
// canView/canUpdate/canDelete: entities that grant differently override the
// grant table without re-deriving the relation.
type Policy struct {
	// Grants maps each access type to the actions it allows.
	Grants map[AccessType]Actions `json:"grants"`

	// Capabilities grants actions to holders of a capability pattern
	// regardless of relation, e.g. "edit_all_customers" → update.
	// Patterns support a trailing '*' wildcard.
	Capabilities map[string]Actions `json:"capabilities,omitempty"`
}

// DefaultPolicy returns the stock grant table: administrators and owners
// get everything, delegates view and update, members and platform roles
// view only. AccessNone gets nothing.
func DefaultPolicy() Policy {
	return Policy{
		Grants: map[AccessType]Actions{
			AccessAdmin:    {View: true, Update: true, Delete: true},
			AccessOwner:    {View: true, Update: true, Delete: true},
			AccessDelegate: {View: true, Update: true},
			AccessMember:   {View: true},
			AccessPlatform: {View: true},
		},
	}
}

// actionsFor unions the relation grant with capability overrides. Pure:
// same relation and capabilities always yield the same actions.
func (p Policy) actionsFor(rel Relation, caps []string) Actions {
	a := p.Grants[rel.AccessType]
	for pattern, granted := range p.Capabilities {
		if !anyMatches(pattern, caps) {
			continue
		}
		a.View = a.View || granted.View
		a.Update = a.Update || granted.Update
		a.Delete = a.Delete || granted.Delete
	}
	return a
}

// anyMatches reports whether any held capability matches the pattern.
func anyMatches(pattern string, held []string) bool {
	for _, c := range held {
		if matchCapability(pattern, c) {
			return true
		}
	}
	return false
}

// CanView reports whether the relation permits viewing a row.
func (p Policy) CanView(rel Relation, caps []string) bool {
	return p.actionsFor(rel, caps).View
}

// CanUpdate reports whether the relation permits updating a row.
func (p Policy) CanUpdate(rel Relation, caps []string) bool {
	return p.actionsFor(rel, caps).Update
}

// CanDelete reports whether the relation permits deleting a row.
func (p Policy) CanDelete(rel Relation, caps []string) bool {
	return p.actionsFor(rel, caps).Delete
}
