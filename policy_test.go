package datagrid

import "testing"

func TestDefaultPolicyGrants(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		access    AccessType
		view, upd bool
		del       bool
	}{
		{AccessAdmin, true, true, true},
		{AccessOwner, true, true, true},
		{AccessDelegate, true, true, false},
		{AccessMember, true, false, false},
		{AccessPlatform, true, false, false},
		{AccessNone, false, false, false},
	}

	for _, tt := range tests {
		rel := Relation{AccessType: tt.access}
		if got := p.CanView(rel, nil); got != tt.view {
			t.Errorf("%s: CanView = %v, want %v", tt.access, got, tt.view)
		}
		if got := p.CanUpdate(rel, nil); got != tt.upd {
			t.Errorf("%s: CanUpdate = %v, want %v", tt.access, got, tt.upd)
		}
		if got := p.CanDelete(rel, nil); got != tt.del {
			t.Errorf("%s: CanDelete = %v, want %v", tt.access, got, tt.del)
		}
	}
}

func TestPolicyCapabilityOverride(t *testing.T) {
	p := DefaultPolicy()
	p.Capabilities = map[string]Actions{
		"edit_all_*": {Update: true},
	}

	member := Relation{AccessType: AccessMember}

	// The override adds update to the member grant without touching view.
	if !p.CanUpdate(member, []string{"edit_all_customers"}) {
		t.Error("capability override should grant update")
	}
	if p.CanUpdate(member, []string{"view_customer_list"}) {
		t.Error("unrelated capability must not grant update")
	}
	if !p.CanView(member, nil) {
		t.Error("member view grant must survive overrides")
	}

	// Overrides union with the grant table even for AccessNone.
	if !p.CanUpdate(Relation{AccessType: AccessNone}, []string{"edit_all_x"}) {
		t.Error("capability override should apply regardless of relation")
	}
}
