package sqlite

import (
	"context"
	"testing"

	"github.com/xraph/datagrid/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	s := New(db)
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

func TestAdministrators(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.IsAdministrator(ctx, "u1")
	if err != nil || ok {
		t.Fatalf("expected no admin, got %v %v", ok, err)
	}

	if err := s.AddAdministrator(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	// Idempotent.
	if err := s.AddAdministrator(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	ok, err = s.IsAdministrator(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("expected admin, got %v %v", ok, err)
	}

	if err := s.RemoveAdministrator(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	ok, _ = s.IsAdministrator(ctx, "u1")
	if ok {
		t.Fatal("expected admin removed")
	}
}

func TestMemberships(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	add := func(instance int64, kind store.MembershipKind) {
		t.Helper()
		if err := s.AddMembership(ctx, &store.Membership{
			IdentityID: "u1", Entity: "customer", InstanceID: instance, Kind: kind,
		}); err != nil {
			t.Fatal(err)
		}
	}
	add(3, store.KindMember)
	add(9, store.KindOwner)

	// Any-instance lookup returns the matched instance.
	matched, found, err := s.IsMember(ctx, "u1", "customer", 0)
	if err != nil || !found || matched != 3 {
		t.Fatalf("member any: got %d %v %v", matched, found, err)
	}

	// Pinned lookup only matches the right instance.
	_, found, _ = s.IsMember(ctx, "u1", "customer", 5)
	if found {
		t.Fatal("pinned lookup must not match other instances")
	}
	matched, found, _ = s.IsOwner(ctx, "u1", "customer", 9)
	if !found || matched != 9 {
		t.Fatalf("owner pinned: got %d %v", matched, found)
	}

	// Kinds do not bleed into each other.
	_, found, _ = s.IsDelegate(ctx, "u1", "customer", 0)
	if found {
		t.Fatal("no delegate link exists")
	}
	_, found, _ = s.IsMember(ctx, "u1", "invoice", 0)
	if found {
		t.Fatal("entity must be part of the key")
	}

	if err := s.RemoveMembership(ctx, "u1", "customer", 3); err != nil {
		t.Fatal(err)
	}
	_, found, _ = s.IsMember(ctx, "u1", "customer", 0)
	if found {
		t.Fatal("expected membership removed")
	}
}

func TestPlatformRoles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	roles, err := s.PlatformRoles(ctx, "u1")
	if err != nil || len(roles) != 0 {
		t.Fatalf("expected no roles, got %v %v", roles, err)
	}

	_ = s.AddPlatformRole(ctx, "u1", "billing")
	_ = s.AddPlatformRole(ctx, "u1", "auditor")
	_ = s.AddPlatformRole(ctx, "u1", "auditor")

	roles, err = s.PlatformRoles(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 2 || roles[0] != "auditor" || roles[1] != "billing" {
		t.Errorf("expected sorted unique roles, got %v", roles)
	}
}

func TestQueryAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.DB().ExecContext(ctx,
		`CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT, qty INTEGER)`); err != nil {
		t.Fatal(err)
	}
	for i, name := range []string{"alpha", "beta", "gamma"} {
		if _, err := s.DB().ExecContext(ctx,
			`INSERT INTO things (id, name, qty) VALUES (?, ?, ?)`, i+1, name, i*10); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := s.Query(ctx, `SELECT t.name AS name, t.qty AS qty FROM things t WHERE t.qty >= ? ORDER BY t.id ASC`, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Text columns come back as string, not []byte.
	if rows[0]["name"] != "beta" {
		t.Errorf("unexpected first row: %v", rows[0])
	}

	n, err := s.Count(ctx, `SELECT COUNT(*) FROM things t WHERE t.qty >= ?`, 10)
	if err != nil || n != 2 {
		t.Fatalf("count: got %d %v", n, err)
	}
}

func TestGetRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.DB().ExecContext(ctx,
		`CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.DB().ExecContext(ctx,
		`INSERT INTO things (id, name) VALUES (7, 'alpha')`); err != nil {
		t.Fatal(err)
	}

	rec, err := s.GetRecord(ctx, "things", "id", 7)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec["name"] != "alpha" {
		t.Fatalf("unexpected record: %v", rec)
	}

	rec, err = s.GetRecord(ctx, "things", "id", 99)
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Fatalf("expected nil for missing record, got %v", rec)
	}
}
