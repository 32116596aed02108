package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xraph/datagrid/store"
)

// newTestStore starts a throwaway PostgreSQL container. Tests are skipped
// when no container runtime is available.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:18-alpine",
		tcpostgres.WithDatabase("datagrid_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: cannot start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := Open(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}
	s := New(pool)
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRebind(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"WHERE a = ?", "WHERE a = $1"},
		{"WHERE a = ? AND b = ? LIMIT ? OFFSET ?", "WHERE a = $1 AND b = $2 LIMIT $3 OFFSET $4"},
	}
	for _, tt := range tests {
		if got := rebind(tt.in); got != tt.want {
			t.Errorf("rebind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIntegration_Relations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddAdministrator(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddAdministrator(ctx, "u1"); err != nil {
		t.Fatalf("administrator grant must be idempotent: %v", err)
	}
	ok, err := s.IsAdministrator(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("expected admin, got %v %v", ok, err)
	}

	if err := s.AddMembership(ctx, &store.Membership{
		IdentityID: "u2", Entity: "customer", InstanceID: 3, Kind: store.KindMember,
	}); err != nil {
		t.Fatal(err)
	}
	matched, found, err := s.IsMember(ctx, "u2", "customer", 0)
	if err != nil || !found || matched != 3 {
		t.Fatalf("member any: got %d %v %v", matched, found, err)
	}
	_, found, _ = s.IsOwner(ctx, "u2", "customer", 0)
	if found {
		t.Fatal("kinds must not bleed")
	}

	_ = s.AddPlatformRole(ctx, "u2", "auditor")
	roles, err := s.PlatformRoles(ctx, "u2")
	if err != nil || len(roles) != 1 || roles[0] != "auditor" {
		t.Fatalf("platform roles: got %v %v", roles, err)
	}

	if err := s.RemoveMembership(ctx, "u2", "customer", 3); err != nil {
		t.Fatal(err)
	}
	_, found, _ = s.IsMember(ctx, "u2", "customer", 0)
	if found {
		t.Fatal("expected membership removed")
	}
}

func TestIntegration_QueryRebinding(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Pool().Exec(ctx,
		`CREATE TABLE things (id BIGINT PRIMARY KEY, name TEXT, qty BIGINT)`); err != nil {
		t.Fatal(err)
	}
	for i, name := range []string{"alpha", "beta", "gamma"} {
		if _, err := s.Pool().Exec(ctx,
			`INSERT INTO things (id, name, qty) VALUES ($1, $2, $3)`, i+1, name, i*10); err != nil {
			t.Fatal(err)
		}
	}

	// The store accepts the engine's '?' placeholders.
	rows, err := s.Query(ctx,
		`SELECT t.name AS name FROM things t WHERE t.qty >= ? ORDER BY t.id ASC LIMIT ? OFFSET ?`,
		10, 5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0]["name"] != "beta" {
		t.Fatalf("unexpected rows: %v", rows)
	}

	n, err := s.Count(ctx, `SELECT COUNT(*) FROM things t WHERE t.qty >= ?`, 10)
	if err != nil || n != 2 {
		t.Fatalf("count: got %d %v", n, err)
	}

	rec, err := s.GetRecord(ctx, "things", "id", 2)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec["name"] != "beta" {
		t.Fatalf("unexpected record: %v", rec)
	}
	rec, err = s.GetRecord(ctx, "things", "id", 99)
	if err != nil || rec != nil {
		t.Fatalf("expected nil for missing record, got %v %v", rec, err)
	}
}
