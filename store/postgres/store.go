// Package postgres provides a PostgreSQL implementation of the datagrid
// store using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xraph/datagrid/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a PostgreSQL implementation of the datagrid store.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects a pgx pool to the given DSN.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("datagrid/postgres: connect: %w", err)
	}
	return pool, nil
}

// New creates a PostgreSQL store over an open pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool exposes the underlying pool for fixture setup.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Migrate creates the relation tables.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("datagrid/postgres: migrate: %w", err)
		}
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// rebind converts '?' placeholders to PostgreSQL's numbered form. The
// engine never emits '?' inside string literals (all values are bound),
// so a plain scan is sufficient.
func rebind(query string) string {
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// ──────────────────────────────────────────────────
// Querier
// ──────────────────────────────────────────────────

func (s *Store) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := s.pool.Query(ctx, rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("datagrid/postgres: query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("datagrid/postgres: scan: %w", err)
		}
		row := make(map[string]any, len(fields))
		for i, f := range fields {
			row[f.Name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("datagrid/postgres: rows: %w", err)
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, rebind(query), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("datagrid/postgres: count: %w", err)
	}
	return n, nil
}

// ──────────────────────────────────────────────────
// RelationStore
// ──────────────────────────────────────────────────

func (s *Store) IsAdministrator(ctx context.Context, identityID string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM dg_administrators WHERE identity_id = $1`, identityID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("datagrid/postgres: is administrator: %w", err)
	}
	return true, nil
}

func (s *Store) IsMember(ctx context.Context, identityID, entityName string, instanceID int64) (int64, bool, error) {
	return s.membership(ctx, identityID, entityName, instanceID, store.KindMember)
}

func (s *Store) IsDelegate(ctx context.Context, identityID, entityName string, instanceID int64) (int64, bool, error) {
	return s.membership(ctx, identityID, entityName, instanceID, store.KindDelegate)
}

func (s *Store) IsOwner(ctx context.Context, identityID, entityName string, instanceID int64) (int64, bool, error) {
	return s.membership(ctx, identityID, entityName, instanceID, store.KindOwner)
}

func (s *Store) membership(ctx context.Context, identityID, entityName string, instanceID int64, kind store.MembershipKind) (int64, bool, error) {
	query := `SELECT instance_id FROM dg_memberships
		WHERE identity_id = $1 AND entity = $2 AND kind = $3`
	args := []any{identityID, entityName, string(kind)}
	if instanceID != 0 {
		query += ` AND instance_id = $4`
		args = append(args, instanceID)
	}
	query += ` LIMIT 1`

	var matched int64
	err := s.pool.QueryRow(ctx, query, args...).Scan(&matched)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("datagrid/postgres: membership %s: %w", kind, err)
	}
	return matched, true, nil
}

func (s *Store) PlatformRoles(ctx context.Context, identityID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT role FROM dg_platform_roles WHERE identity_id = $1 ORDER BY role`, identityID)
	if err != nil {
		return nil, fmt.Errorf("datagrid/postgres: platform roles: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("datagrid/postgres: platform roles: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// ──────────────────────────────────────────────────
// RelationWriter
// ──────────────────────────────────────────────────

func (s *Store) AddAdministrator(ctx context.Context, identityID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO dg_administrators (identity_id) VALUES ($1) ON CONFLICT DO NOTHING`, identityID)
	if err != nil {
		return fmt.Errorf("datagrid/postgres: add administrator: %w", err)
	}
	return nil
}

func (s *Store) RemoveAdministrator(ctx context.Context, identityID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM dg_administrators WHERE identity_id = $1`, identityID)
	if err != nil {
		return fmt.Errorf("datagrid/postgres: remove administrator: %w", err)
	}
	return nil
}

func (s *Store) AddMembership(ctx context.Context, m *store.Membership) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO dg_memberships (identity_id, entity, instance_id, kind)
		 VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
		m.IdentityID, m.Entity, m.InstanceID, string(m.Kind))
	if err != nil {
		return fmt.Errorf("datagrid/postgres: add membership: %w", err)
	}
	return nil
}

func (s *Store) RemoveMembership(ctx context.Context, identityID, entityName string, instanceID int64) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM dg_memberships WHERE identity_id = $1 AND entity = $2 AND instance_id = $3`,
		identityID, entityName, instanceID)
	if err != nil {
		return fmt.Errorf("datagrid/postgres: remove membership: %w", err)
	}
	return nil
}

func (s *Store) AddPlatformRole(ctx context.Context, identityID, role string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO dg_platform_roles (identity_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		identityID, role)
	if err != nil {
		return fmt.Errorf("datagrid/postgres: add platform role: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// RecordStore
// ──────────────────────────────────────────────────

func (s *Store) GetRecord(ctx context.Context, table, indexColumn string, id int64) (map[string]any, error) {
	rows, err := s.Query(ctx,
		fmt.Sprintf("SELECT * FROM %s WHERE %s = ? LIMIT 1", table, indexColumn), id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
