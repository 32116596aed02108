// Package sqlite provides a SQLite implementation of the datagrid store
// using database/sql over the cgo-free modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/xraph/datagrid/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a SQLite implementation of the datagrid store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at path. Use ":memory:" for an
// ephemeral database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("datagrid/sqlite: open %s: %w", path, err)
	}
	// The modernc driver serializes writes; a single connection avoids
	// SQLITE_BUSY on concurrent access.
	db.SetMaxOpenConns(1)
	return db, nil
}

// New creates a SQLite store over an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for fixture setup.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate creates the relation tables.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("datagrid/sqlite: migrate: %w", err)
		}
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ──────────────────────────────────────────────────
// Querier
// ──────────────────────────────────────────────────

func (s *Store) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("datagrid/sqlite: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("datagrid/sqlite: columns: %w", err)
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("datagrid/sqlite: scan: %w", err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("datagrid/sqlite: rows: %w", err)
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("datagrid/sqlite: count: %w", err)
	}
	return n, nil
}

// ──────────────────────────────────────────────────
// RelationStore
// ──────────────────────────────────────────────────

func (s *Store) IsAdministrator(ctx context.Context, identityID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM dg_administrators WHERE identity_id = ?`, identityID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("datagrid/sqlite: is administrator: %w", err)
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
		WHERE identity_id = ? AND entity = ? AND kind = ?`
	args := []any{identityID, entityName, string(kind)}
	if instanceID != 0 {
		query += ` AND instance_id = ?`
		args = append(args, instanceID)
	}
	query += ` LIMIT 1`

	var matched int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&matched)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("datagrid/sqlite: membership %s: %w", kind, err)
	}
	return matched, true, nil
}

func (s *Store) PlatformRoles(ctx context.Context, identityID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role FROM dg_platform_roles WHERE identity_id = ? ORDER BY role`, identityID)
	if err != nil {
		return nil, fmt.Errorf("datagrid/sqlite: platform roles: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("datagrid/sqlite: platform roles: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// ──────────────────────────────────────────────────
// RelationWriter
// ──────────────────────────────────────────────────

func (s *Store) AddAdministrator(ctx context.Context, identityID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO dg_administrators (identity_id) VALUES (?)`, identityID)
	if err != nil {
		return fmt.Errorf("datagrid/sqlite: add administrator: %w", err)
	}
	return nil
}

func (s *Store) RemoveAdministrator(ctx context.Context, identityID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM dg_administrators WHERE identity_id = ?`, identityID)
	if err != nil {
		return fmt.Errorf("datagrid/sqlite: remove administrator: %w", err)
	}
	return nil
}

func (s *Store) AddMembership(ctx context.Context, m *store.Membership) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO dg_memberships (identity_id, entity, instance_id, kind)
		 VALUES (?, ?, ?, ?)`,
		m.IdentityID, m.Entity, m.InstanceID, string(m.Kind))
	if err != nil {
		return fmt.Errorf("datagrid/sqlite: add membership: %w", err)
	}
	return nil
}

func (s *Store) RemoveMembership(ctx context.Context, identityID, entityName string, instanceID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM dg_memberships WHERE identity_id = ? AND entity = ? AND instance_id = ?`,
		identityID, entityName, instanceID)
	if err != nil {
		return fmt.Errorf("datagrid/sqlite: remove membership: %w", err)
	}
	return nil
}

func (s *Store) AddPlatformRole(ctx context.Context, identityID, role string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO dg_platform_roles (identity_id, role) VALUES (?, ?)`,
		identityID, role)
	if err != nil {
		return fmt.Errorf("datagrid/sqlite: add platform role: %w", err)
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
