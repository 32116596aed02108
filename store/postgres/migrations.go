package postgres

// migrations are applied in order on Migrate. Statements are idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS dg_administrators (
		identity_id TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS dg_memberships (
		identity_id TEXT NOT NULL,
		entity      TEXT NOT NULL,
		instance_id BIGINT NOT NULL,
		kind        TEXT NOT NULL,
		PRIMARY KEY (identity_id, entity, instance_id, kind)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_dg_memberships_lookup
		ON dg_memberships (identity_id, entity, kind)`,
	`CREATE TABLE IF NOT EXISTS dg_platform_roles (
		identity_id TEXT NOT NULL,
		role        TEXT NOT NULL,
		PRIMARY KEY (identity_id, role)
	)`,
}
