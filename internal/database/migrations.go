package database

// migrations is an ordered list of SQL migration groups. Each entry is a
// slice of SQL statements executed together in a single transaction. The
// version number is the 1-based index into this slice.
var migrations = [][]string{
	// Migration 1: tenants, users, invitations.
	{
		`CREATE TABLE tenants (
			id TEXT PRIMARY KEY,
			slug TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			tenant_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (tenant_id) REFERENCES tenants(id)
		)`,

		`CREATE TABLE invitations (
			id TEXT PRIMARY KEY,
			token TEXT UNIQUE NOT NULL,
			email TEXT NOT NULL,
			tenant_id TEXT NOT NULL,
			accepted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TEXT NOT NULL,
			FOREIGN KEY (tenant_id) REFERENCES tenants(id)
		)`,
	},

	// Migration 2: records. One table for every model: the model name is a
	// column and the fields live in a JSON blob, mirroring the uniform
	// per-model URL convention.
	{
		`CREATE TABLE records (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			model TEXT NOT NULL,
			data TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			deleted_at TEXT,
			FOREIGN KEY (tenant_id) REFERENCES tenants(id)
		)`,
		`CREATE INDEX idx_records_tenant_model ON records(tenant_id, model, deleted_at)`,
		`CREATE INDEX idx_records_created ON records(tenant_id, model, created_at)`,
	},

	// Migration 3: audit trail.
	{
		`CREATE TABLE audits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tenant_id TEXT NOT NULL,
			model TEXT NOT NULL,
			record_id TEXT NOT NULL,
			action TEXT NOT NULL,
			changes TEXT,
			created_at TEXT NOT NULL,
			FOREIGN KEY (tenant_id) REFERENCES tenants(id)
		)`,
		`CREATE INDEX idx_audits_record ON audits(tenant_id, model, record_id, id)`,
	},
}
