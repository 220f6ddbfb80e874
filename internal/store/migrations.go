package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	org_url     TEXT NOT NULL DEFAULT '',
	started_at  DATETIME NOT NULL,
	finished_at DATETIME,
	tests_seen  INTEGER NOT NULL DEFAULT 0,
	updated     INTEGER NOT NULL DEFAULT 0,
	errors      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS sync_records (
	id              TEXT PRIMARY KEY,
	run_id          TEXT NOT NULL DEFAULT '',
	case_id         INTEGER NOT NULL,
	test_name       TEXT NOT NULL DEFAULT '',
	previous_status TEXT NOT NULL DEFAULT '',
	new_status      TEXT NOT NULL DEFAULT '',
	action          TEXT NOT NULL CHECK(action IN ('updated', 'unchanged')),
	synced_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_sync_records_run_id ON sync_records(run_id);
CREATE INDEX IF NOT EXISTS idx_sync_records_case_id ON sync_records(case_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_sync_records_synced_at
	ON sync_records(synced_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
