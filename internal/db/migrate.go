package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent and re-run on
// every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillProjectSequences(db); err != nil {
		return fmt.Errorf("backfilling project sequence allocator state: %w", err)
	}
	return nil
}

// Money columns hold decimal strings. SQLite's numeric affinity would turn
// them into floats, so every amount is declared TEXT and summed in Go.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id                 TEXT PRIMARY KEY,
		code               TEXT NOT NULL,
		name               TEXT NOT NULL,
		status             TEXT NOT NULL DEFAULT 'active'
		                   CHECK(status IN ('planning','active','on_hold','completed')),
		budget_total       TEXT NOT NULL DEFAULT '0',
		budget_materials   TEXT NOT NULL DEFAULT '0',
		budget_labour      TEXT NOT NULL DEFAULT '0',
		budget_contingency TEXT NOT NULL DEFAULT '0',
		version            INTEGER NOT NULL DEFAULT 1,
		deleted_at         TEXT,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_code ON projects(UPPER(code))`,

	`CREATE TABLE IF NOT EXISTS phases (
		id                    TEXT PRIMARY KEY,
		project_id            TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		sequence              INTEGER NOT NULL,
		name                  TEXT NOT NULL,
		status                TEXT NOT NULL DEFAULT 'not_started'
		                      CHECK(status IN ('not_started','in_progress','on_hold','completed')),
		alloc_total           TEXT NOT NULL DEFAULT '0',
		alloc_materials       TEXT NOT NULL DEFAULT '0',
		alloc_labour          TEXT NOT NULL DEFAULT '0',
		alloc_equipment       TEXT NOT NULL DEFAULT '0',
		alloc_subcontractors  TEXT NOT NULL DEFAULT '0',
		alloc_contingency     TEXT NOT NULL DEFAULT '0',
		actual_total          TEXT NOT NULL DEFAULT '0',
		actual_materials      TEXT NOT NULL DEFAULT '0',
		actual_labour         TEXT NOT NULL DEFAULT '0',
		actual_equipment      TEXT NOT NULL DEFAULT '0',
		actual_expenses       TEXT NOT NULL DEFAULT '0',
		committed             TEXT NOT NULL DEFAULT '0',
		estimated             TEXT NOT NULL DEFAULT '0',
		remaining             TEXT NOT NULL DEFAULT '0',
		start_date            TEXT,
		planned_end_date      TEXT,
		can_start_after       TEXT,
		version               INTEGER NOT NULL DEFAULT 1,
		deleted_at            TEXT,
		created_at            TEXT NOT NULL,
		updated_at            TEXT NOT NULL,
		UNIQUE(project_id, sequence)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_phases_project ON phases(project_id)`,

	`CREATE TABLE IF NOT EXISTS phase_dependencies (
		phase_id       TEXT NOT NULL REFERENCES phases(id) ON DELETE CASCADE,
		depends_on_id  TEXT NOT NULL REFERENCES phases(id) ON DELETE CASCADE,
		PRIMARY KEY (phase_id, depends_on_id),
		CHECK(phase_id != depends_on_id)
	)`,

	`CREATE TABLE IF NOT EXISTS project_sequences (
		project_id TEXT PRIMARY KEY REFERENCES projects(id) ON DELETE CASCADE,
		next_seq   INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS reallocation_requests (
		id                TEXT PRIMARY KEY,
		project_id        TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		reallocation_type TEXT NOT NULL
		                  CHECK(reallocation_type IN ('PHASE_TO_PHASE','PROJECT_TO_PHASE','PHASE_TO_PROJECT')),
		from_phase_id     TEXT REFERENCES phases(id),
		to_phase_id       TEXT REFERENCES phases(id),
		amount            TEXT NOT NULL,
		reason            TEXT NOT NULL DEFAULT '',
		requested_by      TEXT NOT NULL DEFAULT '',
		status            TEXT NOT NULL DEFAULT 'PENDING'
		                  CHECK(status IN ('PENDING','EXECUTED','REJECTED')),
		approved_by       TEXT,
		approval_notes    TEXT,
		approved_at       TEXT,
		executed_at       TEXT,
		rejected_by       TEXT,
		rejection_reason  TEXT,
		rejected_at       TEXT,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_reallocations_project_status ON reallocation_requests(project_id, status)`,

	`CREATE TABLE IF NOT EXISTS spend_entries (
		id          TEXT PRIMARY KEY,
		phase_id    TEXT NOT NULL REFERENCES phases(id) ON DELETE CASCADE,
		category    TEXT NOT NULL
		            CHECK(category IN ('materials','expenses','equipment','labour')),
		description TEXT NOT NULL DEFAULT '',
		quantity    TEXT NOT NULL DEFAULT '1',
		unit_cost   TEXT NOT NULL DEFAULT '0',
		amount      TEXT NOT NULL DEFAULT '0',
		status      TEXT NOT NULL DEFAULT 'pending'
		            CHECK(status IN ('pending','committed','approved','rejected')),
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_spend_phase_category ON spend_entries(phase_id, category, status)`,

	`CREATE TABLE IF NOT EXISTS capital_entries (
		id         TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		kind       TEXT NOT NULL CHECK(kind IN ('investment','usage')),
		amount     TEXT NOT NULL,
		note       TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_capital_project ON capital_entries(project_id)`,

	`CREATE TABLE IF NOT EXISTS audit_log (
		id          TEXT PRIMARY KEY,
		entity_type TEXT NOT NULL,
		entity_id   TEXT NOT NULL,
		action      TEXT NOT NULL,
		actor       TEXT NOT NULL DEFAULT '',
		old_status  TEXT NOT NULL DEFAULT '',
		new_status  TEXT NOT NULL DEFAULT '',
		amount      TEXT NOT NULL DEFAULT '0',
		details     TEXT NOT NULL DEFAULT '{}',
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_log(entity_type, entity_id)`,

	`CREATE TABLE IF NOT EXISTS outbox_events (
		id           TEXT PRIMARY KEY,
		event_type   TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload      TEXT NOT NULL DEFAULT '{}',
		status       TEXT NOT NULL DEFAULT 'PENDING'
		             CHECK(status IN ('PENDING','PROCESSING','PUBLISHED','FAILED','INVALID')),
		attempts     INTEGER NOT NULL DEFAULT 0,
		last_error   TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL,
		published_at TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox_events(status, created_at)`,
}

func migrateBackfillProjectSequences(db *sql.DB) error {
	ctx := context.Background()

	// Populate (or raise) next_seq for every known project using the current
	// max assigned phase sequence.
	query := `INSERT INTO project_sequences (project_id, next_seq)
		SELECT p.id, COALESCE(MAX(ph.sequence), 0) + 1
		FROM projects p
		LEFT JOIN phases ph ON ph.project_id = p.id
		GROUP BY p.id
		ON CONFLICT(project_id) DO UPDATE
		SET next_seq = MAX(project_sequences.next_seq, excluded.next_seq)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("upserting project sequence rows: %w", err)
	}

	return nil
}
