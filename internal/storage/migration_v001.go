package storage

import "database/sql"

// migrateV001 creates the initial ledger schema: runs, the emails and
// calls kept by each run, and their indexes. Every statement uses
// IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id                     TEXT PRIMARY KEY,
			account_id             TEXT NOT NULL,
			range_start            DATETIME NOT NULL,
			range_end              DATETIME NOT NULL,
			call_count             INTEGER NOT NULL DEFAULT 0,
			email_count            INTEGER NOT NULL DEFAULT 0,
			similarity_filtered    INTEGER NOT NULL DEFAULT 0,
			template_mass_filtered INTEGER NOT NULL DEFAULT 0,
			total_filtered         INTEGER NOT NULL DEFAULT 0,
			created_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS emails (
			run_id       TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			id           TEXT NOT NULL,
			account_id   TEXT NOT NULL,
			subject      TEXT NOT NULL DEFAULT '',
			snippet      TEXT NOT NULL DEFAULT '',
			sender_email TEXT NOT NULL,
			sender_name  TEXT NOT NULL DEFAULT '',
			direction    TEXT NOT NULL DEFAULT 'unknown',
			sent_at      DATETIME,
			is_automated BOOLEAN NOT NULL DEFAULT 0,
			is_template  BOOLEAN NOT NULL DEFAULT 0,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (run_id, id)
		)`,

		`CREATE TABLE IF NOT EXISTS calls (
			run_id           TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			id               TEXT NOT NULL,
			account_id       TEXT NOT NULL,
			title            TEXT NOT NULL,
			generated_title  TEXT NOT NULL DEFAULT '',
			customer_name    TEXT NOT NULL DEFAULT '',
			direction        TEXT NOT NULL DEFAULT 'unknown',
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			scheduled_start  DATETIME,
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (run_id, id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_runs_account     ON runs(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created     ON runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_emails_sender    ON emails(sender_email)`,
		`CREATE INDEX IF NOT EXISTS idx_emails_sent_at   ON emails(sent_at)`,
		`CREATE INDEX IF NOT EXISTS idx_emails_account   ON emails(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_calls_account    ON calls(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_calls_scheduled  ON calls(scheduled_start)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
