package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/runnerr0/commsift/internal/model"
)

// Store defines the local ledger operations backing the status, search,
// and purge commands.
type Store interface {
	SaveRun(ctx context.Context, run *Run) error
	SaveEmails(ctx context.Context, runID string, emails []model.Email) error
	SaveCalls(ctx context.Context, runID string, calls []model.Call) error
	GetRun(ctx context.Context, id string) (*Run, error)
	SearchEmails(ctx context.Context, query SearchQuery) ([]model.Email, error)
	PurgeAll(ctx context.Context) error
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements
	insertRun   *sql.Stmt
	insertEmail *sql.Stmt
	insertCall  *sql.Stmt
	getRun      *sql.Stmt
}

// NewSQLiteStore creates a SQLiteStore from an already-opened and
// migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	if err := s.initFTS(); err != nil {
		return nil, fmt.Errorf("init FTS: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertRun, err = s.db.Prepare(`
		INSERT INTO runs (id, account_id, range_start, range_end, call_count, email_count,
		                  similarity_filtered, template_mass_filtered, total_filtered, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.insertEmail, err = s.db.Prepare(`
		INSERT INTO emails (run_id, id, account_id, subject, snippet, sender_email,
		                    sender_name, direction, sent_at, is_automated, is_template)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.insertCall, err = s.db.Prepare(`
		INSERT INTO calls (run_id, id, account_id, title, generated_title, customer_name,
		                   direction, duration_seconds, scheduled_start)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.getRun, err = s.db.Prepare(`
		SELECT id, account_id, range_start, range_end, call_count, email_count,
		       similarity_filtered, template_mass_filtered, total_filtered, created_at
		FROM runs WHERE id = ?
	`)
	return err
}

// initFTS creates the FTS5 virtual table for email full-text search if it
// doesn't exist.
func (s *SQLiteStore) initFTS() error {
	_, err := s.db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS emails_fts USING fts5(
			run_id UNINDEXED,
			email_id UNINDEXED,
			subject,
			snippet,
			tokenize='unicode61'
		)
	`)
	return err
}

// SaveRun inserts a run record. A missing ID and creation time are
// populated automatically.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	_, err := s.insertRun.ExecContext(ctx,
		run.ID, run.AccountID,
		run.RangeStart.UTC().Format(time.RFC3339),
		run.RangeEnd.UTC().Format(time.RFC3339),
		run.CallCount, run.EmailCount,
		run.SimilarityFiltered, run.TemplateMassFiltered, run.TotalFiltered,
		run.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// SaveEmails persists a run's kept emails in a single transaction,
// indexing subject and snippet for full-text search.
func (s *SQLiteStore) SaveEmails(ctx context.Context, runID string, emails []model.Email) error {
	if len(emails) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, e := range emails {
		_, err := tx.StmtContext(ctx, s.insertEmail).ExecContext(ctx,
			runID, e.ID, e.AccountID, e.Subject, e.Snippet,
			strings.ToLower(e.Sender.Email), e.Sender.Name, string(e.Direction),
			formatNullableTime(e.SentAt), e.IsAutomated, e.IsTemplate,
		)
		if err != nil {
			return fmt.Errorf("insert email %s: %w", e.ID, err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO emails_fts (run_id, email_id, subject, snippet) VALUES (?, ?, ?, ?)",
			runID, e.ID, e.Subject, e.Snippet,
		)
		if err != nil {
			return fmt.Errorf("insert FTS for %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// SaveCalls persists a run's calls in a single transaction.
func (s *SQLiteStore) SaveCalls(ctx context.Context, runID string, calls []model.Call) error {
	if len(calls) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, c := range calls {
		_, err := tx.StmtContext(ctx, s.insertCall).ExecContext(ctx,
			runID, c.ID, c.AccountID, c.Title, c.GeneratedTitle, c.CustomerName,
			string(c.Direction), c.DurationSeconds, formatNullableTime(c.ScheduledStart),
		)
		if err != nil {
			return fmt.Errorf("insert call %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a single run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	var r Run
	var rangeStart, rangeEnd, createdAt string

	err := s.getRun.QueryRowContext(ctx, id).Scan(
		&r.ID, &r.AccountID, &rangeStart, &rangeEnd,
		&r.CallCount, &r.EmailCount,
		&r.SimilarityFiltered, &r.TemplateMassFiltered, &r.TotalFiltered,
		&createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", id)
		}
		return nil, fmt.Errorf("get run: %w", err)
	}

	r.RangeStart, _ = parseTimestamp(rangeStart)
	r.RangeEnd, _ = parseTimestamp(rangeEnd)
	r.CreatedAt, _ = parseTimestamp(createdAt)
	return &r, nil
}

// SearchEmails queries persisted emails with optional filters. A text
// query goes through the FTS index; otherwise plain SQL filters apply.
func (s *SQLiteStore) SearchEmails(ctx context.Context, q SearchQuery) ([]model.Email, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}

	if q.Query != "" {
		return s.searchFTS(ctx, q)
	}
	return s.searchFiltered(ctx, q)
}

func (s *SQLiteStore) searchFTS(ctx context.Context, q SearchQuery) ([]model.Email, error) {
	clauses := []string{"emails_fts MATCH ?"}
	args := []interface{}{ftsQuery(q.Query)}

	baseQuery := `
		SELECT e.id, e.account_id, e.subject, e.snippet, e.sender_email,
		       e.sender_name, e.direction, e.sent_at, e.is_automated, e.is_template
		FROM emails_fts f
		JOIN emails e ON e.run_id = f.run_id AND e.id = f.email_id
	`

	clauses, args = appendEmailFilters(clauses, args, q, "e.")

	fullQuery := baseQuery + " WHERE " + strings.Join(clauses, " AND ") +
		" ORDER BY rank LIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)

	return s.scanEmails(ctx, fullQuery, args...)
}

func (s *SQLiteStore) searchFiltered(ctx context.Context, q SearchQuery) ([]model.Email, error) {
	var clauses []string
	var args []interface{}

	baseQuery := `
		SELECT id, account_id, subject, snippet, sender_email,
		       sender_name, direction, sent_at, is_automated, is_template
		FROM emails
	`

	clauses, args = appendEmailFilters(clauses, args, q, "")

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	fullQuery := baseQuery + where + " ORDER BY sent_at DESC LIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)

	return s.scanEmails(ctx, fullQuery, args...)
}

func appendEmailFilters(clauses []string, args []interface{}, q SearchQuery, prefix string) ([]string, []interface{}) {
	if q.Sender != "" {
		clauses = append(clauses, prefix+"sender_email = ?")
		args = append(args, strings.ToLower(q.Sender))
	}
	if q.AccountID != "" {
		clauses = append(clauses, prefix+"account_id = ?")
		args = append(args, q.AccountID)
	}
	if !q.Since.IsZero() {
		clauses = append(clauses, prefix+"sent_at >= ?")
		args = append(args, q.Since.UTC().Format(time.RFC3339))
	}
	if !q.Until.IsZero() {
		clauses = append(clauses, prefix+"sent_at <= ?")
		args = append(args, q.Until.UTC().Format(time.RFC3339))
	}
	return clauses, args
}

func (s *SQLiteStore) scanEmails(ctx context.Context, query string, args ...interface{}) ([]model.Email, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query emails: %w", err)
	}
	defer rows.Close()

	var emails []model.Email
	for rows.Next() {
		var e model.Email
		var direction string
		var sentAt sql.NullString
		if err := rows.Scan(
			&e.ID, &e.AccountID, &e.Subject, &e.Snippet,
			&e.Sender.Email, &e.Sender.Name, &direction, &sentAt,
			&e.IsAutomated, &e.IsTemplate,
		); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		e.Direction = model.Direction(direction)
		if sentAt.Valid {
			e.SentAt, _ = parseTimestamp(sentAt.String)
		}
		emails = append(emails, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if emails == nil {
		emails = []model.Email{}
	}
	return emails, nil
}

// PurgeAll deletes every run, email, and call.
func (s *SQLiteStore) PurgeAll(ctx context.Context) error {
	stmts := []string{
		"DROP TABLE IF EXISTS emails_fts",
		"DELETE FROM emails",
		"DELETE FROM calls",
		"DELETE FROM runs",
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("purge (%s): %w", stmt, err)
		}
	}
	// Recreate FTS table
	return s.initFTS()
}

// GetStats returns aggregate statistics about the ledger.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&stats.TotalRuns)
	if err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM emails").Scan(&stats.TotalEmails)
	if err != nil {
		return nil, fmt.Errorf("count emails: %w", err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM calls").Scan(&stats.TotalCalls)
	if err != nil {
		return nil, fmt.Errorf("count calls: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(total_filtered), 0) FROM runs",
	).Scan(&stats.TotalFiltered)
	if err != nil {
		return nil, fmt.Errorf("sum filtered: %w", err)
	}

	if stats.TotalRuns > 0 {
		var oldestStr, newestStr string
		err = s.db.QueryRowContext(ctx, "SELECT MIN(created_at), MAX(created_at) FROM runs").Scan(&oldestStr, &newestStr)
		if err != nil {
			return nil, fmt.Errorf("run time range: %w", err)
		}
		stats.OldestRun, _ = parseTimestamp(oldestStr)
		stats.NewestRun, _ = parseTimestamp(newestStr)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT sender_email, COUNT(*) as cnt FROM emails GROUP BY sender_email ORDER BY cnt DESC LIMIT 10",
	)
	if err != nil {
		return nil, fmt.Errorf("top senders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc SenderCount
		if err := rows.Scan(&sc.Sender, &sc.Count); err != nil {
			return nil, err
		}
		stats.TopSenders = append(stats.TopSenders, sc)
	}

	return stats, rows.Err()
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{s.insertRun, s.insertEmail, s.insertCall, s.getRun}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}

// ftsQuery converts a user search string into a valid FTS5 query.
// Each word becomes a quoted prefix token joined with OR.
func ftsQuery(input string) string {
	words := strings.Fields(input)
	if len(words) == 0 {
		return ""
	}
	var parts []string
	for _, w := range words {
		parts = append(parts, `"`+w+`"*`)
	}
	return strings.Join(parts, " OR ")
}

// formatNullableTime renders a time for storage, mapping the zero value
// to NULL so unknown send times stay unknown.
func formatNullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}
