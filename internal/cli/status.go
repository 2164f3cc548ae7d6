package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/commsift/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version       string                `json:"version"`
	DatabasePath  string                `json:"database_path"`
	DatabaseSize  int64                 `json:"database_size_bytes"`
	TotalRuns     int64                 `json:"total_runs"`
	TotalEmails   int64                 `json:"total_emails"`
	TotalCalls    int64                 `json:"total_calls"`
	TotalFiltered int64                 `json:"total_filtered"`
	OldestRun     *time.Time            `json:"oldest_run,omitempty"`
	NewestRun     *time.Time            `json:"newest_run,omitempty"`
	TopSenders    []storage.SenderCount `json:"top_senders"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	store, db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return err
	}

	return c.executeWithStore(store, db, dbPath)
}

// executeWithStore runs the status report against a provided store (for
// testing).
func (c *StatusCommand) executeWithStore(store storage.Store, db *sql.DB, dbPath string) error {
	ctx := context.Background()

	stats, err := store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	dbSize := getDatabaseSize(db, dbPath)

	if c.globals != nil && c.globals.JSON {
		out := statusJSON{
			Version:       c.version,
			DatabasePath:  dbPath,
			DatabaseSize:  dbSize,
			TotalRuns:     stats.TotalRuns,
			TotalEmails:   stats.TotalEmails,
			TotalCalls:    stats.TotalCalls,
			TotalFiltered: stats.TotalFiltered,
			TopSenders:    stats.TopSenders,
		}
		if !stats.OldestRun.IsZero() {
			out.OldestRun = &stats.OldestRun
		}
		if !stats.NewestRun.IsZero() {
			out.NewestRun = &stats.NewestRun
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("commsift %s\n\n", c.version)
	fmt.Printf("Database: %s (%s)\n", dbPath, formatBytes(dbSize))
	fmt.Printf("Runs:     %s\n", formatNumber(stats.TotalRuns))
	fmt.Printf("Emails:   %s\n", formatNumber(stats.TotalEmails))
	fmt.Printf("Calls:    %s\n", formatNumber(stats.TotalCalls))
	fmt.Printf("Filtered: %s\n", formatNumber(stats.TotalFiltered))

	if !stats.OldestRun.IsZero() {
		fmt.Printf("Oldest run: %s\n", stats.OldestRun.Format("2006-01-02 15:04:05"))
	}
	if !stats.NewestRun.IsZero() {
		fmt.Printf("Newest run: %s\n", stats.NewestRun.Format("2006-01-02 15:04:05"))
	}

	if len(stats.TopSenders) > 0 {
		fmt.Printf("\nTop senders:\n")
		for _, s := range stats.TopSenders {
			fmt.Printf("  %s (%d)\n", s.Sender, s.Count)
		}
	}

	return nil
}
