package cli

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/runnerr0/commsift/internal/storage"
)

// purgeJSON is the JSON output structure for the purge command.
type purgeJSON struct {
	Purged bool   `json:"purged"`
	Reason string `json:"reason,omitempty"`
}

// setDB injects a database handle for testing.
func (c *PurgeCommand) setDB(db *sql.DB) {
	c.db = db
}

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}

	if !c.Force {
		fmt.Print("This will delete ALL extracted data. Type \"PURGE\" to confirm: ")
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "PURGE" {
			if c.globals != nil && c.globals.JSON {
				return printPurgeJSON(purgeJSON{Purged: false, Reason: "confirmation failed"})
			}
			fmt.Println("Aborted.")
			return nil
		}
	}

	store, db, err := c.openTarget()
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return c.executeWithStore(store)
}

// openTarget opens the injected database if one was set, otherwise the
// configured one.
func (c *PurgeCommand) openTarget() (storage.Store, *sql.DB, error) {
	if c.db != nil {
		store, err := storage.NewSQLiteStore(c.db)
		if err != nil {
			return nil, nil, fmt.Errorf("init store: %w", err)
		}
		return store, c.db, nil
	}

	cfg, err := loadConfig(c.globals)
	if err != nil {
		return nil, nil, err
	}
	return openStore(cfg)
}

// executeWithStore purges all data from a provided store (for testing).
func (c *PurgeCommand) executeWithStore(store storage.Store) error {
	if err := store.PurgeAll(context.Background()); err != nil {
		return fmt.Errorf("purge data: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printPurgeJSON(purgeJSON{Purged: true})
	}
	fmt.Println("All local data purged.")
	return nil
}

func printPurgeJSON(out purgeJSON) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
