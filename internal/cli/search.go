package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/commsift/internal/model"
	"github.com/runnerr0/commsift/internal/storage"
)

// searchResultJSON is one result row in the search command's JSON output.
type searchResultJSON struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Subject   string `json:"subject"`
	Snippet   string `json:"snippet,omitempty"`
	Sender    string `json:"sender"`
	Direction string `json:"direction"`
	SentAt    string `json:"sent_at,omitempty"`
}

// Execute implements the go-flags Commander interface for SearchCommand.
func (c *SearchCommand) Execute(args []string) error {
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

	return c.executeWithStore(store)
}

// executeWithStore runs the search against a provided store (for testing).
func (c *SearchCommand) executeWithStore(store storage.Store) error {
	q, err := c.buildQuery()
	if err != nil {
		return err
	}

	emails, err := store.SearchEmails(context.Background(), q)
	if err != nil {
		return fmt.Errorf("search emails: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return c.printJSON(emails)
	}
	return c.printHuman(emails)
}

// buildQuery translates the command flags into a storage query.
func (c *SearchCommand) buildQuery() (storage.SearchQuery, error) {
	q := storage.SearchQuery{
		Query:     c.Query,
		Sender:    c.Sender,
		AccountID: c.Account,
		Limit:     c.Limit,
		Offset:    c.Offset,
	}

	now := time.Now()
	if c.Since != "" {
		d, err := parseDuration(c.Since)
		if err != nil {
			return q, fmt.Errorf("invalid --since value %q: %w", c.Since, err)
		}
		q.Since = now.Add(-d)
	}
	if c.Until != "" {
		d, err := parseDuration(c.Until)
		if err != nil {
			return q, fmt.Errorf("invalid --until value %q: %w", c.Until, err)
		}
		q.Until = now.Add(-d)
	}

	return q, nil
}

func (c *SearchCommand) printHuman(emails []model.Email) error {
	if len(emails) == 0 {
		fmt.Println("No emails found.")
		return nil
	}

	fmt.Printf("Found %d email(s):\n\n", len(emails))
	for i, e := range emails {
		fmt.Printf("%d. %s\n", i+1, e.Subject)
		fmt.Printf("   From: %s", e.Sender.Email)
		if !e.SentAt.IsZero() {
			fmt.Printf("  (%s)", e.SentAt.Format("2006-01-02 15:04"))
		}
		fmt.Println()
		if e.Snippet != "" {
			fmt.Printf("   %s\n", e.Snippet)
		}
		fmt.Println()
	}
	return nil
}

func (c *SearchCommand) printJSON(emails []model.Email) error {
	results := make([]searchResultJSON, 0, len(emails))
	for _, e := range emails {
		r := searchResultJSON{
			ID:        e.ID,
			AccountID: e.AccountID,
			Subject:   e.Subject,
			Snippet:   e.Snippet,
			Sender:    e.Sender.Email,
			Direction: string(e.Direction),
		}
		if !e.SentAt.IsZero() {
			r.SentAt = e.SentAt.Format(time.RFC3339)
		}
		results = append(results, r)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
