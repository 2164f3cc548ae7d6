package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/runnerr0/commsift/internal/config"
	"github.com/runnerr0/commsift/internal/gong"
	"github.com/runnerr0/commsift/internal/markdown"
	"github.com/runnerr0/commsift/internal/model"
	"github.com/runnerr0/commsift/internal/storage"
)

// timelineExtractor abstracts the gong extractor so tests can substitute
// canned results.
type timelineExtractor interface {
	Extract(ctx context.Context, accountID string, rng model.RetrievalRange) (*gong.Result, error)
}

// extractJSON is the JSON output structure for the extract command.
type extractJSON struct {
	RunID              string   `json:"run_id"`
	AccountID          string   `json:"account_id"`
	Calls              int      `json:"calls"`
	Emails             int      `json:"emails"`
	SimilarityFiltered int      `json:"similarity_filtered"`
	TemplateFiltered   int      `json:"template_mass_filtered"`
	TotalFiltered      int      `json:"total_filtered"`
	Files              []string `json:"files"`
}

// Execute implements the go-flags Commander interface for ExtractCommand.
func (c *ExtractCommand) Execute(args []string) error {
	// Session material may live in a local .env; absence is fine.
	_ = godotenv.Load()

	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, c.globals != nil && c.globals.Verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	client, err := gong.NewClient(cfg.API, log)
	if err != nil {
		return err
	}
	extractor := gong.NewTimelineExtractor(client, cfg.Filter, log)

	store, db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return c.executeWith(extractor, store, cfg, log)
}

// executeWith runs the extraction against provided dependencies (for
// testing).
func (c *ExtractCommand) executeWith(extractor timelineExtractor, store storage.Store, cfg *config.Config, log *zap.Logger) error {
	rng, err := c.retrievalRange(cfg.API.ChunkDays)
	if err != nil {
		return err
	}

	ctx := context.Background()
	res, err := extractor.Extract(ctx, c.Account, rng)
	if err != nil {
		return fmt.Errorf("extract timeline: %w", err)
	}

	outDir := c.Out
	if outDir == "" {
		outDir, err = config.ExpandPath(cfg.Output.Dir)
		if err != nil {
			return err
		}
	}

	customer := c.Name
	if customer == "" {
		customer = customerFromCalls(res.Calls)
	}
	if customer == "" {
		customer = c.Account
	}

	formatter := markdown.NewFormatter(outDir, cfg.Output.EmailsPerBatch, log)
	files, err := formatter.SaveEmails(res.Emails, customer)
	if err != nil {
		return fmt.Errorf("write email markdown: %w", err)
	}
	callFiles, err := formatter.SaveCalls(res.Calls)
	if err != nil {
		return fmt.Errorf("write call markdown: %w", err)
	}
	files = append(files, callFiles...)

	run := &storage.Run{
		AccountID:            c.Account,
		RangeStart:           rng.Start,
		RangeEnd:             rng.End,
		CallCount:            len(res.Calls),
		EmailCount:           len(res.Emails),
		SimilarityFiltered:   res.Stats.SimilarityFiltered,
		TemplateMassFiltered: res.Stats.TemplateMassFiltered,
		TotalFiltered:        res.Stats.TotalFiltered,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if err := store.SaveEmails(ctx, run.ID, res.Emails); err != nil {
		return fmt.Errorf("save emails: %w", err)
	}
	if err := store.SaveCalls(ctx, run.ID, res.Calls); err != nil {
		return fmt.Errorf("save calls: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		out := extractJSON{
			RunID:              run.ID,
			AccountID:          c.Account,
			Calls:              len(res.Calls),
			Emails:             len(res.Emails),
			SimilarityFiltered: res.Stats.SimilarityFiltered,
			TemplateFiltered:   res.Stats.TemplateMassFiltered,
			TotalFiltered:      res.Stats.TotalFiltered,
			Files:              files,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Extracted %s: %d calls, %d emails (%d filtered out)\n",
		c.Account, len(res.Calls), len(res.Emails), res.Stats.TotalFiltered)
	for _, f := range files {
		fmt.Printf("  %s\n", f)
	}
	return nil
}

// retrievalRange converts the --since/--until durations into a date
// range split by the configured chunk size.
func (c *ExtractCommand) retrievalRange(chunkDays int) (model.RetrievalRange, error) {
	since, err := parseDuration(c.Since)
	if err != nil {
		return model.RetrievalRange{}, fmt.Errorf("invalid --since value %q: %w", c.Since, err)
	}

	now := time.Now()
	end := now
	if c.Until != "" {
		until, err := parseDuration(c.Until)
		if err != nil {
			return model.RetrievalRange{}, fmt.Errorf("invalid --until value %q: %w", c.Until, err)
		}
		end = now.Add(-until)
	}
	start := now.Add(-since)

	if end.Before(start) {
		return model.RetrievalRange{}, fmt.Errorf("--until cuts off before --since begins")
	}

	return model.NewRetrievalRange(start, end, chunkDays), nil
}

// customerFromCalls picks the first non-empty customer name the vendor
// attached to a call.
func customerFromCalls(calls []model.Call) string {
	for _, c := range calls {
		if c.CustomerName != "" {
			return c.CustomerName
		}
	}
	return ""
}
