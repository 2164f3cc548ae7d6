package gong

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/runnerr0/commsift/internal/config"
	"github.com/runnerr0/commsift/internal/filter"
	"github.com/runnerr0/commsift/internal/model"
)

// activityFetcher is the transport the extractor needs. *Client satisfies
// it; tests substitute canned responses.
type activityFetcher interface {
	FetchDayActivities(ctx context.Context, params map[string]string) ([]byte, error)
}

// Result is one account's extracted timeline after noise filtering.
type Result struct {
	AccountID string
	Calls     []model.Call
	Emails    []model.Email
	Stats     filter.Stats
}

// TimelineExtractor pulls an account's timeline chunk by chunk, converts
// the raw activities at the boundary, and runs the filter engine over the
// gathered emails exactly once per account.
type TimelineExtractor struct {
	fetcher activityFetcher
	engine  *filter.Engine
	cfg     config.FilterConfig
	log     *zap.Logger
}

// NewTimelineExtractor wires an extractor from a fetcher and the filter
// configuration. A nil logger is replaced with a no-op one.
func NewTimelineExtractor(fetcher activityFetcher, cfg config.FilterConfig, log *zap.Logger) *TimelineExtractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &TimelineExtractor{
		fetcher: fetcher,
		engine:  filter.NewEngine(cfg, log),
		cfg:     cfg,
		log:     log,
	}
}

// Extract fetches every chunk of the range concurrently, aggregates the
// parsed records, filters the emails, and drops the records still flagged
// automated. A chunk that fails contributes zero records; an auth failure
// on any chunk aborts the whole extraction.
func (x *TimelineExtractor) Extract(ctx context.Context, accountID string, rng model.RetrievalRange) (*Result, error) {
	chunks := rng.Chunks()

	type chunkResult struct {
		calls  []model.Call
		emails []model.Email
		err    error
	}

	results := make([]chunkResult, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk model.RetrievalRange) {
			defer wg.Done()
			calls, emails, err := x.fetchChunk(ctx, accountID, chunk)
			results[i] = chunkResult{calls: calls, emails: emails, err: err}
		}(i, chunk)
	}
	wg.Wait()

	var calls []model.Call
	var emails []model.Email
	for i, res := range results {
		if res.err != nil {
			if errors.Is(res.err, ErrUnauthorized) {
				return nil, res.err
			}
			x.log.Warn("chunk fetch failed, skipping",
				zap.String("account_id", accountID),
				zap.String("from", chunks[i].Start.Format("2006-01-02")),
				zap.String("to", chunks[i].End.Format("2006-01-02")),
				zap.Error(res.err),
			)
			continue
		}
		calls = append(calls, res.calls...)
		emails = append(emails, res.emails...)
	}

	// Sorting before filtering keeps grouping anchors deterministic
	// regardless of chunk completion order.
	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].ScheduledStart.Before(calls[j].ScheduledStart)
	})
	sort.SliceStable(emails, func(i, j int) bool {
		return emails[i].SentAt.Before(emails[j].SentAt)
	})

	var stats filter.Stats
	kept := x.engine.Filter(emails, &stats)
	kept = filter.DropAutomated(kept)

	x.log.Info("timeline extracted",
		zap.String("account_id", accountID),
		zap.Int("calls", len(calls)),
		zap.Int("emails", len(kept)),
		zap.Int("emails_filtered", stats.TotalFiltered),
	)

	return &Result{
		AccountID: accountID,
		Calls:     calls,
		Emails:    kept,
		Stats:     stats,
	}, nil
}

func (x *TimelineExtractor) fetchChunk(ctx context.Context, accountID string, chunk model.RetrievalRange) ([]model.Call, []model.Email, error) {
	body, err := x.fetcher.FetchDayActivities(ctx, chunk.APIParams(accountID))
	if err != nil {
		return nil, nil, err
	}
	return parseDayActivities(body, accountID, x.cfg.InternalDomain)
}
