package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/runnerr0/commsift/internal/config"
	"github.com/runnerr0/commsift/internal/filter"
	"github.com/runnerr0/commsift/internal/gong"
	"github.com/runnerr0/commsift/internal/model"
)

// fakeExtractor returns a canned result without touching the network.
type fakeExtractor struct {
	result *gong.Result
	err    error

	gotAccount string
	gotRange   model.RetrievalRange
}

func (f *fakeExtractor) Extract(ctx context.Context, accountID string, rng model.RetrievalRange) (*gong.Result, error) {
	f.gotAccount = accountID
	f.gotRange = rng
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func sampleResult() *gong.Result {
	return &gong.Result{
		AccountID: "acc-42",
		Calls: []model.Call{
			{
				ID:             "call-1",
				AccountID:      "acc-42",
				Title:          "Renewal Review",
				CustomerName:   "Acme Corp",
				Direction:      model.DirectionOutbound,
				ScheduledStart: time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC),
			},
		},
		Emails: []model.Email{
			{
				ID:        "em-1",
				AccountID: "acc-42",
				Subject:   "Contract renewal paperwork",
				Snippet:   "Attached is the renewal paperwork for your review.",
				Direction: model.DirectionInbound,
				SentAt:    time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC),
				Sender:    model.Recipient{Email: "alice@acme.com", Name: "Alice"},
			},
		},
		Stats: filter.Stats{SimilarityFiltered: 2, TemplateMassFiltered: 1, TotalFiltered: 3},
	}
}

func TestExtractCommandWritesFilesAndPersistsRun(t *testing.T) {
	store, _ := openTestStore(t)
	outDir := t.TempDir()

	fake := &fakeExtractor{result: sampleResult()}
	cmd := &ExtractCommand{
		Account: "acc-42",
		Since:   "90d",
		Out:     outDir,
		globals: &GlobalFlags{},
	}

	var err error
	out := captureOutput(t, func() {
		err = cmd.executeWith(fake, store, config.DefaultConfig(), zap.NewNop())
	})
	require.NoError(t, err)

	assert.Equal(t, "acc-42", fake.gotAccount)
	assert.Contains(t, out, "Extracted acc-42: 1 calls, 1 emails (3 filtered out)")

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var emailFile, callFile bool
	for _, e := range entries {
		if strings.Contains(e.Name(), "-emls-") {
			emailFile = true
			// Customer name comes from the call when --name is absent.
			assert.True(t, strings.HasPrefix(e.Name(), "acme-corp-"), "got %s", e.Name())
		} else {
			callFile = true
		}
	}
	assert.True(t, emailFile, "expected an email batch file")
	assert.True(t, callFile, "expected a call file")

	stats, err := store.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalRuns)
	assert.Equal(t, int64(1), stats.TotalEmails)
	assert.Equal(t, int64(1), stats.TotalCalls)
	assert.Equal(t, int64(3), stats.TotalFiltered)
}

func TestExtractCommandNameOverridesCustomer(t *testing.T) {
	store, _ := openTestStore(t)
	outDir := t.TempDir()

	fake := &fakeExtractor{result: sampleResult()}
	cmd := &ExtractCommand{
		Account: "acc-42",
		Since:   "30d",
		Out:     outDir,
		Name:    "Globex",
		globals: &GlobalFlags{},
	}

	captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(fake, store, config.DefaultConfig(), zap.NewNop()))
	})

	matches, err := filepath.Glob(filepath.Join(outDir, "globex-emls-*.md"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestExtractCommandPropagatesExtractionError(t *testing.T) {
	store, _ := openTestStore(t)

	fake := &fakeExtractor{err: fmt.Errorf("session expired: %w", gong.ErrUnauthorized)}
	cmd := &ExtractCommand{
		Account: "acc-42",
		Since:   "7d",
		Out:     t.TempDir(),
		globals: &GlobalFlags{},
	}

	err := cmd.executeWith(fake, store, config.DefaultConfig(), zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, gong.ErrUnauthorized)
}

func TestExtractCommandRejectsBadSince(t *testing.T) {
	store, _ := openTestStore(t)

	cmd := &ExtractCommand{
		Account: "acc-42",
		Since:   "soon",
		Out:     t.TempDir(),
		globals: &GlobalFlags{},
	}

	err := cmd.executeWith(&fakeExtractor{result: sampleResult()}, store, config.DefaultConfig(), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--since")
}

func TestExtractCommandRejectsInvertedRange(t *testing.T) {
	store, _ := openTestStore(t)

	cmd := &ExtractCommand{
		Account: "acc-42",
		Since:   "7d",
		Until:   "14d",
		Out:     t.TempDir(),
		globals: &GlobalFlags{},
	}

	err := cmd.executeWith(&fakeExtractor{result: sampleResult()}, store, config.DefaultConfig(), zap.NewNop())
	require.Error(t, err)
}

func TestRetrievalRangeSpansSince(t *testing.T) {
	cmd := &ExtractCommand{Since: "30d"}

	rng, err := cmd.retrievalRange(10)
	require.NoError(t, err)

	span := rng.End.Sub(rng.Start)
	assert.InDelta(t, float64(30*24*time.Hour), float64(span), float64(time.Minute))
	assert.Len(t, rng.Chunks(), 3)
}
