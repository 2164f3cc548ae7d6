package storage

import "time"

// Run records one completed extraction: what was requested, what was
// kept, and what the filter removed.
type Run struct {
	ID                   string
	AccountID            string
	RangeStart           time.Time
	RangeEnd             time.Time
	CallCount            int
	EmailCount           int
	SimilarityFiltered   int
	TemplateMassFiltered int
	TotalFiltered        int
	CreatedAt            time.Time
}

// SearchQuery defines filters for searching persisted emails.
type SearchQuery struct {
	Query     string // full-text over subject and snippet
	Sender    string
	AccountID string
	Since     time.Time
	Until     time.Time
	Limit     int
	Offset    int
}

// Stats holds aggregate statistics about the local ledger.
type Stats struct {
	TotalRuns     int64
	TotalEmails   int64
	TotalCalls    int64
	TotalFiltered int64
	OldestRun     time.Time
	NewestRun     time.Time
	TopSenders    []SenderCount
}

// SenderCount pairs a sender address with its persisted email count.
type SenderCount struct {
	Sender string
	Count  int64
}
