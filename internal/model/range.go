package model

import "time"

// RetrievalRange is a date window for timeline retrieval, split into
// chunks so individual API requests stay within what the vendor endpoint
// tolerates.
type RetrievalRange struct {
	Start     time.Time
	End       time.Time
	ChunkDays int
}

// NewRetrievalRange builds a range with the given chunk size in days.
// A chunk size below 1 falls back to 30.
func NewRetrievalRange(start, end time.Time, chunkDays int) RetrievalRange {
	if chunkDays < 1 {
		chunkDays = 30
	}
	return RetrievalRange{Start: truncateDay(start), End: truncateDay(end), ChunkDays: chunkDays}
}

// LastDays builds a range covering the last n days ending now.
func LastDays(n int) RetrievalRange {
	now := time.Now()
	return NewRetrievalRange(now.AddDate(0, 0, -n), now, 30)
}

// Chunks splits the range into consecutive non-overlapping windows of at
// most ChunkDays days each. Both bounds of every chunk are inclusive.
func (r RetrievalRange) Chunks() []RetrievalRange {
	var chunks []RetrievalRange
	cur := r.Start
	for !cur.After(r.End) {
		chunkEnd := cur.AddDate(0, 0, r.ChunkDays)
		if chunkEnd.After(r.End) {
			chunkEnd = r.End
		}
		chunks = append(chunks, RetrievalRange{Start: cur, End: chunkEnd, ChunkDays: r.ChunkDays})
		if !chunkEnd.Before(r.End) {
			break
		}
		cur = chunkEnd.AddDate(0, 0, 1)
	}
	return chunks
}

// TotalDays returns the inclusive day count covered by the range.
func (r RetrievalRange) TotalDays() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// APIParams returns the query parameters for the day-activities endpoint.
func (r RetrievalRange) APIParams(accountID string) map[string]string {
	return map[string]string{
		"id":       accountID,
		"type":     "ACCOUNT",
		"day-from": r.Start.Format("2006-01-02"),
		"day-to":   r.End.Format("2006-01-02"),
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
