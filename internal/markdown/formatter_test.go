package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/commsift/internal/model"
)

func newTestFormatter(t *testing.T, batchSize int) *Formatter {
	t.Helper()
	f := NewFormatter(t.TempDir(), batchSize, nil)
	f.now = func() time.Time {
		return time.Date(2025, 4, 15, 10, 30, 0, 0, time.UTC)
	}
	return f
}

func sampleEmail() model.Email {
	return model.Email{
		ID:        "email-1",
		AccountID: "acct-1",
		Subject:   "Renewal terms",
		Snippet:   "updated draft attached for review",
		Direction: model.DirectionInbound,
		SentAt:    time.Date(2025, 3, 10, 9, 15, 0, 0, time.UTC),
		Sender: model.Recipient{
			Email:   "alice@customer.com",
			Name:    "Alice Chen",
			Title:   "VP Engineering",
			Company: "Customer Inc",
		},
		Recipients: []model.Recipient{
			{Email: "jane@postman.com", Name: "Jane Doe", IsInternal: true},
		},
	}
}

func TestFormatEmailSections(t *testing.T) {
	f := newTestFormatter(t, 20)
	out := f.FormatEmail(sampleEmail())

	assert.Contains(t, out, "## Renewal terms")
	assert.Contains(t, out, "**From:** Alice Chen (alice@customer.com) - VP Engineering @ Customer Inc")
	assert.Contains(t, out, "**Date:** 2025-03-10T09:15:00")
	assert.Contains(t, out, "**Direction:** inbound")
	assert.Contains(t, out, "**Email ID:** `email-1`")
	assert.Contains(t, out, "**To:** Jane Doe (jane@postman.com)")
	assert.Contains(t, out, "*[Preview only - full content not available]*")
	assert.Contains(t, out, "updated draft attached for review")
	assert.NotContains(t, out, "**Type:**")
}

func TestFormatEmailDegradedFields(t *testing.T) {
	f := newTestFormatter(t, 20)

	email := model.Email{
		ID:     "email-2",
		Sender: model.Recipient{Email: "unknown@example.com"},
	}
	out := f.FormatEmail(email)

	assert.Contains(t, out, "## No Subject")
	assert.Contains(t, out, "**From:** Unknown Sender (unknown@example.com)")
	assert.Contains(t, out, "**Date:** Unknown")
	assert.Contains(t, out, "*No content available*")
}

func TestFormatEmailAnnotatesAutomation(t *testing.T) {
	f := newTestFormatter(t, 20)

	e := sampleEmail()
	e.IsAutomated = true
	assert.Contains(t, f.FormatEmail(e), "**Type:** Automated")

	e.IsTemplate = true
	assert.Contains(t, f.FormatEmail(e), "**Type:** Template/Automated")
}

func TestFormatEmailBatchHeaderAndOrder(t *testing.T) {
	f := newTestFormatter(t, 20)

	older := sampleEmail()
	newer := sampleEmail()
	newer.ID = "email-2"
	newer.Subject = "Security questionnaire"
	newer.SentAt = time.Date(2025, 3, 20, 14, 0, 0, 0, time.UTC)

	out := f.FormatEmailBatch([]model.Email{older, newer}, 1, "Customer Inc")

	assert.Contains(t, out, "# Customer Inc - Emails Batch 1")
	assert.Contains(t, out, "**Date Range:** 03/10 - 03/20/2025")
	assert.Contains(t, out, "**Total Emails:** 2")
	assert.Contains(t, out, "**Generated:** April 15, 2025 at 10:30 AM")

	// Newest first inside the document.
	assert.Less(t,
		strings.Index(out, "Security questionnaire"),
		strings.Index(out, "Renewal terms"),
	)
	assert.Contains(t, out, "### Email 1/2")
	assert.Contains(t, out, "### Email 2/2")
}

func TestFormatEmailBatchUnknownDates(t *testing.T) {
	f := newTestFormatter(t, 20)

	e := sampleEmail()
	e.SentAt = time.Time{}

	out := f.FormatEmailBatch([]model.Email{e}, 1, "Customer Inc")
	assert.Contains(t, out, "**Date Range:** Unknown Date Range")
}

func TestSaveEmailsBatches(t *testing.T) {
	f := newTestFormatter(t, 2)

	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	var emails []model.Email
	for i := 0; i < 5; i++ {
		e := sampleEmail()
		e.ID = fmt.Sprintf("email-%d", i)
		e.Subject = fmt.Sprintf("message %d", i)
		e.SentAt = base.AddDate(0, 0, i)
		emails = append(emails, e)
	}

	paths, err := f.SaveEmails(emails, "Customer Inc")
	require.NoError(t, err)
	require.Len(t, paths, 3, "5 emails at 2 per batch")

	first, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(first), "message 0")
	assert.Contains(t, string(first), "message 1")

	assert.Equal(t, "customer-inc-emls-03-01-03-02.md", filepath.Base(paths[0]))
}

func TestSaveEmailsEmptyInput(t *testing.T) {
	f := newTestFormatter(t, 20)

	paths, err := f.SaveEmails(nil, "Customer Inc")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestFormatCallSections(t *testing.T) {
	f := newTestFormatter(t, 20)

	call := model.Call{
		ID:              "call-1",
		Title:           "Quarterly sync",
		CustomerName:    "Customer Inc",
		Direction:       model.DirectionOutbound,
		DurationSeconds: 1800,
		ScheduledStart:  time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC),
		Participants: []model.Participant{
			{Name: "Alice Chen", Title: "VP Engineering", Company: "Customer Inc", Email: "alice@customer.com"},
			{Name: "bob", Email: "bob@customer.com"},
		},
	}

	out := f.FormatCall(call)
	assert.Contains(t, out, "# Quarterly sync")
	assert.Contains(t, out, "**Customer:** Customer Inc")
	assert.Contains(t, out, "**Duration:** 30m0s")
	assert.Contains(t, out, "- **Alice Chen** - VP Engineering (Customer Inc) - alice@customer.com")
	assert.Contains(t, out, "- **bob** - bob@customer.com")
	assert.Contains(t, out, "*Generated on 2025-04-15 10:30:00*")
}

func TestFormatCallNoAttendees(t *testing.T) {
	f := newTestFormatter(t, 20)
	out := f.FormatCall(model.Call{ID: "c", Title: "t"})

	assert.Contains(t, out, "**Customer:** Unknown Customer")
	assert.Contains(t, out, "No attendee information available.")
	assert.Contains(t, out, "**Duration:** Unknown")
}

func TestSaveCallFilename(t *testing.T) {
	f := newTestFormatter(t, 20)

	call := model.Call{
		ID:             "1234567890abcdef",
		Title:          "Quarterly sync",
		GeneratedTitle: "Renewal & Expansion Review",
		ScheduledStart: time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC),
	}

	path, err := f.SaveCall(call)
	require.NoError(t, err)
	assert.Equal(t, "renewal-expansion-review-2025-03-10t150000-12345678.md", filepath.Base(path))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "unnamed"},
		{"Customer Inc", "customer-inc"},
		{"Acme (EMEA) / Q3 review!", "acme-emea-q3-review"},
		{"a..b__c", "a-b-c"},
		{"---", "unnamed"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), "input %q", tt.in)
	}
}
