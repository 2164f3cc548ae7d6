package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/runnerr0/commsift/internal/model"
)

const maxFilenameBase = 50

// Formatter renders extracted calls and emails as markdown files for
// human review. Emails are written in batches; each call gets its own
// file.
type Formatter struct {
	outputDir string
	batchSize int
	log       *zap.Logger

	// now is injectable so tests get stable generated-at lines.
	now func() time.Time
}

// NewFormatter builds a formatter writing under outputDir with the given
// emails-per-file batch size. A batch size below 1 falls back to 20.
func NewFormatter(outputDir string, batchSize int, log *zap.Logger) *Formatter {
	if batchSize < 1 {
		batchSize = 20
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Formatter{
		outputDir: outputDir,
		batchSize: batchSize,
		log:       log,
		now:       time.Now,
	}
}

// FormatEmail renders one email as a markdown section.
func (f *Formatter) FormatEmail(email model.Email) string {
	subject := email.Subject
	if subject == "" {
		subject = "No Subject"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", subject)
	fmt.Fprintf(&b, "**From:** %s\n", senderInfo(email.Sender))
	fmt.Fprintf(&b, "**Date:** %s\n", formatDate(email.SentAt))
	fmt.Fprintf(&b, "**Direction:** %s\n", email.Direction)
	fmt.Fprintf(&b, "**Email ID:** `%s`", email.ID)

	if len(email.Recipients) > 0 {
		names := make([]string, 0, len(email.Recipients))
		for _, r := range email.Recipients {
			names = append(names, recipientInfo(r))
		}
		fmt.Fprintf(&b, "\n**To:** %s", strings.Join(names, ", "))
	}

	if email.IsAutomated || email.IsTemplate {
		b.WriteString("\n**Type:** ")
		if email.IsTemplate {
			b.WriteString("Template/Automated")
		} else {
			b.WriteString("Automated")
		}
	}

	b.WriteString("\n\n### Content\n\n")
	if strings.TrimSpace(email.Snippet) != "" {
		fmt.Fprintf(&b, "*[Preview only - full content not available]*\n\n%s", email.Snippet)
	} else {
		b.WriteString("*No content available*")
	}
	b.WriteString("\n\n---\n")

	return b.String()
}

// FormatEmailBatch renders a batch of emails as one document, newest
// first, with a header naming the customer and the covered date range.
func (f *Formatter) FormatEmailBatch(emails []model.Email, batchNum int, customerName string) string {
	if len(emails) == 0 {
		return "# No Emails\n\nNo emails found in this batch.\n"
	}

	sorted := make([]model.Email, len(emails))
	copy(sorted, emails)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SentAt.After(sorted[j].SentAt)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "# %s - Emails Batch %d\n\n", customerName, batchNum)
	fmt.Fprintf(&b, "**Date Range:** %s  \n", batchDateRange(sorted))
	fmt.Fprintf(&b, "**Total Emails:** %d  \n", len(sorted))
	fmt.Fprintf(&b, "**Generated:** %s  \n", f.now().Format("January 2, 2006 at 3:04 PM"))
	b.WriteString("**Noise filtering applied** - Templates, duplicates, and automation removed\n\n---\n\n")

	for i, email := range sorted {
		fmt.Fprintf(&b, "### Email %d/%d\n\n", i+1, len(sorted))
		b.WriteString(f.FormatEmail(email))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n\n---\n*Batch %d of emails for %s - Generated by commsift*\n", batchNum, customerName)
	return b.String()
}

// SaveEmails writes the emails as batch files under the output directory
// and returns the paths written. Emails are sorted oldest first so batch
// boundaries are stable across runs.
func (f *Formatter) SaveEmails(emails []model.Email, customerName string) ([]string, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(f.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	sorted := make([]model.Email, len(emails))
	copy(sorted, emails)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SentAt.Before(sorted[j].SentAt)
	})

	customer := sanitizeFilename(customerName)
	var saved []string

	for start, batchNum := 0, 1; start < len(sorted); start, batchNum = start+f.batchSize, batchNum+1 {
		end := start + f.batchSize
		if end > len(sorted) {
			end = len(sorted)
		}
		batch := sorted[start:end]

		from, to := filenameDateRange(batch)
		name := fmt.Sprintf("%s-emls-%s-%s.md", customer, from, to)
		path := filepath.Join(f.outputDir, name)
		if _, err := os.Stat(path); err == nil {
			name = fmt.Sprintf("%s-emls-%s-%s-batch%d.md", customer, from, to, batchNum)
			path = filepath.Join(f.outputDir, name)
		}

		content := f.FormatEmailBatch(batch, batchNum, customerName)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return saved, fmt.Errorf("writing email batch %d: %w", batchNum, err)
		}
		saved = append(saved, path)

		f.log.Info("saved email batch",
			zap.Int("batch", batchNum),
			zap.Int("emails", len(batch)),
			zap.String("path", path),
		)
	}

	return saved, nil
}

// FormatCall renders one call as a markdown document.
func (f *Formatter) FormatCall(call model.Call) string {
	customer := call.CustomerName
	if customer == "" {
		customer = "Unknown Customer"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", call.Title)
	fmt.Fprintf(&b, "**Customer:** %s\n", customer)
	fmt.Fprintf(&b, "**Date:** %s\n", formatDate(call.ScheduledStart))
	fmt.Fprintf(&b, "**Direction:** %s\n", call.Direction)
	fmt.Fprintf(&b, "**Duration:** %s\n", formatDuration(call.DurationSeconds))
	fmt.Fprintf(&b, "**Call ID:** `%s`\n", call.ID)

	b.WriteString("\n## Attendees\n\n")
	if len(call.Participants) == 0 {
		b.WriteString("No attendee information available.\n")
	} else {
		for _, p := range call.Participants {
			fmt.Fprintf(&b, "- **%s**", p.Name)
			if p.Title != "" {
				fmt.Fprintf(&b, " - %s", p.Title)
			}
			if p.Company != "" {
				fmt.Fprintf(&b, " (%s)", p.Company)
			}
			if p.Email != "" {
				fmt.Fprintf(&b, " - %s", p.Email)
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\n---\n*Generated on %s*\n", f.now().Format("2006-01-02 15:04:05"))
	return b.String()
}

// SaveCall writes one call file and returns its path. The filename base
// prefers the generated title, then the customer name, then the title.
func (f *Formatter) SaveCall(call model.Call) (string, error) {
	if err := os.MkdirAll(f.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	base := sanitizeFilename(firstNonEmpty(call.GeneratedTitle, call.CustomerName, call.Title))

	idSuffix := call.ID
	if len(idSuffix) > 8 {
		idSuffix = idSuffix[:8]
	}

	name := fmt.Sprintf("%s-%s-%s.md", base, call.ScheduledStart.Format("2006-01-02t150405"), idSuffix)
	path := filepath.Join(f.outputDir, name)

	if err := os.WriteFile(path, []byte(f.FormatCall(call)), 0o644); err != nil {
		return "", fmt.Errorf("writing call %s: %w", call.ID, err)
	}

	f.log.Info("saved call markdown", zap.String("call_id", call.ID), zap.String("path", path))
	return path, nil
}

// SaveCalls writes every call, continuing past individual failures.
func (f *Formatter) SaveCalls(calls []model.Call) ([]string, error) {
	var saved []string
	for _, call := range calls {
		path, err := f.SaveCall(call)
		if err != nil {
			f.log.Error("failed to save call", zap.String("call_id", call.ID), zap.Error(err))
			continue
		}
		saved = append(saved, path)
	}
	return saved, nil
}

func senderInfo(s model.Recipient) string {
	name := s.Name
	if name == "" {
		name = "Unknown Sender"
	}
	info := name
	if s.Email != "" {
		info += fmt.Sprintf(" (%s)", s.Email)
	}
	if s.Title != "" {
		info += " - " + s.Title
	}
	if s.Company != "" {
		info += " @ " + s.Company
	}
	return info
}

func recipientInfo(r model.Recipient) string {
	name := r.Name
	if name == "" {
		name = localPart(r.Email)
	}
	if r.Email != "" {
		return fmt.Sprintf("%s (%s)", name, r.Email)
	}
	return name
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return t.Format("2006-01-02T15:04:05")
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "Unknown"
	}
	return (time.Duration(seconds) * time.Second).String()
}

// batchDateRange summarizes the covered send times, skipping records
// whose time is unknown.
func batchDateRange(emails []model.Email) string {
	oldest, newest, ok := dateBounds(emails)
	if !ok {
		return "Unknown Date Range"
	}
	return fmt.Sprintf("%s - %s", oldest.Format("01/02"), newest.Format("01/02/2006"))
}

func filenameDateRange(emails []model.Email) (string, string) {
	oldest, newest, ok := dateBounds(emails)
	if !ok {
		return "unknown", "unknown"
	}
	return oldest.Format("01-02"), newest.Format("01-02")
}

func dateBounds(emails []model.Email) (time.Time, time.Time, bool) {
	var oldest, newest time.Time
	found := false
	for _, e := range emails {
		if e.SentAt.IsZero() {
			continue
		}
		if !found || e.SentAt.Before(oldest) {
			oldest = e.SentAt
		}
		if !found || e.SentAt.After(newest) {
			newest = e.SentAt
		}
		found = true
	}
	return oldest, newest, found
}

var (
	filenameDisallowed = regexp.MustCompile(`[^a-zA-Z0-9\s\-._()]`)
	filenameSeparators = regexp.MustCompile(`[\s()._]+`)
	filenameHyphenRuns = regexp.MustCompile(`-+`)
)

// sanitizeFilename reduces arbitrary text to a safe lowercase hyphenated
// filename base, capped in length.
func sanitizeFilename(name string) string {
	s := filenameDisallowed.ReplaceAllString(name, "")
	s = filenameSeparators.ReplaceAllString(s, "-")
	s = filenameHyphenRuns.ReplaceAllString(s, "-")
	s = strings.ToLower(strings.Trim(s, "-."))
	if len(s) > maxFilenameBase {
		s = strings.TrimRight(s[:maxFilenameBase], "-.")
	}
	if s == "" {
		return "unnamed"
	}
	return s
}

func localPart(addr string) string {
	if i := strings.IndexByte(addr, '@'); i > 0 {
		return addr[:i]
	}
	return addr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
