package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/runnerr0/commsift/internal/config"
)

func newTestClassifier() *Classifier {
	return NewClassifier(config.DefaultConfig().Filter)
}

func TestClassifyEmptyContentNeverFlags(t *testing.T) {
	c := newTestClassifier()

	// Empty content short-circuits the whole cascade, even for a
	// denylisted sender.
	v := c.Classify("", "", "sales@postman.com", "Account Development Rep")
	assert.False(t, v.Automated)
	assert.False(t, v.Template)
}

func TestClassifyDenylistOutranksContent(t *testing.T) {
	c := newTestClassifier()

	// Subject and snippet contain no template markers; the address match
	// alone must flag the message.
	v := c.Classify("Your custom architecture review", "detailed findings attached", "sales@postman.com", "")
	assert.True(t, v.Automated)
	assert.True(t, v.Template)

	// Case-insensitive on the address.
	v = c.Classify("Your custom architecture review", "", "Sales@Postman.COM", "")
	assert.True(t, v.Automated)
}

func TestClassifyAccountDevelopmentTitle(t *testing.T) {
	c := newTestClassifier()

	v := c.Classify("notes from today", "", "jane@postman.com", "Senior Account Development Representative")
	assert.True(t, v.Automated)
	assert.True(t, v.Template)
}

func TestClassifyAutomatedSenderMarkers(t *testing.T) {
	c := newTestClassifier()

	for _, addr := range []string{"noreply@vendor.com", "no-reply@vendor.com", "academy@postman.com", "help@postman.com"} {
		v := c.Classify("release notes", "", addr, "")
		assert.True(t, v.Automated, "sender %s", addr)
		assert.True(t, v.Template, "sender %s", addr)
	}
}

func TestClassifyAutoReplySubjects(t *testing.T) {
	c := newTestClassifier()

	for _, subject := range []string{
		"Automatic reply: your message",
		"Out of Office until Monday",
		"OOO this week",
		"On paternity leave through April",
	} {
		v := c.Classify(subject, "", "bob@customer.com", "")
		assert.True(t, v.Automated, "subject %q", subject)
	}
}

func TestClassifyTemplateMarkersFlagBothEqually(t *testing.T) {
	c := newTestClassifier()

	flagged := []struct{ subject, snippet string }{
		{"Following up on our conversation", ""},
		{"", "just circling back on this thread"},
		{"Quick question", "do you have 15 minutes this week?"},
		{"", "per my last email, the contract draft"},
	}
	for _, m := range flagged {
		v := c.Classify(m.subject, m.snippet, "rep@vendor.com", "")
		assert.True(t, v.Automated)
		assert.Equal(t, v.Automated, v.Template, "tier 6 sets both flags to the same value")
	}
}

func TestClassifyCleanMessagePasses(t *testing.T) {
	c := newTestClassifier()

	v := c.Classify("API gateway timeout since yesterday", "we traced it to the upstream pool settings", "alice@customer.com", "Staff Engineer")
	assert.False(t, v.Automated)
	assert.False(t, v.Template)
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := newTestClassifier()

	for i := 0; i < 5; i++ {
		v := c.Classify("Quick question", "worth a chat?", "rep@vendor.com", "AE")
		assert.Equal(t, Verdict{Automated: true, Template: true}, v)
	}
}
