package filter

import (
	"regexp"
	"strings"
)

// Placeholder tokens emitted by normalization. The case fold preserves
// them so normalization is idempotent: a second pass over already
// normalized text changes nothing.
var placeholderTokens = map[string]bool{
	"URL":      true,
	"GREETING": true,
	"COMPANY":  true,
	"NUM":      true,
	"NAME":     true,
	"DATE":     true,
}

// Normalizer canonicalizes email subject/snippet text so that two
// personalized instances of the same template collapse to near-identical
// strings. Patterns are compiled once; all of them run against
// already-lowercased text, so none needs a case-insensitive flag.
type Normalizer struct {
	threadPrefix   *regexp.Regexp
	url            *regexp.Regexp
	greeting       *regexp.Regexp
	companyAt      *regexp.Regexp
	accountManager *regexp.Regexp
	usersNumber    *regexp.Regexp
	withUsers      *regexp.Regexp
	bigNumbers     *regexp.Regexp
	nameIs         *regexp.Regexp
	iAm            *regexp.Regexp
	dateSlash      *regexp.Regexp
	dateMonth      *regexp.Regexp
}

// NewNormalizer compiles the normalization patterns.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		threadPrefix:   regexp.MustCompile(`\b(re|fwd):\s*`),
		url:            regexp.MustCompile(`https?://\S+`),
		greeting:       regexp.MustCompile(`\b(hi|hello|hey|dear)\s+[a-z]+[,.-]?\s*`),
		companyAt:      regexp.MustCompile(`\bat\s+[a-z]+\s+with\b`),
		accountManager: regexp.MustCompile(`\b[a-z]+'s\s+account\s+manager\b`),
		usersNumber:    regexp.MustCompile(`\b\d+\.?\d*\s+users?\b`),
		withUsers:      regexp.MustCompile(`\bwith\s+\d+\.?\d*\s+users\b`),
		bigNumbers:     regexp.MustCompile(`\b\d{2,}\b`),
		nameIs:         regexp.MustCompile(`\bmy name is\s+[a-z]+\b`),
		iAm:            regexp.MustCompile(`\bi am\s+[a-z]+'s\b`),
		dateSlash:      regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
		dateMonth:      regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(st|nd|rd|th)?\b`),
	}
}

// Normalize applies the substitution passes in a fixed order. Token order
// of the surviving text is never altered, only individual spans are
// replaced.
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	t := foldKeepingTokens(text)

	t = n.threadPrefix.ReplaceAllString(t, "")
	t = n.url.ReplaceAllString(t, " URL ")
	t = n.greeting.ReplaceAllString(t, " GREETING ")
	t = n.companyAt.ReplaceAllString(t, " at COMPANY with ")
	t = n.accountManager.ReplaceAllString(t, " COMPANY account manager ")
	t = n.usersNumber.ReplaceAllString(t, " NUM users ")
	t = n.withUsers.ReplaceAllString(t, " with NUM users ")
	t = n.bigNumbers.ReplaceAllString(t, " NUM ")
	t = n.nameIs.ReplaceAllString(t, " my name is NAME ")
	t = n.iAm.ReplaceAllString(t, " i am COMPANY ")
	t = n.dateSlash.ReplaceAllString(t, " DATE ")
	t = n.dateMonth.ReplaceAllString(t, " DATE ")

	return strings.Join(strings.Fields(t), " ")
}

// foldKeepingTokens lowercases every whitespace-delimited word except the
// placeholder tokens, and collapses whitespace runs to single spaces.
func foldKeepingTokens(text string) string {
	fields := strings.Fields(text)
	for i, w := range fields {
		if !placeholderTokens[w] {
			fields[i] = strings.ToLower(w)
		}
	}
	return strings.Join(fields, " ")
}
