package filter

import (
	"strings"

	"github.com/runnerr0/commsift/internal/config"
)

// Verdict is the outcome of classifying a single message.
type Verdict struct {
	Automated bool
	Template  bool
}

// message bundles the pre-lowercased inputs every rule sees.
type message struct {
	subject     string
	snippet     string
	senderEmail string
	senderTitle string
}

// rule is one tier of the classification cascade. matched=false means the
// cascade continues to the next rule.
type rule struct {
	name string
	eval func(m message) (Verdict, bool)
}

// Classifier decides whether a single message is automated and/or
// templated. Rules are evaluated in declaration order; the first rule
// that matches wins, so higher-confidence signals (exact sender match)
// always outrank weaker ones (content markers).
type Classifier struct {
	rules []rule
}

// NewClassifier builds the rule cascade from the configured vocabularies.
func NewClassifier(cfg config.FilterConfig) *Classifier {
	denylist := make(map[string]bool, len(cfg.SenderDenylist))
	for _, addr := range cfg.SenderDenylist {
		denylist[strings.ToLower(addr)] = true
	}

	senderMarkers := lowerAll(cfg.AutomatedSenderMarkers)
	autoReplyMarkers := lowerAll(cfg.AutoReplyMarkers)
	templateMarkers := lowerAll(cfg.TemplateMarkers)

	return &Classifier{rules: []rule{
		{
			name: "empty-content",
			eval: func(m message) (Verdict, bool) {
				if m.subject == "" && m.snippet == "" {
					return Verdict{}, true
				}
				return Verdict{}, false
			},
		},
		{
			name: "sender-denylist",
			eval: func(m message) (Verdict, bool) {
				if denylist[m.senderEmail] {
					return Verdict{Automated: true, Template: true}, true
				}
				return Verdict{}, false
			},
		},
		{
			name: "account-development-title",
			eval: func(m message) (Verdict, bool) {
				if strings.Contains(m.senderTitle, "account development") {
					return Verdict{Automated: true, Template: true}, true
				}
				return Verdict{}, false
			},
		},
		{
			name: "automated-sender",
			eval: func(m message) (Verdict, bool) {
				if containsAny(m.senderEmail, senderMarkers) {
					return Verdict{Automated: true, Template: true}, true
				}
				return Verdict{}, false
			},
		},
		{
			name: "auto-reply-subject",
			eval: func(m message) (Verdict, bool) {
				if containsAny(m.subject, autoReplyMarkers) {
					return Verdict{Automated: true, Template: true}, true
				}
				return Verdict{}, false
			},
		},
		{
			// Template phrasing is itself the automation signal, so
			// both flags carry the same value.
			name: "template-markers",
			eval: func(m message) (Verdict, bool) {
				if containsAny(m.subject+" "+m.snippet, templateMarkers) {
					return Verdict{Automated: true, Template: true}, true
				}
				return Verdict{}, false
			},
		},
	}}
}

// Classify runs the cascade. No rule matching yields the safe default:
// neither automated nor templated.
func (c *Classifier) Classify(subject, snippet, senderEmail, senderTitle string) Verdict {
	m := message{
		subject:     strings.ToLower(subject),
		snippet:     strings.ToLower(snippet),
		senderEmail: strings.ToLower(senderEmail),
		senderTitle: strings.ToLower(senderTitle),
	}

	for _, r := range c.rules {
		if verdict, matched := r.eval(m); matched {
			return verdict
		}
	}
	return Verdict{}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
