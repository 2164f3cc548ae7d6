package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBasics(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercase and collapse", "  Quarterly   Business REVIEW ", "quarterly business review"},
		{"thread prefix", "Re: quarterly review", "quarterly review"},
		{"nested thread prefix", "Fwd: Re: quarterly review", "quarterly review"},
		{"url token", "docs are at https://example.com/guide for reference", "docs are at URL for reference"},
		{"greeting token", "Hi Sarah, thanks for the notes", "GREETING thanks for the notes"},
		{"company at pattern", "your team at acme with great results", "your team at COMPANY with great results"},
		{"account manager pattern", "this is acme's account manager speaking", "this is COMPANY account manager speaking"},
		{"user count", "you now have 30 users active", "you now have NUM users active"},
		{"big number", "order 12345 has shipped", "order NUM has shipped"},
		{"name introduction", "my name is jordan and i work here", "my name is NAME and i work here"},
		{"i am company", "i am acme's onboarding contact", "i am COMPANY onboarding contact"},
		{"month date", "renewal lands june 5th this cycle", "renewal lands DATE this cycle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizeCollapsesPersonalizedVariants(t *testing.T) {
	n := NewNormalizer()

	a := n.Normalize("Hi Alice, quick note about your workspace")
	b := n.Normalize("Hi Bob, quick note about your workspace")
	assert.Equal(t, a, b)

	c := n.Normalize("you have 25 users on the team")
	d := n.Normalize("you have 250 users on the team")
	assert.Equal(t, c, d)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := NewNormalizer()

	inputs := []string{
		"",
		"plain text with nothing special",
		"Re: Hi Maria, following up on https://example.com/pricing",
		"order 98765 ships june 3rd to acme's account manager",
		"my name is casey and i am acme's admin with 40 users",
		"Fwd: budget numbers 2024 and 1/15/2024 deadline",
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input: %q", in)
	}
}

func TestNormalizePreservesTokenOrder(t *testing.T) {
	n := NewNormalizer()

	got := n.Normalize("alpha https://x.example beta 12345 gamma")
	assert.Equal(t, "alpha URL beta NUM gamma", got)
}
