package model

import "time"

// PlaceholderSender is used when an activity payload carries no sender
// address. Keeping it populated lets the filter engine group by sender
// without special-casing missing values.
const PlaceholderSender = "unknown@example.com"

// Direction classifies which way a communication flowed relative to the
// extracting organization.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
	DirectionInternal Direction = "internal"
	DirectionUnknown  Direction = "unknown"
)

// Recipient is one party on an email: the sender or any to/cc entry.
type Recipient struct {
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	Type       string `json:"type,omitempty"` // "to", "cc", "from"
	Title      string `json:"title,omitempty"`
	Company    string `json:"company,omitempty"`
	IsInternal bool   `json:"is_internal"`
}

// Email is the normalized intermediate representation of one email
// activity. It is the only shape the filter engine ever sees; raw vendor
// JSON is converted at the API boundary.
type Email struct {
	ID         string      `json:"id"`
	AccountID  string      `json:"account_id"`
	Subject    string      `json:"subject"`
	Snippet    string      `json:"snippet,omitempty"`
	Direction  Direction   `json:"direction"`
	SentAt     time.Time   `json:"sent_at"` // zero value means unknown
	Sender     Recipient   `json:"sender"`
	Recipients []Recipient `json:"recipients,omitempty"`

	// Filtering annotations, set by the filter engine.
	IsAutomated bool `json:"is_automated"`
	IsTemplate  bool `json:"is_template"`
}

// Content returns the raw snippet and subject concatenated, the text the
// grouper and representative selector operate on.
func (e *Email) Content() string {
	return e.Snippet + " " + e.Subject
}

// DeriveDirection computes the email direction from sender/recipient
// internal flags: internal sender means outbound, any internal recipient
// means inbound, otherwise the exchange never touched the organization
// and is recorded as internal to the account.
func DeriveDirection(sender Recipient, recipients []Recipient) Direction {
	if sender.IsInternal {
		return DirectionOutbound
	}
	for _, r := range recipients {
		if r.IsInternal {
			return DirectionInbound
		}
	}
	return DirectionInternal
}
