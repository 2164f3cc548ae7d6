package model

import "time"

// Participant is one attendee on a call.
type Participant struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Title      string `json:"title,omitempty"`
	Company    string `json:"company,omitempty"`
	IsInternal bool   `json:"is_internal"`
}

// Call is one call activity from the account timeline. Calls are not
// noise-filtered; they pass through with basic validity checks only.
type Call struct {
	ID              string        `json:"id"`
	AccountID       string        `json:"account_id"`
	Title           string        `json:"title"`
	GeneratedTitle  string        `json:"generated_title,omitempty"`
	CustomerName    string        `json:"customer_name,omitempty"`
	Direction       Direction     `json:"direction"`
	DurationSeconds int           `json:"duration_seconds"`
	ScheduledStart  time.Time     `json:"scheduled_start"`
	Participants    []Participant `json:"participants,omitempty"`
}

// Valid reports whether the call carries enough identity to be worth
// keeping: a non-empty id and title.
func (c *Call) Valid() bool {
	return c.ID != "" && c.Title != ""
}
