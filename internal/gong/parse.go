package gong

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/runnerr0/commsift/internal/model"
)

// The day-activities response is a JSON object keyed by ISO date strings,
// each holding an array of activities. Keys that are not dates carry
// response metadata and are ignored.
var dateKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// activityPayload is the wire shape of one timeline activity. The vendor
// populates different field subsets depending on activity age and type,
// so most fields have ordered fallbacks applied during conversion.
type activityPayload struct {
	ID                    string       `json:"id"`
	Type                  string       `json:"type"`
	EpochTime             int64        `json:"epochTime"`
	AccountID             string       `json:"accountId"`
	Direction             string       `json:"direction"`
	GeneratedTitle        string       `json:"generatedTitle"`
	CustomerName          string       `json:"customerName"`
	CallID                string       `json:"callId"`
	ParticipantsEmailList []string     `json:"participantsEmailList"`
	ExtendedData          extendedData `json:"extendedData"`
}

type extendedData struct {
	ID                   string           `json:"id"`
	From                 *personPayload   `json:"from"`
	ByPerson             *personPayload   `json:"byPerson"`
	To                   []personPayload  `json:"to"`
	Subject              string           `json:"subject"`
	ContentTitle         string           `json:"contentTitle"`
	Synopsis             string           `json:"synopsis"`
	CategoryPassiveVoice string           `json:"categoryPassiveVoice"`
	Title                string           `json:"title"`
	GeneratedTitle       string           `json:"generatedTitle"`
	CustomerName         string           `json:"customerName"`
	AccountName          string           `json:"accountName"`
	CallID               string           `json:"callId"`
	Duration             int              `json:"duration"`
}

type personPayload struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	CompanyName string `json:"companyName"`
}

// parseDayActivities converts one raw day-activities response into model
// records. Activities missing an id are skipped; everything else degrades
// field by field (placeholder sender, zero time, empty strings) rather
// than failing the chunk.
func parseDayActivities(body []byte, accountID, internalDomain string) ([]model.Call, []model.Email, error) {
	var days map[string]json.RawMessage
	if err := json.Unmarshal(body, &days); err != nil {
		return nil, nil, fmt.Errorf("decoding day-activities response: %w", err)
	}

	var calls []model.Call
	var emails []model.Email

	for key, raw := range days {
		if !dateKeyPattern.MatchString(key) {
			continue
		}
		var activities []activityPayload
		if err := json.Unmarshal(raw, &activities); err != nil {
			// A malformed day entry loses that day, not the chunk.
			continue
		}
		for _, a := range activities {
			switch strings.ToUpper(a.Type) {
			case "CALL":
				if call, ok := parseCall(a, key, accountID); ok {
					calls = append(calls, call)
				}
			case "EMAIL":
				if email, ok := parseEmail(a, accountID, internalDomain); ok {
					emails = append(emails, email)
				}
			}
		}
	}

	return calls, emails, nil
}

// parseEmail converts one EMAIL activity. The sender comes from
// extendedData.from with byPerson as fallback; recipients come from
// extendedData.to with the flat participant email list as fallback.
func parseEmail(a activityPayload, accountID, internalDomain string) (model.Email, bool) {
	if a.ID == "" {
		return model.Email{}, false
	}

	ed := a.ExtendedData

	from := ed.From
	if from == nil {
		from = ed.ByPerson
	}

	sender := model.Recipient{Email: model.PlaceholderSender, Type: "from"}
	if from != nil && from.Email != "" {
		sender.Email = from.Email
		sender.Name = from.Name
		sender.Title = from.Title
		sender.Company = firstNonEmpty(from.Company, from.CompanyName)
	}
	sender.IsInternal = isInternalAddress(sender.Email, internalDomain)

	var recipients []model.Recipient
	if len(ed.To) > 0 {
		for _, to := range ed.To {
			recipients = append(recipients, model.Recipient{
				Email:      to.Email,
				Name:       to.Name,
				Type:       "to",
				Title:      to.Title,
				Company:    firstNonEmpty(to.Company, to.CompanyName),
				IsInternal: isInternalAddress(to.Email, internalDomain),
			})
		}
	} else {
		for _, addr := range a.ParticipantsEmailList {
			if addr == "" || strings.EqualFold(addr, sender.Email) {
				continue
			}
			recipients = append(recipients, model.Recipient{
				Email:      addr,
				Name:       localPart(addr),
				Type:       "to",
				IsInternal: isInternalAddress(addr, internalDomain),
			})
		}
	}

	var sentAt time.Time
	if a.EpochTime > 0 {
		sentAt = time.Unix(a.EpochTime, 0).UTC()
	}

	emailAccountID := accountID
	if a.AccountID != "" {
		emailAccountID = a.AccountID
	}

	return model.Email{
		ID:         a.ID,
		AccountID:  emailAccountID,
		Subject:    firstNonEmpty(ed.Subject, ed.ContentTitle, "No Subject"),
		Snippet:    firstNonEmpty(ed.Synopsis, ed.CategoryPassiveVoice),
		Direction:  model.DeriveDirection(sender, recipients),
		SentAt:     sentAt,
		Sender:     sender,
		Recipients: recipients,
	}, true
}

// parseCall converts one CALL activity. The call id itself has fallbacks
// because the vendor moves it between the activity and its extended data.
func parseCall(a activityPayload, dateKey, accountID string) (model.Call, bool) {
	ed := a.ExtendedData

	id := firstNonEmpty(a.ID, a.CallID, ed.CallID, ed.ID)
	if id == "" {
		return model.Call{}, false
	}

	var start time.Time
	if a.EpochTime > 0 {
		start = time.Unix(a.EpochTime, 0).UTC()
	} else if t, err := time.Parse("2006-01-02", dateKey); err == nil {
		start = t
	}

	var participants []model.Participant
	seen := map[string]bool{}
	if ed.ByPerson != nil && ed.ByPerson.Email != "" {
		p := ed.ByPerson
		name := p.Name
		if name == "" {
			name = localPart(p.Email)
		}
		participants = append(participants, model.Participant{
			Name:    name,
			Email:   p.Email,
			Title:   p.Title,
			Company: firstNonEmpty(p.Company, p.CompanyName),
		})
		seen[strings.ToLower(p.Email)] = true
	}
	for _, addr := range a.ParticipantsEmailList {
		if addr == "" || seen[strings.ToLower(addr)] {
			continue
		}
		participants = append(participants, model.Participant{
			Name:  localPart(addr),
			Email: addr,
		})
		seen[strings.ToLower(addr)] = true
	}

	call := model.Call{
		ID:              id,
		AccountID:       accountID,
		Title:           firstNonEmpty(ed.Title, ed.ContentTitle, "Call"),
		GeneratedTitle:  firstNonEmpty(ed.GeneratedTitle, a.GeneratedTitle),
		CustomerName:    firstNonEmpty(ed.CustomerName, a.CustomerName, ed.AccountName),
		Direction:       parseDirection(a.Direction),
		DurationSeconds: ed.Duration,
		ScheduledStart:  start,
		Participants:    participants,
	}
	return call, call.Valid()
}

func parseDirection(s string) model.Direction {
	switch strings.ToUpper(s) {
	case "INBOUND":
		return model.DirectionInbound
	case "OUTBOUND":
		return model.DirectionOutbound
	case "INTERNAL":
		return model.DirectionInternal
	default:
		return model.DirectionUnknown
	}
}

func isInternalAddress(addr, internalDomain string) bool {
	return internalDomain != "" && strings.Contains(strings.ToLower(addr), strings.ToLower(internalDomain))
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
