package polymarket

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Alex-Alaniz/PolymarketPipeline-Primape-sub002/internal/domain"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexTime unmarshals from an RFC3339 string or a numeric epoch-millisecond
// timestamp. A missing, null, or unparseable value decodes to the zero time.
type flexTime time.Time

func (f *flexTime) UnmarshalJSON(data []byte) error {
	*f = flexTime(time.Time{})
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			return nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			*f = flexTime(t)
		}
		return nil
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err == nil {
		*f = flexTime(time.UnixMilli(ms).UTC())
	}
	return nil
}

func (f flexTime) Time() time.Time { return time.Time(f) }

// APIEvent is the event object the Gamma API nests inside a market response.
type APIEvent struct {
	ID       string   `json:"id"`
	Ticker   string   `json:"ticker"`
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Image    string   `json:"image"`
	Icon     string   `json:"icon"`
	Category string   `json:"category"`
	Active   flexBool `json:"active"`
	Closed   flexBool `json:"closed"`
}

// ToEventRef converts the API event to the domain event reference.
func (e *APIEvent) ToEventRef() domain.EventRef {
	return domain.EventRef{
		ID:       e.ID,
		Title:    e.Title,
		Image:    e.Image,
		Icon:     e.Icon,
		Category: e.Category,
	}
}

// APIMarket is a market as returned by the Gamma API. Outcomes arrives as a
// JSON-encoded string, e.g. "[\"Yes\",\"No\"]", not as a JSON array.
type APIMarket struct {
	ID          string     `json:"id"`
	ConditionID string     `json:"conditionId"`
	Slug        string     `json:"slug"`
	Question    string     `json:"question"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Icon        string     `json:"icon"`
	Outcomes    string     `json:"outcomes"`
	Category    string     `json:"category"`
	EndDate     flexTime   `json:"endDate"`
	Active      flexBool   `json:"active"`
	Closed      flexBool   `json:"closed"`
	Archived    flexBool   `json:"archived"`
	Events      []APIEvent `json:"events"`
}

// ToRawMarket converts the API market to the domain record, decoding the
// outcomes string at the boundary. Outcomes stays nil when the field is
// missing or malformed; downstream treats that as a non-mergeable record
// rather than an error.
func (m *APIMarket) ToRawMarket() domain.RawMarket {
	raw := domain.RawMarket{
		ID:          m.ID,
		ConditionID: m.ConditionID,
		Question:    m.Question,
		Description: m.Description,
		Image:       m.Image,
		Icon:        m.Icon,
		Outcomes:    decodeOutcomes(m.Outcomes),
		Category:    m.Category,
		EndDate:     m.EndDate.Time(),
		Active:      bool(m.Active),
		Closed:      bool(m.Closed),
		Archived:    bool(m.Archived),
	}
	for i := range m.Events {
		raw.Events = append(raw.Events, m.Events[i].ToEventRef())
	}
	return raw
}

// decodeOutcomes parses the Gamma API's double-encoded outcomes field.
func decodeOutcomes(s string) []string {
	if s == "" {
		return nil
	}
	var outcomes []string
	if err := json.Unmarshal([]byte(s), &outcomes); err != nil {
		return nil
	}
	return outcomes
}
