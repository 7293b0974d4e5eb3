package domain

import "time"

// Event is the persisted representation of a real-world event that one or more
// markets hang off (e.g. "Champions League Winner 2025").
type Event struct {
	ID        string
	Title     string
	Category  string
	BannerURL string
	IconURL   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PendingMarket is a transformed market awaiting human approval. It carries
// everything the approval message needs: the option list, the per-option image
// map, and the shared banner/icon.
type PendingMarket struct {
	PolyID         string
	Question       string
	EventID        string
	EventName      string
	Category       string
	NeedsManual    bool
	BannerURL      string
	IconURL        string
	Options        []string
	OptionImages   map[string]OptionImage
	SourceIDs      []string
	Expiry         time.Time
	Posted         bool
	SlackMessageID string
	CreatedAt      time.Time
}

// Market is an approved market persisted alongside its event.
type Market struct {
	ID               string
	Question         string
	EventID          string
	Category         string
	Options          []string
	OptionImages     map[string]OptionImage
	OriginalMarketID string
	Expiry           time.Time
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
