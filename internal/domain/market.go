// Package domain defines the core types and collaborator interfaces for the
// market-transformation pipeline: raw source records, transformed output
// records, persistence models, and the injected capabilities (ledger, stores,
// categorizer, blob storage) the pipeline depends on.
package domain

import "time"

// EventRef is the event metadata the source API attaches to a market. When
// several markets share an EventRef id they are candidates for merging into a
// single multi-option market.
type EventRef struct {
	ID       string
	Title    string
	Image    string
	Icon     string
	Category string
}

// RawMarket is a prediction-market listing as received from the source API,
// after boundary normalization. Outcomes is the decoded outcome list; it is
// nil when the source field was missing or could not be decoded, which
// disqualifies the market's group from merging.
type RawMarket struct {
	ID          string
	ConditionID string
	Question    string
	Description string
	Image       string
	Icon        string
	Outcomes    []string
	Category    string
	EndDate     time.Time
	Active      bool
	Closed      bool
	Archived    bool
	Events      []EventRef
}

// EventRef returns the first event reference attached to the market, if any.
func (m *RawMarket) EventRef() (EventRef, bool) {
	if len(m.Events) == 0 {
		return EventRef{}, false
	}
	return m.Events[0], true
}

// Expired reports whether the market's end date is in the past relative to now.
// Markets without an end date are never considered expired.
func (m *RawMarket) Expired(now time.Time) bool {
	return !m.EndDate.IsZero() && m.EndDate.Before(now)
}
