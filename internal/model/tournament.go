package model

import "time"

// UnknownTournamentName is used when the tournament page does not render
// the expected name element.
const UnknownTournamentName = "Unknown Tournament"

// Tournament identifies one FencingTimeLive tournament and the events
// discovered on its schedule page.
type Tournament struct {
	// ID is the FencingTimeLive tournament identifier, the last path
	// segment of the schedule URL.
	ID string `json:"id"`

	// URL is the tournament schedule page URL the exporter was given.
	URL string `json:"url"`

	// Name is the tournament name as rendered on the schedule page,
	// or UnknownTournamentName when the element is missing.
	Name string `json:"name"`

	// FetchedAt is when the schedule page was rendered.
	FetchedAt time.Time `json:"fetched_at"`

	// Events are the competitions listed on the schedule page,
	// in page order.
	Events []Event `json:"events,omitempty"`
}

// EventByID returns the event with the given ID, or nil when absent.
func (t *Tournament) EventByID(id string) *Event {
	for i := range t.Events {
		if t.Events[i].ID == id {
			return &t.Events[i]
		}
	}
	return nil
}
