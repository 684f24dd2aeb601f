// Package events implements the calendar event store. Only the records and
// their queries live here; rendering a date grid is a presentation concern.
package events

// Type classifies an event.
type Type string

const (
	TypeMeeting  Type = "meeting"
	TypeCall     Type = "call"
	TypeEvent    Type = "event"
	TypeDeadline Type = "deadline"
)

// Event is a single calendar entry. Day and Time are kept as strings in the
// stored layout ("2006-01-02" and "15:04") and validated on the way in.
type Event struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Day       string `json:"day"`
	Time      string `json:"time"`
	Type      Type   `json:"type"`
	Location  string `json:"location,omitempty"`
	Attendees int    `json:"attendees,omitempty"`
}
