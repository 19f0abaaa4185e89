package models

// EventType tags a pushed snapshot
type EventType string

const (
	// EventHello is sent once when a listener subscribes
	EventHello EventType = "hello"
	// EventUpdate is sent after mutations and on every tick
	EventUpdate EventType = "update"
)

// Event is the payload pushed to live listeners
type Event struct {
	Type       EventType    `json:"type"`
	MoodCounts TagCounts    `json:"moodCounts"`
	PaceCounts TagCounts    `json:"paceCounts"`
	Playlist   []RankedSong `json:"playlist"`
}

// NewEvent wraps a snapshot with the given event type
func NewEvent(t EventType, s Snapshot) Event {
	return Event{
		Type:       t,
		MoodCounts: s.MoodCounts,
		PaceCounts: s.PaceCounts,
		Playlist:   s.Playlist,
	}
}
