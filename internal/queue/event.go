package queue

import (
	"time"

	"github.com/benvon/mood-poll/internal/poll"
	"github.com/google/uuid"
)

// EventType represents the kind of poll activity
type EventType string

const (
	// EventTypeVote is published for every accepted ballot
	EventTypeVote EventType = "vote"
	// EventTypeToggle is published when a song's played flag flips
	EventTypeToggle EventType = "toggle"
	// EventTypeReset is published when the poll is cleared
	EventTypeReset EventType = "reset"
)

// PollEvent is one poll mutation as published to the activity exchange
type PollEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      EventType `json:"type"`
	Moods     []string  `json:"moods,omitempty"`
	Paces     []string  `json:"paces,omitempty"`
	SongID    string    `json:"song_id,omitempty"`
	Played    *bool     `json:"played,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPollEvent creates an event describing change
func NewPollEvent(change poll.Change) *PollEvent {
	ev := &PollEvent{
		ID:        uuid.New(),
		Type:      EventType(change.Kind),
		CreatedAt: time.Now().UTC(),
	}
	switch change.Kind {
	case poll.ChangeVote:
		ev.Moods = append([]string(nil), change.Ballot.Moods...)
		ev.Paces = append([]string(nil), change.Ballot.Paces...)
	case poll.ChangeToggle:
		played := change.Played
		ev.SongID = change.SongID
		ev.Played = &played
	}
	return ev
}

// RoutingKey is the topic key the event is published under, e.g. "poll.vote"
func (e *PollEvent) RoutingKey() string {
	return "poll." + string(e.Type)
}
