package queue

import (
	"encoding/json"
	"testing"

	"github.com/benvon/mood-poll/internal/poll"
	"github.com/google/uuid"
)

func TestNewPollEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		change     poll.Change
		wantType   EventType
		wantKey    string
		wantPlayed *bool
	}{
		{
			name:     "vote",
			change:   poll.Change{Kind: poll.ChangeVote, Ballot: poll.Ballot{Moods: []string{"chill"}, Paces: []string{"slow"}}},
			wantType: EventTypeVote,
			wantKey:  "poll.vote",
		},
		{
			name:       "toggle",
			change:     poll.Change{Kind: poll.ChangeToggle, SongID: "a", Played: true},
			wantType:   EventTypeToggle,
			wantKey:    "poll.toggle",
			wantPlayed: boolPtr(true),
		},
		{
			name:     "reset",
			change:   poll.Change{Kind: poll.ChangeReset},
			wantType: EventTypeReset,
			wantKey:  "poll.reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ev := NewPollEvent(tt.change)

			if ev.ID == uuid.Nil {
				t.Error("Expected event ID to be set")
			}
			if ev.CreatedAt.IsZero() {
				t.Error("Expected CreatedAt to be set")
			}
			if ev.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", ev.Type, tt.wantType)
			}
			if got := ev.RoutingKey(); got != tt.wantKey {
				t.Errorf("RoutingKey() = %q, want %q", got, tt.wantKey)
			}
			switch {
			case tt.wantPlayed == nil && ev.Played != nil:
				t.Errorf("Played = %v, want nil", *ev.Played)
			case tt.wantPlayed != nil && (ev.Played == nil || *ev.Played != *tt.wantPlayed):
				t.Errorf("Played = %v, want %v", ev.Played, *tt.wantPlayed)
			}
		})
	}
}

func TestNewPollEvent_CopiesBallot(t *testing.T) {
	t.Parallel()

	moods := []string{"chill"}
	ev := NewPollEvent(poll.Change{Kind: poll.ChangeVote, Ballot: poll.Ballot{Moods: moods}})
	moods[0] = "hype"

	if ev.Moods[0] != "chill" {
		t.Errorf("event shares the ballot slice: %v", ev.Moods)
	}
}

func TestPollEvent_JSON(t *testing.T) {
	t.Parallel()

	ev := NewPollEvent(poll.Change{Kind: poll.ChangeReset})
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"moods", "paces", "song_id", "played"} {
		if _, ok := raw[key]; ok {
			t.Errorf("reset event should omit %q", key)
		}
	}
	if raw["type"] != "reset" {
		t.Errorf("type = %v, want reset", raw["type"])
	}
}

func boolPtr(b bool) *bool {
	return &b
}
