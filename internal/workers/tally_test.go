package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benvon/mood-poll/internal/queue"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func vote(moods, paces []string) *queue.PollEvent {
	return &queue.PollEvent{Type: queue.EventTypeVote, Moods: moods, Paces: paces}
}

func TestActivityTally_Process(t *testing.T) {
	t.Parallel()

	tally := NewActivityTally(nil)
	events := []*queue.PollEvent{
		vote([]string{"happy", "happy"}, []string{"fast"}),
		vote([]string{"calm"}, nil),
		{Type: queue.EventTypeToggle, SongID: "a"},
	}
	for _, ev := range events {
		if err := tally.Process(ev); err != nil {
			t.Fatalf("Process() error = %v", err)
		}
	}

	got := tally.Current()
	if got.Votes != 2 || got.Toggles != 1 || got.Resets != 0 {
		t.Errorf("Unexpected counters %+v", got)
	}
	if got.Moods["happy"] != 2 || got.Moods["calm"] != 1 || got.Paces["fast"] != 1 {
		t.Errorf("Unexpected tag tallies moods=%v paces=%v", got.Moods, got.Paces)
	}

	if err := tally.Process(&queue.PollEvent{Type: queue.EventTypeReset}); err != nil {
		t.Fatalf("Process(reset) error = %v", err)
	}
	got = tally.Current()
	if got.Resets != 1 || len(got.Moods) != 0 || len(got.Paces) != 0 {
		t.Errorf("Expected reset to clear tag tallies, got %+v", got)
	}
	if got.Votes != 2 {
		t.Errorf("Expected vote counter to survive reset, got %d", got.Votes)
	}
}

func TestActivityTally_ProcessRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ev   *queue.PollEvent
	}{
		{name: "nil", ev: nil},
		{name: "unknown type", ev: &queue.PollEvent{Type: "shuffle"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := NewActivityTally(nil).Process(tt.ev); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestActivityTally_CurrentIsACopy(t *testing.T) {
	t.Parallel()

	tally := NewActivityTally(nil)
	_ = tally.Process(vote([]string{"happy"}, nil))

	snap := tally.Current()
	snap.Moods["happy"] = 100

	if got := tally.Current().Moods["happy"]; got != 1 {
		t.Errorf("Expected tally unaffected by copy, got %d", got)
	}
}

func TestActivityTally_FlushStartsNewWindow(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	tally := NewActivityTally(zap.New(core))
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tally.now = func() time.Time { return start }

	_ = tally.Process(vote([]string{"happy", "sad", "happy"}, []string{"slow"}))

	closed := tally.Flush()
	if closed.Votes != 1 || closed.Moods["happy"] != 2 {
		t.Errorf("Unexpected closed window %+v", closed)
	}
	if cur := tally.Current(); cur.Votes != 0 || len(cur.Moods) != 0 || !cur.Start.Equal(start) {
		t.Errorf("Expected fresh window, got %+v", cur)
	}

	entries := logs.FilterMessage("activity_summary").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 activity_summary log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["votes"] != int64(1) {
		t.Errorf("Expected votes=1 field, got %v", fields["votes"])
	}
	moods, ok := fields["top_moods"].([]interface{})
	if !ok || len(moods) != 2 || moods[0] != "happy=2" || moods[1] != "sad=1" {
		t.Errorf("Unexpected top_moods field %v", fields["top_moods"])
	}
}

func TestSummary_TopTags(t *testing.T) {
	t.Parallel()

	s := Summary{Moods: map[string]int{"b": 2, "a": 2, "c": 5, "zero": 0}}
	top := s.TopMoods(2)
	if len(top) != 2 || top[0] != (TagCount{Tag: "c", Count: 5}) || top[1] != (TagCount{Tag: "a", Count: 2}) {
		t.Errorf("TopMoods(2) = %v", top)
	}
	if all := s.TopMoods(-1); len(all) != 3 {
		t.Errorf("Expected zero counts excluded, got %v", all)
	}
	if none := s.TopPaces(3); len(none) != 0 {
		t.Errorf("Expected no paces, got %v", none)
	}
}

func TestActivityTally_Run(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	tally := NewActivityTally(zap.New(core))

	events := make(chan *queue.PollEvent)
	errs := make(chan error, 1)
	done := make(chan error, 1)
	go func() {
		done <- tally.Run(context.Background(), events, errs, time.Hour)
	}()

	events <- vote([]string{"happy"}, nil)
	events <- &queue.PollEvent{Type: "bogus"}
	errs <- errors.New("delivery channel closed")
	close(errs)
	events <- vote(nil, []string{"fast"})
	close(events)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the event channel closed")
	}

	summaries := logs.FilterMessage("activity_summary").All()
	if len(summaries) != 1 {
		t.Fatalf("Expected final summary on exit, got %d", len(summaries))
	}
	if got := summaries[0].ContextMap()["votes"]; got != int64(2) {
		t.Errorf("Expected 2 votes in final summary, got %v", got)
	}
	if logs.FilterMessage("activity_event_rejected").Len() != 1 {
		t.Error("Expected rejected event to be logged")
	}
}

func TestActivityTally_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	tally := NewActivityTally(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tally.Run(ctx, make(chan *queue.PollEvent), nil, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
