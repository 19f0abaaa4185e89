// Package workers holds background consumers of poll activity events.
package workers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	logpkg "github.com/benvon/mood-poll/internal/logger"
	"github.com/benvon/mood-poll/internal/queue"
	"go.uber.org/zap"
)

// DefaultSummaryInterval is how often the tally logs and restarts its window
const DefaultSummaryInterval = time.Minute

const summaryTopTags = 5

// Summary is the activity seen in one window
type Summary struct {
	Start   time.Time
	Votes   int
	Toggles int
	Resets  int
	Moods   map[string]int
	Paces   map[string]int
}

// TagCount is one entry of a ranked tag list
type TagCount struct {
	Tag   string
	Count int
}

// TopMoods returns the most voted moods in the window, highest first
func (s Summary) TopMoods(n int) []TagCount { return topTags(s.Moods, n) }

// TopPaces returns the most voted paces in the window, highest first
func (s Summary) TopPaces(n int) []TagCount { return topTags(s.Paces, n) }

// ActivityTally aggregates poll activity events into time windows
type ActivityTally struct {
	mu      sync.Mutex
	logger  *zap.Logger
	now     func() time.Time
	current Summary
}

// NewActivityTally creates an empty tally
func NewActivityTally(logger *zap.Logger) *ActivityTally {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &ActivityTally{logger: logger, now: time.Now}
	t.current = t.newWindow()
	return t
}

// Process adds one event to the current window. A reset clears the tag
// tallies of the window, mirroring the poll itself.
func (t *ActivityTally) Process(ev *queue.PollEvent) error {
	if ev == nil {
		return fmt.Errorf("nil event")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Type {
	case queue.EventTypeVote:
		t.current.Votes++
		for _, m := range ev.Moods {
			t.current.Moods[m]++
		}
		for _, p := range ev.Paces {
			t.current.Paces[p]++
		}
	case queue.EventTypeToggle:
		t.current.Toggles++
	case queue.EventTypeReset:
		t.current.Resets++
		t.current.Moods = map[string]int{}
		t.current.Paces = map[string]int{}
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

// Current returns a copy of the open window
func (t *ActivityTally) Current() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneSummary(t.current)
}

// Flush logs the open window, starts a new one and returns the closed window
func (t *ActivityTally) Flush() Summary {
	t.mu.Lock()
	closed := t.current
	t.current = t.newWindow()
	t.mu.Unlock()

	t.logger.Info("activity_summary",
		zap.Time("window_start", closed.Start),
		zap.Int("votes", closed.Votes),
		zap.Int("toggles", closed.Toggles),
		zap.Int("resets", closed.Resets),
		zap.Strings("top_moods", tagNames(closed.TopMoods(summaryTopTags))),
		zap.Strings("top_paces", tagNames(closed.TopPaces(summaryTopTags))),
	)
	return closed
}

// Run processes events until ctx is cancelled or the event channel closes,
// flushing a summary every interval and once more on exit
func (t *ActivityTally) Run(ctx context.Context, events <-chan *queue.PollEvent, errs <-chan error, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultSummaryInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer t.Flush()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.Flush()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := t.Process(ev); err != nil {
				t.logger.Warn("activity_event_rejected", zap.Error(err))
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			t.logger.Warn("activity_delivery_error", zap.String("error", logpkg.SanitizeError(err)))
		}
	}
}

func (t *ActivityTally) newWindow() Summary {
	return Summary{
		Start: t.now(),
		Moods: map[string]int{},
		Paces: map[string]int{},
	}
}

func cloneSummary(s Summary) Summary {
	c := s
	c.Moods = make(map[string]int, len(s.Moods))
	for k, v := range s.Moods {
		c.Moods[k] = v
	}
	c.Paces = make(map[string]int, len(s.Paces))
	for k, v := range s.Paces {
		c.Paces[k] = v
	}
	return c
}

// topTags orders by count descending, then tag ascending
func topTags(counts map[string]int, n int) []TagCount {
	out := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		if count > 0 {
			out = append(out, TagCount{Tag: tag, Count: count})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func tagNames(tags []TagCount) []string {
	names := make([]string, len(tags))
	for i, tc := range tags {
		names[i] = fmt.Sprintf("%s=%d", logpkg.SanitizeString(tc.Tag, logpkg.MaxTagLength), tc.Count)
	}
	return names
}
