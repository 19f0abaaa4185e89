package queue

import (
	"context"
	"time"

	"github.com/benvon/mood-poll/internal/poll"
	"go.uber.org/zap"
)

const (
	// DefaultNotifierBuffer is how many events may wait for the broker
	DefaultNotifierBuffer = 256
	publishTimeout        = 5 * time.Second
)

// Notifier forwards poll changes to a Publisher off the request path.
// When the buffer is full new events are dropped.
type Notifier struct {
	publisher Publisher
	logger    *zap.Logger
	events    chan *PollEvent
}

// NewNotifier creates a notifier with the given buffer size
func NewNotifier(publisher Publisher, logger *zap.Logger, buffer int) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = DefaultNotifierBuffer
	}
	return &Notifier{
		publisher: publisher,
		logger:    logger,
		events:    make(chan *PollEvent, buffer),
	}
}

// OnChange queues an activity event for the change
func (n *Notifier) OnChange(_ context.Context, change poll.Change) {
	ev := NewPollEvent(change)
	select {
	case n.events <- ev:
	default:
		n.logger.Warn("activity_event_dropped",
			zap.String("event_id", ev.ID.String()),
			zap.String("type", string(ev.Type)),
		)
	}
}

// Run publishes queued events until ctx is cancelled
func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-n.events:
			n.publish(ctx, ev)
		}
	}
}

func (n *Notifier) publish(ctx context.Context, ev *PollEvent) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := n.publisher.Publish(ctx, ev); err != nil {
		n.logger.Warn("activity_publish_failed",
			zap.String("event_id", ev.ID.String()),
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
	}
}
