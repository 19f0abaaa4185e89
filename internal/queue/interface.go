package queue

import (
	"context"
)

// Publisher delivers poll events to an external broker
type Publisher interface {
	// Publish sends one event
	Publish(ctx context.Context, event *PollEvent) error

	// Close closes the broker connection
	Close() error

	// HealthCheck verifies the broker connection is healthy
	HealthCheck(ctx context.Context) error
}

// Subscriber receives poll events from an external broker
type Subscriber interface {
	// Subscribe returns a channel of events that is closed when ctx is
	// cancelled or the connection drops
	Subscribe(ctx context.Context) (<-chan *PollEvent, <-chan error, error)

	// Close closes the broker connection
	Close() error
}
