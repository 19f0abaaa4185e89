// Package stream fans poll snapshots out to live listeners.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benvon/mood-poll/internal/models"
	"github.com/benvon/mood-poll/internal/poll"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultTickInterval is how often open sinks get a fresh snapshot
	DefaultTickInterval = 1 * time.Second
	// DefaultKeepAliveInterval is how often idle sinks get a keep-alive frame
	DefaultKeepAliveInterval = 15 * time.Second
	// DefaultWriteTimeout bounds a single frame write to one sink
	DefaultWriteTimeout = 10 * time.Second
)

// ErrSinkClosed is returned when writing to a sink that has been closed
var ErrSinkClosed = errors.New("sink closed")

// Sink is one live listener connection
type Sink interface {
	ID() uuid.UUID
	// Send writes one encoded event
	Send(data []byte) error
	// KeepAlive writes a payload-free liveness frame
	KeepAlive() error
	// Close releases the sink; it must be safe to call more than once
	Close()
}

// SnapshotSource produces the current poll state
type SnapshotSource interface {
	Snapshot() models.Snapshot
}

// Hub is the registry of open sinks
type Hub struct {
	source            SnapshotSource
	logger            *zap.Logger
	tickInterval      time.Duration
	keepAliveInterval time.Duration
	writeTimeout      time.Duration

	mu    sync.RWMutex
	sinks map[uuid.UUID]Sink
}

// Option configures a Hub
type Option func(*Hub)

// WithTickInterval sets the periodic re-broadcast interval
func WithTickInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.tickInterval = d
		}
	}
}

// WithKeepAliveInterval sets the keep-alive interval
func WithKeepAliveInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.keepAliveInterval = d
		}
	}
}

// WithWriteTimeout sets the per-frame write deadline handed to transports
func WithWriteTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

// NewHub creates a hub that reads snapshots from source
func NewHub(source SnapshotSource, logger *zap.Logger, opts ...Option) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		source:            source,
		logger:            logger,
		tickInterval:      DefaultTickInterval,
		keepAliveInterval: DefaultKeepAliveInterval,
		writeTimeout:      DefaultWriteTimeout,
		sinks:             make(map[uuid.UUID]Sink),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// WriteTimeout returns the per-frame write deadline transports should use
func (h *Hub) WriteTimeout() time.Duration {
	return h.writeTimeout
}

// Len returns the number of open sinks
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sinks)
}

// Add registers a sink for future broadcasts
func (h *Hub) Add(s Sink) {
	h.mu.Lock()
	h.sinks[s.ID()] = s
	n := len(h.sinks)
	h.mu.Unlock()

	h.logger.Debug("sink_added",
		zap.String("sink_id", s.ID().String()),
		zap.Int("sinks", n),
	)
}

// Remove drops a sink. It reports whether the sink was registered.
func (h *Hub) Remove(id uuid.UUID) bool {
	h.mu.Lock()
	_, ok := h.sinks[id]
	delete(h.sinks, id)
	n := len(h.sinks)
	h.mu.Unlock()

	if ok {
		h.logger.Debug("sink_removed",
			zap.String("sink_id", id.String()),
			zap.Int("sinks", n),
		)
	}
	return ok
}

// Subscribe sends the hello snapshot to a new sink and then registers it,
// so the first frame a listener sees is always hello.
func (h *Hub) Subscribe(s Sink) error {
	data, err := EncodeEvent(models.NewEvent(models.EventHello, h.source.Snapshot()))
	if err != nil {
		return err
	}
	if err := s.Send(data); err != nil {
		return fmt.Errorf("failed to send hello: %w", err)
	}
	h.Add(s)
	return nil
}

// Broadcast pushes an update snapshot to every open sink. Nothing is computed
// when no sink is open. Sinks that fail to accept the frame are removed.
func (h *Hub) Broadcast(ctx context.Context) {
	sinks := h.openSinks()
	if len(sinks) == 0 {
		return
	}

	data, err := EncodeEvent(models.NewEvent(models.EventUpdate, h.source.Snapshot()))
	if err != nil {
		h.logger.Error("failed_to_encode_update", zap.Error(err))
		return
	}

	for _, s := range sinks {
		if ctx.Err() != nil {
			return
		}
		if err := s.Send(data); err != nil {
			h.drop(s, err)
		}
	}
}

// KeepAlive writes a keep-alive frame to every open sink
func (h *Hub) KeepAlive() {
	for _, s := range h.openSinks() {
		if err := s.KeepAlive(); err != nil {
			h.drop(s, err)
		}
	}
}

// OnChange broadcasts after every poll mutation
func (h *Hub) OnChange(ctx context.Context, _ poll.Change) {
	h.Broadcast(context.WithoutCancel(ctx))
}

// Run drives the periodic broadcast and the keep-alive on two independent
// tickers until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		h.loop(ctx, h.tickInterval, func() { h.Broadcast(ctx) })
	}()
	go func() {
		defer wg.Done()
		h.loop(ctx, h.keepAliveInterval, h.KeepAlive)
	}()
	wg.Wait()
	return ctx.Err()
}

func (h *Hub) loop(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// CloseAll closes and removes every sink
func (h *Hub) CloseAll() {
	h.mu.Lock()
	sinks := h.sinks
	h.sinks = make(map[uuid.UUID]Sink)
	h.mu.Unlock()

	for _, s := range sinks {
		s.Close()
	}
}

func (h *Hub) openSinks() []Sink {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Sink, 0, len(h.sinks))
	for _, s := range h.sinks {
		out = append(out, s)
	}
	return out
}

func (h *Hub) drop(s Sink, err error) {
	if h.Remove(s.ID()) {
		h.logger.Debug("sink_write_failed",
			zap.String("sink_id", s.ID().String()),
			zap.Error(err),
		)
	}
	s.Close()
}

// EncodeEvent serializes an event for the wire
func EncodeEvent(ev models.Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", ev.Type, err)
	}
	return data, nil
}
