package stream

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
)

// WSSink writes events as text messages on a websocket
type WSSink struct {
	id           uuid.UUID
	conn         *websocket.Conn
	ctx          context.Context
	cancel       context.CancelFunc
	writeTimeout time.Duration

	mu        sync.Mutex
	closeOnce sync.Once
}

// NewWSSink wraps an accepted websocket. Incoming messages are discarded;
// the returned sink's Done channel closes when the peer goes away.
func NewWSSink(ctx context.Context, conn *websocket.Conn, writeTimeout time.Duration) *WSSink {
	ctx, cancel := context.WithCancel(conn.CloseRead(ctx))
	return &WSSink{
		id:           uuid.New(),
		conn:         conn,
		ctx:          ctx,
		cancel:       cancel,
		writeTimeout: writeTimeout,
	}
}

func (s *WSSink) ID() uuid.UUID {
	return s.id
}

// Send writes one text message
func (s *WSSink) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.writeContext()
	defer cancel()
	return s.conn.Write(ctx, websocket.MessageText, data)
}

// KeepAlive pings the peer
func (s *WSSink) KeepAlive() error {
	ctx, cancel := s.writeContext()
	defer cancel()
	return s.conn.Ping(ctx)
}

// Close shuts the websocket down
func (s *WSSink) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		_ = s.conn.Close(websocket.StatusGoingAway, "")
	})
}

// Done is closed when the peer disconnects or the sink is closed
func (s *WSSink) Done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *WSSink) writeContext() (context.Context, context.CancelFunc) {
	if s.writeTimeout <= 0 {
		return context.WithCancel(s.ctx)
	}
	return context.WithTimeout(s.ctx, s.writeTimeout)
}
