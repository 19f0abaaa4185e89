package stream

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

var keepAliveFrame = []byte(":keep-alive\n\n")

// SSESink writes events to a text/event-stream response
type SSESink struct {
	id           uuid.UUID
	w            http.ResponseWriter
	flusher      http.Flusher
	rc           *http.ResponseController
	writeTimeout time.Duration

	mu        sync.Mutex
	closed    bool
	done      chan struct{}
	closeOnce sync.Once
}

// ErrStreamingUnsupported is returned when the response cannot be flushed
var ErrStreamingUnsupported = errors.New("streaming unsupported")

// NewSSESink wraps w. The writer must support flushing.
func NewSSESink(w http.ResponseWriter, writeTimeout time.Duration) (*SSESink, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	return &SSESink{
		id:           uuid.New(),
		w:            w,
		flusher:      flusher,
		rc:           http.NewResponseController(w),
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}, nil
}

// WriteHeaders sends the event-stream response headers
func (s *SSESink) WriteHeaders() {
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.extendDeadline()
	s.w.WriteHeader(http.StatusOK)
	s.flusher.Flush()
}

func (s *SSESink) ID() uuid.UUID {
	return s.id
}

// Send writes one data frame
func (s *SSESink) Send(data []byte) error {
	return s.write(func() error {
		_, err := fmt.Fprintf(s.w, "data: %s\n\n", data)
		return err
	})
}

// KeepAlive writes an SSE comment line
func (s *SSESink) KeepAlive() error {
	return s.write(func() error {
		_, err := s.w.Write(keepAliveFrame)
		return err
	})
}

// Close marks the sink closed and releases anyone waiting on Done
func (s *SSESink) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
	})
}

// Done is closed once the sink has been closed
func (s *SSESink) Done() <-chan struct{} {
	return s.done
}

func (s *SSESink) write(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	s.extendDeadline()
	if err := fn(); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// extendDeadline moves the connection write deadline past the next frame.
// Writers that do not support deadlines are left as they are.
func (s *SSESink) extendDeadline() {
	if s.writeTimeout <= 0 {
		return
	}
	_ = s.rc.SetWriteDeadline(time.Now().Add(s.writeTimeout))
}
