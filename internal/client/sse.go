package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/benvon/mood-poll/internal/models"
)

const maxEventSize = 4 << 20

// EventStream decodes snapshot events from a server-sent event body.
// Comment lines such as keep-alives are skipped.
type EventStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

// NewEventStream reads events from body
func NewEventStream(body io.ReadCloser) *EventStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64<<10), maxEventSize)
	return &EventStream{body: body, scanner: scanner}
}

// Next blocks until the next event arrives. It returns io.EOF when the
// server ends the stream.
func (s *EventStream) Next() (models.Event, error) {
	var data []string
	for s.scanner.Scan() {
		line := strings.TrimSuffix(s.scanner.Text(), "\r")
		switch {
		case line == "":
			if len(data) == 0 {
				continue
			}
			var ev models.Event
			if err := json.Unmarshal([]byte(strings.Join(data, "\n")), &ev); err != nil {
				return models.Event{}, fmt.Errorf("decode event: %w", err)
			}
			return ev, nil
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := s.scanner.Err(); err != nil {
		return models.Event{}, err
	}
	return models.Event{}, io.EOF
}

// Close ends the stream
func (s *EventStream) Close() error {
	return s.body.Close()
}
