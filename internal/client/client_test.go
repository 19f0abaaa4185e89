package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL + "/")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "default", url: ""},
		{name: "http", url: "http://localhost:3000"},
		{name: "https with slash", url: "https://poll.example.com/"},
		{name: "bad scheme", url: "ftp://poll.example.com", wantErr: true},
		{name: "unparseable", url: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestClient_Vote(t *testing.T) {
	t.Parallel()

	var got map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/vote" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode body: %v", err)
		}
		_, _ = io.WriteString(w, `{"ok":true}`)
	})

	if err := c.Vote(context.Background(), []string{"happy"}, nil); err != nil {
		t.Fatalf("Vote returned error: %v", err)
	}
	if len(got["moods"]) != 1 || got["moods"][0] != "happy" {
		t.Errorf("Expected moods [happy], got %v", got["moods"])
	}
	if got["paces"] == nil || len(got["paces"]) != 0 {
		t.Errorf("Expected empty paces array, got %v", got["paces"])
	}
}

func TestClient_ReadEndpoints(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/meta":
			_, _ = io.WriteString(w, `{"moods":["happy"],"paces":["fast"]}`)
		case "/playlist":
			_, _ = io.WriteString(w, `[{"id":"a","name":"Alpha","moods":["happy"],"paces":[],"played":false,"score":3}]`)
		case "/poll-stats":
			_, _ = io.WriteString(w, `{"moodCounts":{"happy":3},"paceCounts":{}}`)
		case "/healthz":
			if r.URL.Query().Get("mode") != "extended" {
				t.Errorf("Expected extended mode query")
			}
			_, _ = io.WriteString(w, `{"status":"healthy","timestamp":"2026-01-01T00:00:00Z","songs":1,"listeners":0,"checks":{"catalog":"healthy"}}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	meta, err := c.Meta(ctx)
	if err != nil || len(meta.Moods) != 1 || meta.Paces[0] != "fast" {
		t.Errorf("Meta() = %+v, %v", meta, err)
	}

	playlist, err := c.Playlist(ctx)
	if err != nil || len(playlist) != 1 || playlist[0].Name != "Alpha" || playlist[0].Score != 3 {
		t.Errorf("Playlist() = %+v, %v", playlist, err)
	}

	stats, err := c.Stats(ctx)
	if err != nil || stats.MoodCounts["happy"] != 3 {
		t.Errorf("Stats() = %+v, %v", stats, err)
	}

	health, err := c.Health(ctx, true)
	if err != nil || health.Status != "healthy" || health.Songs == nil || *health.Songs != 1 {
		t.Errorf("Health() = %+v, %v", health, err)
	}
}

func TestClient_Toggle(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.EscapedPath() {
		case "/songs/a%2Fb/toggle":
			_, _ = io.WriteString(w, `{"ok":true,"played":true}`)
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"ok":false,"error":"Not Found","message":"Song not found"}`)
		}
	})

	played, err := c.Toggle(context.Background(), "a/b")
	if err != nil || !played {
		t.Errorf("Toggle() = %v, %v; want true, nil", played, err)
	}

	_, err = c.Toggle(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "Song not found" {
		t.Errorf("Unexpected APIError %+v", apiErr)
	}
}

func TestClient_ErrorWithoutJSONBody(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	err := c.Reset(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Message != "upstream exploded" {
		t.Errorf("Expected raw body as message, got %q", apiErr.Message)
	}
	if !strings.Contains(apiErr.Error(), "502") {
		t.Errorf("Expected status in error string, got %q", apiErr.Error())
	}
}

func TestClient_Events(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		_, _ = fmt.Fprint(w, "data: {\"type\":\"hello\",\"moodCounts\":{},\"paceCounts\":{},\"playlist\":[]}\n\n")
		flusher.Flush()
		_, _ = fmt.Fprint(w, ":keep-alive\n\n")
		_, _ = fmt.Fprint(w, "data: {\"type\":\"update\",\"moodCounts\":{\"happy\":1},\"paceCounts\":{},\"playlist\":[]}\n\n")
		flusher.Flush()
	})

	stream, err := c.Events(context.Background())
	if err != nil {
		t.Fatalf("Events returned error: %v", err)
	}
	defer func() { _ = stream.Close() }()

	hello, err := stream.Next()
	if err != nil || hello.Type != "hello" {
		t.Fatalf("first event = %+v, %v", hello, err)
	}
	update, err := stream.Next()
	if err != nil || update.Type != "update" || update.MoodCounts["happy"] != 1 {
		t.Fatalf("second event = %+v, %v", update, err)
	}
	if _, err := stream.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF at end of stream, got %v", err)
	}
}
