// Package client talks to a running poll server over its HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/benvon/mood-poll/internal/models"
)

const (
	// DefaultServerURL is where a locally started server listens
	DefaultServerURL = "http://localhost:3000"

	defaultTimeout = 10 * time.Second
)

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// Health is the /healthz report
type Health struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Songs     *int              `json:"songs,omitempty"`
	Listeners *int              `json:"listeners,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

type toggleResponse struct {
	OK     bool `json:"ok"`
	Played bool `json:"played"`
}

type errorBody struct {
	Message string `json:"message"`
}

// Client is a poll server API client
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the client used for request/response calls
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
		c.streamClient = &http.Client{Transport: hc.Transport}
	}
}

// New creates a client for the server at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		streamClient: &http.Client{}, // streams have no overall timeout
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Meta returns the tags voters can choose from
func (c *Client) Meta(ctx context.Context) (models.Meta, error) {
	var meta models.Meta
	err := c.do(ctx, http.MethodGet, "/meta", nil, &meta)
	return meta, err
}

// Playlist returns the ranked playlist
func (c *Client) Playlist(ctx context.Context) ([]models.RankedSong, error) {
	var playlist []models.RankedSong
	err := c.do(ctx, http.MethodGet, "/playlist", nil, &playlist)
	return playlist, err
}

// Stats returns the current tallies
func (c *Client) Stats(ctx context.Context) (models.PollStats, error) {
	var stats models.PollStats
	err := c.do(ctx, http.MethodGet, "/poll-stats", nil, &stats)
	return stats, err
}

// Vote submits one ballot. Nil lists are sent as empty arrays.
func (c *Client) Vote(ctx context.Context, moods, paces []string) error {
	if moods == nil {
		moods = []string{}
	}
	if paces == nil {
		paces = []string{}
	}
	body := map[string][]string{"moods": moods, "paces": paces}
	return c.do(ctx, http.MethodPost, "/vote", body, nil)
}

// Toggle flips the played flag of a song and returns the new state
func (c *Client) Toggle(ctx context.Context, id string) (bool, error) {
	var resp toggleResponse
	if err := c.do(ctx, http.MethodPost, "/songs/"+url.PathEscape(id)+"/toggle", nil, &resp); err != nil {
		return false, err
	}
	return resp.Played, nil
}

// Reset clears every tally and played flag
func (c *Client) Reset(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/reset", nil, nil)
}

// Health fetches the health report
func (c *Client) Health(ctx context.Context, extended bool) (Health, error) {
	path := "/healthz"
	if extended {
		path += "?mode=extended"
	}
	var h Health
	err := c.do(ctx, http.MethodGet, path, nil, &h)
	return h, err
}

// Events opens the server-sent event stream. The caller must close the
// returned stream.
func (c *Client) Events(ctx context.Context) (*EventStream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/events", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		return nil, apiError(resp)
	}
	return NewEventStream(resp.Body), nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil && eb.Message != "" {
		apiErr.Message = eb.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
