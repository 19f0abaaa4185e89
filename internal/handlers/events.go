package handlers

import (
	"net/http"
	"net/url"
	"strings"

	logpkg "github.com/benvon/mood-poll/internal/logger"
	"github.com/benvon/mood-poll/internal/stream"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// EventsHandler serves the live snapshot streams
type EventsHandler struct {
	hub            *stream.Hub
	logger         *zap.Logger
	originPatterns []string
}

// NewEventsHandler creates a stream handler. allowedOrigins are the CORS
// origins; websocket upgrades from other origins are refused.
func NewEventsHandler(hub *stream.Hub, logger *zap.Logger, allowedOrigins []string) *EventsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsHandler{
		hub:            hub,
		logger:         logger,
		originPatterns: originPatterns(allowedOrigins),
	}
}

// RegisterRoutes registers stream routes on the given router
func (h *EventsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/events", h.Stream).Methods("GET")
	r.HandleFunc("/ws", h.Socket).Methods("GET")
}

// Stream serves snapshots as server-sent events until the client leaves
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sink, err := stream.NewSSESink(w, h.hub.WriteTimeout())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}
	// Closing waits for an in-flight write and turns later sends into errors,
	// so nothing touches w once Stream returns.
	defer sink.Close()

	sink.WriteHeaders()
	if err := h.hub.Subscribe(sink); err != nil {
		h.logger.Debug("stream_subscribe_failed", zap.Error(err))
		return
	}
	defer h.hub.Remove(sink.ID())

	h.logger.Debug("stream_opened",
		zap.String("sink_id", sink.ID().String()),
		zap.String("transport", "sse"),
	)

	select {
	case <-r.Context().Done():
	case <-sink.Done():
	}

	h.logger.Debug("stream_closed", zap.String("sink_id", sink.ID().String()))
}

// Socket serves snapshots as websocket text messages until the client leaves
func (h *EventsHandler) Socket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.logger.Warn("websocket_accept_failed",
			zap.String("origin", logpkg.SanitizeString(r.Header.Get("Origin"), logpkg.MaxGeneralStringLength)),
			zap.Error(err),
		)
		return
	}

	sink := stream.NewWSSink(r.Context(), conn, h.hub.WriteTimeout())
	defer sink.Close()

	if err := h.hub.Subscribe(sink); err != nil {
		h.logger.Debug("stream_subscribe_failed", zap.Error(err))
		return
	}
	defer h.hub.Remove(sink.ID())

	h.logger.Debug("stream_opened",
		zap.String("sink_id", sink.ID().String()),
		zap.String("transport", "websocket"),
	)

	<-sink.Done()

	h.logger.Debug("stream_closed", zap.String("sink_id", sink.ID().String()))
}

// originPatterns turns CORS origins into the host patterns the websocket
// library matches against
func originPatterns(origins []string) []string {
	var patterns []string
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, origin)
	}
	return patterns
}
