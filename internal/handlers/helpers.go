// Package handlers implements the HTTP surface of the poll server.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/benvon/mood-poll/internal/catalog"
	logpkg "github.com/benvon/mood-poll/internal/logger"
	"github.com/benvon/mood-poll/internal/poll"
	"go.uber.org/zap"
)

const maxErrorMessageLength = 200

// okResponse is the body of successful mutations
type okResponse struct {
	OK     bool  `json:"ok"`
	Played *bool `json:"played,omitempty"`
}

// errorResponse is the body of every error response
type errorResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondJSON sends data as the JSON response body
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage keeps client-facing messages short
func sanitizeErrorMessage(message string) string {
	if len(message) > maxErrorMessageLength {
		return strings.ToValidUTF8(message[:maxErrorMessageLength], "") + "..."
	}
	return message
}

// respondJSONError sends an error JSON response. The error field is the
// standard status text.
func respondJSONError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{
		OK:      false,
		Error:   http.StatusText(status),
		Message: sanitizeErrorMessage(message),
	})
}

// respondPollError maps poll and catalog errors to status codes
func respondPollError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var ve *poll.ValidationError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &ve):
		respondJSONError(w, http.StatusBadRequest, ve.Message)
	case errors.As(err, &maxErr):
		respondJSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, catalog.ErrSongNotFound):
		respondJSONError(w, http.StatusNotFound, "Song not found")
	default:
		logger.Error("request_failed",
			zap.String("method", r.Method),
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		respondJSONError(w, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
