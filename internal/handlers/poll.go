package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/benvon/mood-poll/internal/models"
	"github.com/benvon/mood-poll/internal/poll"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// PollService is the poll state the handlers read and mutate
type PollService interface {
	Meta() models.Meta
	Playlist() []models.RankedSong
	Stats() models.PollStats
	Vote(ctx context.Context, b poll.Ballot) error
	Toggle(ctx context.Context, id string) (bool, error)
	Reset(ctx context.Context)
}

// PollHandler handles voting and playlist requests
type PollHandler struct {
	poll   PollService
	logger *zap.Logger
}

// NewPollHandler creates a new poll handler
func NewPollHandler(p PollService, logger *zap.Logger) *PollHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PollHandler{poll: p, logger: logger}
}

// RegisterRoutes registers poll routes on the given router
func (h *PollHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/meta", h.GetMeta).Methods("GET")
	r.HandleFunc("/playlist", h.GetPlaylist).Methods("GET")
	r.HandleFunc("/poll-stats", h.GetStats).Methods("GET")
	r.HandleFunc("/reset", h.Reset).Methods("POST")
	r.HandleFunc("/songs/{id}/toggle", h.ToggleSong).Methods("POST")
}

// RegisterVoteRoute registers the vote route. It is separate so callers can
// put a rate limiter in front of it.
func (h *PollHandler) RegisterVoteRoute(r *mux.Router) {
	r.HandleFunc("/vote", h.Vote).Methods("POST")
}

// GetMeta returns the mood and pace tags the catalog offers
func (h *PollHandler) GetMeta(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.poll.Meta())
}

// GetPlaylist returns the ranked playlist
func (h *PollHandler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.poll.Playlist())
}

// GetStats returns the current tallies
func (h *PollHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.poll.Stats())
}

// Vote records one ballot
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		respondPollError(w, r, h.logger, err)
		return
	}

	ballot, err := poll.DecodeBallot(data)
	if err != nil {
		respondPollError(w, r, h.logger, err)
		return
	}

	if err := h.poll.Vote(r.Context(), ballot); err != nil {
		respondPollError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, okResponse{OK: true})
}

// ToggleSong flips the played flag of one song
func (h *PollHandler) ToggleSong(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	played, err := h.poll.Toggle(r.Context(), id)
	if err != nil {
		respondPollError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, okResponse{OK: true, Played: &played})
}

// Reset clears every tally and played flag
func (h *PollHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.poll.Reset(r.Context())
	respondJSON(w, http.StatusOK, okResponse{OK: true})
}
