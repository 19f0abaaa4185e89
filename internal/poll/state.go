// Package poll owns the vote tallies and the catalog, and notifies observers
// after every mutation.
package poll

import (
	"context"
	"fmt"
	"sync"

	"github.com/benvon/mood-poll/internal/catalog"
	logpkg "github.com/benvon/mood-poll/internal/logger"
	"github.com/benvon/mood-poll/internal/models"
	"github.com/benvon/mood-poll/internal/ranking"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/benvon/mood-poll/internal/poll"

// ChangeKind identifies the mutation that produced a Change
type ChangeKind string

const (
	ChangeVote   ChangeKind = "vote"
	ChangeToggle ChangeKind = "toggle"
	ChangeReset  ChangeKind = "reset"
)

// Change describes a completed mutation
type Change struct {
	Kind   ChangeKind
	Ballot Ballot // set for votes
	SongID string // set for toggles
	Played bool   // new played state for toggles
}

// Observer is notified after a mutation has been fully applied
type Observer interface {
	OnChange(ctx context.Context, change Change)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ctx context.Context, change Change)

// OnChange calls f
func (f ObserverFunc) OnChange(ctx context.Context, change Change) { f(ctx, change) }

// State is the application state shared by all handlers. It is safe for
// concurrent use; every mutation is applied atomically before observers run.
type State struct {
	mu      sync.RWMutex
	catalog *catalog.Catalog
	moods   models.TagCounts
	paces   models.TagCounts

	obsMu     sync.RWMutex
	observers []Observer

	strictBallots bool

	logger *zap.Logger
	tracer trace.Tracer
}

// Option configures a State
type Option func(*State)

// WithObserver registers an observer at construction time
func WithObserver(o Observer) Option {
	return func(s *State) {
		s.observers = append(s.observers, o)
	}
}

// WithTracer overrides the tracer used for mutation spans
func WithTracer(t trace.Tracer) Option {
	return func(s *State) {
		s.tracer = t
	}
}

// WithStrictBallots rejects ballots that exceed the Ballot.Validate bounds
func WithStrictBallots(strict bool) Option {
	return func(s *State) {
		s.strictBallots = strict
	}
}

// NewState creates the application state around a loaded catalog
func NewState(c *catalog.Catalog, logger *zap.Logger, opts ...Option) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &State{
		catalog: c,
		moods:   models.TagCounts{},
		paces:   models.TagCounts{},
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddObserver registers an observer for future mutations
func (s *State) AddObserver(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, o)
}

// Meta returns the tags voters can choose from
func (s *State) Meta() models.Meta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Meta()
}

// SongCount returns the catalog size
func (s *State) SongCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Len()
}

// Stats returns a copy of the current tallies
func (s *State) Stats() models.PollStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.PollStats{
		MoodCounts: s.moods.Clone(),
		PaceCounts: s.paces.Clone(),
	}
}

// Playlist ranks the catalog against the current tallies
func (s *State) Playlist() []models.RankedSong {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ranking.Rank(s.catalog.Songs(), s.moods, s.paces)
}

// Snapshot assembles tallies and ranking from one consistent view of the state
func (s *State) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Snapshot{
		MoodCounts: s.moods.Clone(),
		PaceCounts: s.paces.Clone(),
		Playlist:   ranking.Rank(s.catalog.Songs(), s.moods, s.paces),
	}
}

// Vote records a ballot. With strict ballots enabled, ballots outside the
// bounds are rejected without any change.
func (s *State) Vote(ctx context.Context, b Ballot) error {
	ctx, span := s.tracer.Start(ctx, "poll.Vote", trace.WithAttributes(
		attribute.Int("poll.moods", len(b.Moods)),
		attribute.Int("poll.paces", len(b.Paces)),
	))
	defer span.End()

	if s.strictBallots {
		if err := b.Validate(); err != nil {
			span.SetStatus(codes.Error, "invalid ballot")
			return err
		}
	}

	b = Ballot{
		Moods: append([]string(nil), b.Moods...),
		Paces: append([]string(nil), b.Paces...),
	}

	s.mu.Lock()
	for _, m := range b.Moods {
		s.moods[m]++
	}
	for _, p := range b.Paces {
		s.paces[p]++
	}
	s.mu.Unlock()

	s.logger.Debug("vote_recorded",
		zap.Strings("moods", logpkg.SanitizeTags(b.Moods)),
		zap.Strings("paces", logpkg.SanitizeTags(b.Paces)),
	)

	s.notify(ctx, Change{Kind: ChangeVote, Ballot: b})
	return nil
}

// Toggle flips the played flag of a song and returns the new state
func (s *State) Toggle(ctx context.Context, id string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "poll.Toggle", trace.WithAttributes(
		attribute.String("poll.song_id", id),
	))
	defer span.End()

	s.mu.Lock()
	played, err := s.catalog.Toggle(id)
	s.mu.Unlock()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("toggle %q: %w", id, err)
	}

	span.SetAttributes(attribute.Bool("poll.played", played))
	s.logger.Debug("song_toggled",
		zap.String("song_id", id),
		zap.Bool("played", played),
	)

	s.notify(ctx, Change{Kind: ChangeToggle, SongID: id, Played: played})
	return played, nil
}

// Reset zeroes every tally and clears every played flag. Seen tags stay
// present with a count of zero.
func (s *State) Reset(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "poll.Reset")
	defer span.End()

	s.mu.Lock()
	for k := range s.moods {
		s.moods[k] = 0
	}
	for k := range s.paces {
		s.paces[k] = 0
	}
	s.catalog.ResetPlayed()
	s.mu.Unlock()

	s.logger.Info("poll_reset")

	s.notify(ctx, Change{Kind: ChangeReset})
}

func (s *State) notify(ctx context.Context, change Change) {
	s.obsMu.RLock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.obsMu.RUnlock()

	for _, o := range observers {
		o.OnChange(ctx, change)
	}
}
