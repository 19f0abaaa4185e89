package catalog

import (
	"errors"
	"sort"

	"github.com/benvon/mood-poll/internal/models"
)

// ErrSongNotFound is returned when an id does not match any catalog entry
var ErrSongNotFound = errors.New("song not found")

// Catalog holds the fixed song list. The played flag is the only mutable field.
// A Catalog is not safe for concurrent use; poll.State serializes access to it.
type Catalog struct {
	songs []models.Song
	index map[string]int
}

// New creates a catalog from songs. Songs are copied; ids must already be unique
// (Load and Parse enforce this).
func New(songs []models.Song) *Catalog {
	c := &Catalog{
		songs: make([]models.Song, len(songs)),
		index: make(map[string]int, len(songs)),
	}
	for i, s := range songs {
		c.songs[i] = s.Clone()
		c.index[s.ID] = i
	}
	return c
}

// Len returns the number of songs in the catalog
func (c *Catalog) Len() int {
	return len(c.songs)
}

// Songs returns a copy of every song in catalog order
func (c *Catalog) Songs() []models.Song {
	out := make([]models.Song, len(c.songs))
	for i, s := range c.songs {
		out[i] = s.Clone()
	}
	return out
}

// Get returns a copy of the song with the given id
func (c *Catalog) Get(id string) (models.Song, error) {
	i, ok := c.index[id]
	if !ok {
		return models.Song{}, ErrSongNotFound
	}
	return c.songs[i].Clone(), nil
}

// Toggle flips the played flag of a song and returns the new state
func (c *Catalog) Toggle(id string) (bool, error) {
	i, ok := c.index[id]
	if !ok {
		return false, ErrSongNotFound
	}
	c.songs[i].Played = !c.songs[i].Played
	return c.songs[i].Played, nil
}

// ResetPlayed clears the played flag on every song
func (c *Catalog) ResetPlayed() {
	for i := range c.songs {
		c.songs[i].Played = false
	}
}

// Meta returns the sorted distinct mood and pace tags across all songs
func (c *Catalog) Meta() models.Meta {
	moods := make(map[string]struct{})
	paces := make(map[string]struct{})
	for _, s := range c.songs {
		for _, m := range s.Moods {
			moods[m] = struct{}{}
		}
		for _, p := range s.Paces {
			paces[p] = struct{}{}
		}
	}
	return models.Meta{
		Moods: sortedKeys(moods),
		Paces: sortedKeys(paces),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
