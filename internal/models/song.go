package models

import "encoding/json"

// Song represents a catalog entry that can be voted up through its tags
type Song struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Moods  []string `json:"moods" yaml:"moods"`
	Paces  []string `json:"paces" yaml:"paces"`
	Played bool     `json:"played" yaml:"played"`
}

// MarshalJSON encodes missing tag lists as empty arrays rather than null
func (s Song) MarshalJSON() ([]byte, error) {
	type plain Song
	p := plain(s)
	if p.Moods == nil {
		p.Moods = []string{}
	}
	if p.Paces == nil {
		p.Paces = []string{}
	}
	return json.Marshal(p)
}

// Clone returns a copy of the song that shares no slices with the original
func (s Song) Clone() Song {
	c := s
	c.Moods = append([]string(nil), s.Moods...)
	c.Paces = append([]string(nil), s.Paces...)
	return c
}

// RankedSong is a song together with its score for one ranking pass.
// It is produced fresh on every ranking and never stored.
type RankedSong struct {
	Song
	Score int `json:"score"`
}

// MarshalJSON flattens the embedded song next to the score
func (r RankedSong) MarshalJSON() ([]byte, error) {
	type ranked struct {
		ID     string   `json:"id"`
		Name   string   `json:"name"`
		Moods  []string `json:"moods"`
		Paces  []string `json:"paces"`
		Played bool     `json:"played"`
		Score  int      `json:"score"`
	}
	out := ranked{
		ID:     r.ID,
		Name:   r.Name,
		Moods:  r.Moods,
		Paces:  r.Paces,
		Played: r.Played,
		Score:  r.Score,
	}
	if out.Moods == nil {
		out.Moods = []string{}
	}
	if out.Paces == nil {
		out.Paces = []string{}
	}
	return json.Marshal(out)
}
