package models

// TagCounts maps a tag to the number of votes it received
type TagCounts map[string]int

// Clone returns an independent copy of the counts
func (c TagCounts) Clone() TagCounts {
	out := make(TagCounts, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// PollStats is the vote tally returned by /poll-stats
type PollStats struct {
	MoodCounts TagCounts `json:"moodCounts"`
	PaceCounts TagCounts `json:"paceCounts"`
}

// Meta lists the distinct tags a voter can choose from
type Meta struct {
	Moods []string `json:"moods"`
	Paces []string `json:"paces"`
}

// Snapshot is a read-only view of the full poll state
type Snapshot struct {
	MoodCounts TagCounts    `json:"moodCounts"`
	PaceCounts TagCounts    `json:"paceCounts"`
	Playlist   []RankedSong `json:"playlist"`
}
