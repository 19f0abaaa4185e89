// Package ranking orders the catalog by aggregate vote score.
package ranking

import (
	"sort"

	"github.com/benvon/mood-poll/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Score sums the counts of every mood and pace listed on the song.
// Tags without votes count as zero.
func Score(song models.Song, moods, paces models.TagCounts) int {
	score := 0
	for _, m := range song.Moods {
		score += moods[m]
	}
	for _, p := range song.Paces {
		score += paces[p]
	}
	return score
}

// Rank scores every song and returns them ordered: unplayed before played,
// then by descending score, then by name ascending using root-locale collation.
// Names that collate equal fall back to byte order and finally id, so the
// result is deterministic for identical input.
func Rank(songs []models.Song, moods, paces models.TagCounts) []models.RankedSong {
	ranked := make([]models.RankedSong, len(songs))
	for i, s := range songs {
		ranked[i] = models.RankedSong{
			Song:  s.Clone(),
			Score: Score(s, moods, paces),
		}
	}

	// Collators keep internal buffers, so each pass gets its own.
	col := collate.New(language.Und)

	sort.SliceStable(ranked, func(i, j int) bool {
		return less(col, ranked[i], ranked[j])
	})
	return ranked
}

func less(col *collate.Collator, a, b models.RankedSong) bool {
	if a.Played != b.Played {
		return !a.Played
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if c := col.CompareString(a.Name, b.Name); c != 0 {
		return c < 0
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}
