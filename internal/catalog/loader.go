package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benvon/mood-poll/internal/models"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a catalog file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the catalog format from a file extension.
// Unknown extensions are treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and validates a catalog file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	c, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a list of songs and validates it
func Parse(data []byte, format Format) (*Catalog, error) {
	var songs []models.Song

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &songs); err != nil {
			return nil, fmt.Errorf("invalid YAML catalog: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &songs); err != nil {
			return nil, fmt.Errorf("invalid JSON catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", format)
	}

	seen := make(map[string]struct{}, len(songs))
	for i := range songs {
		s := &songs[i]
		s.ID = strings.TrimSpace(s.ID)
		s.Name = strings.TrimSpace(s.Name)

		if s.ID == "" {
			return nil, fmt.Errorf("song at position %d has an empty id", i)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("duplicate song id %q", s.ID)
		}
		seen[s.ID] = struct{}{}

		if s.Name == "" {
			return nil, fmt.Errorf("song %q has an empty name", s.ID)
		}

		s.Moods = cleanTags(s.Moods)
		s.Paces = cleanTags(s.Paces)
	}

	return New(songs), nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
