package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/benvon/mood-poll/internal/models"
	"github.com/spf13/cobra"
)

// NewPlaylistCmd creates the playlist command
func NewPlaylistCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Print the ranked playlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(server)
			if err != nil {
				return err
			}
			playlist, err := c.Playlist(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get playlist: %w", err)
			}
			printPlaylist(cmd.OutOrStdout(), playlist)
			return nil
		},
	}

	addServerFlag(cmd, &server)
	return cmd
}

// NewHealthCmd creates the health command
func NewHealthCmd() *cobra.Command {
	var server string
	var extended bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Print the server health report",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(server)
			if err != nil {
				return err
			}
			h, err := c.Health(cmd.Context(), extended)
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status: %s\n", h.Status)
			if h.Songs != nil {
				fmt.Fprintf(out, "Songs: %d\n", *h.Songs)
			}
			if h.Listeners != nil {
				fmt.Fprintf(out, "Listeners: %d\n", *h.Listeners)
			}
			names := make([]string, 0, len(h.Checks))
			for name := range h.Checks {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "  %s: %s\n", name, h.Checks[name])
			}
			return nil
		},
	}

	addServerFlag(cmd, &server)
	cmd.Flags().BoolVar(&extended, "extended", false, "Include dependency checks")
	return cmd
}

func printPlaylist(out io.Writer, playlist []models.RankedSong) {
	if len(playlist) == 0 {
		fmt.Fprintln(out, "Playlist is empty")
		return
	}
	for i, s := range playlist {
		marker := " "
		if s.Played {
			marker = "✓"
		}
		fmt.Fprintf(out, "%3d. [%s] %-40s %4d  %s\n", i+1, marker, s.Name, s.Score, tagSummary(s.Song))
	}
}

func tagSummary(s models.Song) string {
	tags := append(append([]string(nil), s.Moods...), s.Paces...)
	return strings.Join(tags, ", ")
}
