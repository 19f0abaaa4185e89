package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/benvon/mood-poll/internal/models"
	"github.com/spf13/cobra"
)

const watchTopSongs = 3

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	var server string
	var count int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow live playlist updates",
		Long:  "Stream /events and print each event with the top songs. Stops after --count events when set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(server)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			events, err := c.Events(ctx)
			if err != nil {
				return fmt.Errorf("failed to open event stream: %w", err)
			}
			defer func() { _ = events.Close() }()

			out := cmd.OutOrStdout()
			for seen := 0; count <= 0 || seen < count; seen++ {
				ev, err := events.Next()
				if err != nil {
					if errors.Is(err, io.EOF) || ctx.Err() != nil {
						return nil
					}
					return fmt.Errorf("failed to read event: %w", err)
				}
				fmt.Fprintln(out, formatEvent(ev))
			}
			return nil
		},
	}

	addServerFlag(cmd, &server)
	cmd.Flags().IntVar(&count, "count", 0, "Stop after this many events (0 = until interrupted)")
	return cmd
}

func formatEvent(ev models.Event) string {
	top := make([]string, 0, watchTopSongs)
	for _, s := range ev.Playlist {
		if len(top) == watchTopSongs {
			break
		}
		top = append(top, fmt.Sprintf("%s (%d)", s.Name, s.Score))
	}
	if len(top) == 0 {
		return fmt.Sprintf("%-6s no songs", ev.Type)
	}
	return fmt.Sprintf("%-6s %s", ev.Type, strings.Join(top, ", "))
}
