package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVoteCmd creates the vote command
func NewVoteCmd() *cobra.Command {
	var server string
	var moods, paces []string

	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Submit a ballot",
		Long:  "Submit one ballot. --mood and --pace may be repeated or comma-separated.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(server)
			if err != nil {
				return err
			}
			if err := c.Vote(cmd.Context(), moods, paces); err != nil {
				return fmt.Errorf("failed to vote: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Vote recorded")
			return nil
		},
	}

	addServerFlag(cmd, &server)
	cmd.Flags().StringSliceVar(&moods, "mood", nil, "Mood tag to vote for")
	cmd.Flags().StringSliceVar(&paces, "pace", nil, "Pace tag to vote for")

	return cmd
}

// NewToggleCmd creates the toggle command
func NewToggleCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "toggle <song-id>",
		Short: "Flip the played flag of a song",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(server)
			if err != nil {
				return err
			}
			played, err := c.Toggle(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to toggle %s: %w", args[0], err)
			}
			state := "unplayed"
			if played {
				state = "played"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is now %s\n", args[0], state)
			return nil
		},
	}

	addServerFlag(cmd, &server)
	return cmd
}

// NewResetCmd creates the reset command
func NewResetCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear every tally and played flag",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(server)
			if err != nil {
				return err
			}
			if err := c.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("failed to reset: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Poll reset")
			return nil
		},
	}

	addServerFlag(cmd, &server)
	return cmd
}
