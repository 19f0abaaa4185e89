package commands

import (
	"fmt"
	"strings"

	"github.com/benvon/mood-poll/internal/catalog"
	"github.com/spf13/cobra"
)

// NewCatalogCmd creates the catalog command with validate and meta subcommands
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect song catalog files",
		Long:  "Validate a JSON or YAML song catalog with the same loader the server uses.",
	}
	cmd.AddCommand(newCatalogValidateCmd())
	cmd.AddCommand(newCatalogMetaCmd())
	return cmd
}

func newCatalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a catalog file loads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(args[0])
			if err != nil {
				return fmt.Errorf("invalid catalog: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d songs\n", args[0], c.Len())
			return nil
		},
	}
}

func newCatalogMetaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "meta <file>",
		Short: "List the mood and pace tags a catalog offers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(args[0])
			if err != nil {
				return fmt.Errorf("invalid catalog: %w", err)
			}
			meta := c.Meta()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Moods: %s\n", strings.Join(meta.Moods, ", "))
			fmt.Fprintf(out, "Paces: %s\n", strings.Join(meta.Paces, ", "))
			return nil
		},
	}
}
