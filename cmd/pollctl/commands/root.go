// Package commands implements the pollctl command tree.
package commands

import (
	"fmt"
	"os"

	"github.com/benvon/mood-poll/internal/client"
	"github.com/benvon/mood-poll/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serverEnv = "POLL_SERVER"

// NewRootCmd creates the pollctl root command with every subcommand attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pollctl",
		Short:         "Operator tool for the mood poll server",
		Long:          "CLI tool for validating song catalogs and driving or watching a running poll server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("log-format", logger.FormatConsole, "Log format (json or console)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(NewCatalogCmd())
	rootCmd.AddCommand(NewVoteCmd())
	rootCmd.AddCommand(NewToggleCmd())
	rootCmd.AddCommand(NewResetCmd())
	rootCmd.AddCommand(NewPlaylistCmd())
	rootCmd.AddCommand(NewHealthCmd())
	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewActivityCmd())

	return rootCmd
}

// addServerFlag registers --server, defaulting to $POLL_SERVER
func addServerFlag(cmd *cobra.Command, server *string) {
	def := os.Getenv(serverEnv)
	if def == "" {
		def = client.DefaultServerURL
	}
	cmd.Flags().StringVar(server, "server", def, "Poll server base URL (env "+serverEnv+")")
}

func newClient(server string) (*client.Client, error) {
	c, err := client.New(server)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}

// commandLogger builds a logger from the persistent flags
func commandLogger(cmd *cobra.Command) (*zap.Logger, error) {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return nil, err
	}
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return nil, err
	}
	return logger.New(format, debug)
}
