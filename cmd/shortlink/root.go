package main

import (
	"github.com/IgorGrieder/shortlink/internal/config"
	"github.com/spf13/cobra"
)

// loadConfig is swapped in tests.
var loadConfig = config.Load

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shortlink",
		Short:         "Create and share short links through the link backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newCreateCmd(), newLinkCmd(), newServeCmd(), newWatchCmd())
	return rootCmd
}
