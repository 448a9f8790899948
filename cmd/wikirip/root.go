package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for wikirip.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikirip",
		Short: "Mirror a wiki-style website to the local filesystem",
		Long: `wikirip downloads every page reachable from a starting page through
site-relative links, then every image those pages reference.

Pages are saved under the output directory at a path equal to their URL
suffix, so /wiki/Main_Page becomes ripped/wiki/Main_Page.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write log lines as JSON")

	cmd.AddCommand(NewRipCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
