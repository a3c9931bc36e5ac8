// Package main provides the entry point for the histfang CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/histfang/cmd/histfang/commands"
	"github.com/Sumatoshi-tech/histfang/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "histfang",
		Short: "Histfang - histogram comparison and uncertainty propagation",
		Long: `Histfang compares binned histograms and propagates their
uncertainties, rendering the results as HTML pages.

Commands:
  demo      Generate synthetic datasets and render example pages`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewDemoCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "histfang %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
