package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/outlet/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┬ ┬┌┬┐┬  ┌─┐┌┬┐
  │ ││ │ │ │  ├┤  │
  └─┘└─┘ ┴ ┴─┘└─┘ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "outlet",
		Short: "Inspect, lint, and publish navigation route tables",
		Long: `Outlet is a tooling CLI for hierarchical navigation trees.

It works on path templates and manifest files:

  • Score and rank templates the way the matcher ranks them
  • Try a path against a template and see the captured params
  • Build concrete paths from templates and params
  • Lint manifests for shadowed routes
  • Export and publish manifests
  • Serve a live inspector for a manifest`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		scoreCmd(),
		matchCmd(),
		buildCmd(),
		lintCmd(),
		exportCmd(),
		inspectCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// printBanner prints the outlet ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
