package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"tuniscraper/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// exit codes
const (
	exitOK          = 0
	exitFatal       = 1
	exitInterrupted = 130
)

// options holds the global flags
type options struct {
	configFile    string
	logLevel      string
	output        string
	maxCategories int
	quiet         bool
	verbose       bool
}

// flagOverrides returns the flags the user actually set, keyed the way
// config.MergeCommandLineFlags expects
func (o *options) flagOverrides(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("output") {
		flags["output"] = o.output
	}
	if cmd.Flags().Changed("log-level") {
		flags["log-level"] = o.logLevel
	}
	if cmd.Flags().Changed("max-categories") {
		flags["max-categories"] = o.maxCategories
	}
	return flags
}

// newRootCmd builds the command tree. Running the root command without
// arguments scrapes the catalog.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "tuniscraper",
		Short: "Download catalog images and metadata into a spreadsheet",
		Long: `tuniscraper walks the chip-tuning catalog of tunisport.es, saves every
item image to <output>/<category>/<item>.<ext> and writes one row per item to
<output>/output.xlsx.

Run it again after an interruption: categories that are already in the
workbook are skipped and the interrupted one starts over from its first item.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (TUNISCRAPER_*, also read from .env)
  - Configuration file (.tuniscraper.yaml)
  - Default values (lowest priority)`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, opts)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default is ./.tuniscraper.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory for images and the workbook")
	rootCmd.Flags().IntVar(&opts.maxCategories, "max-categories", 0, "stop after this many categories (0 = all)")
	rootCmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "no progress bar and no console logs")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "console logs instead of the progress bar")

	rootCmd.SetVersionTemplate(`tuniscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(newConfigCmd(opts))
	return rootCmd
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	return execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		ui.PrintWarning(stderr, "Interrupted. Run again to resume.")
		return exitInterrupted
	default:
		ui.PrintError(stderr, "Fatal error", err)
		return exitFatal
	}
}
