// Package cli holds the plumbing shared by the igfollow and igdiff commands:
// output flags, signal handling and error reporting.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	errs "igfollowers/pkg/errors"
	"igfollowers/pkg/ui"
)

// QuietLogLevel is used for console logs unless --verbose or --log-level is given,
// so the progress display is not interleaved with info lines
const QuietLogLevel = "warn"

// OutputFlags are the presentation flags both commands share
type OutputFlags struct {
	ConfigFile string
	LogLevel   string
	NoColor    bool
	Quiet      bool
	Verbose    bool
}

// Register adds the shared flags to cmd
func (o *OutputFlags) Register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.ConfigFile, "config", "c", "", "config file (default is ./.igfollow.yaml or ~/.config/igfollow/config.yaml)")
	flags.StringVar(&o.LogLevel, "log-level", "info", "log level (debug, info, warn, error, disabled)")
	flags.BoolVar(&o.NoColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&o.Quiet, "quiet", "q", false, "suppress all output except errors")
	flags.BoolVarP(&o.Verbose, "verbose", "v", false, "show info log lines alongside the progress display")
}

// Apply configures the ui package and returns the log level to force, or ""
// to keep the configured one
func (o *OutputFlags) Apply(cmd *cobra.Command) string {
	ui.SetColor(!o.NoColor && ui.DetectColor(os.Stderr))
	ui.SetQuietMode(o.Quiet)

	switch {
	case cmd.Flags().Changed("log-level"):
		return o.LogLevel
	case o.Quiet:
		return "error"
	case o.Verbose:
		return ""
	default:
		return QuietLogLevel
	}
}

// Execute runs cmd with a context that is cancelled on SIGINT or SIGTERM and
// returns the process exit code
func Execute(cmd *cobra.Command) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	if err := cmd.ExecuteContext(ctx); err != nil {
		ReportError(err)
		return 1
	}
	return 0
}

// ReportError prints err and its hint to stderr
func ReportError(err error) {
	if errors.Is(err, context.Canceled) {
		ui.PrintError("Interrupted, nothing was written")
		return
	}
	ui.PrintError("Error", err)
	ui.PrintHint(errs.Hint(err))
}
