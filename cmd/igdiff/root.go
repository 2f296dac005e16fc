package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"igfollowers/internal/cli"
	"igfollowers/pkg/config"
	"igfollowers/pkg/diff"
	errs "igfollowers/pkg/errors"
	"igfollowers/pkg/logger"
	"igfollowers/pkg/snapshot"
	"igfollowers/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

type diffOptions struct {
	cli.OutputFlags

	output string
	latest bool
	dir    string

	now func() time.Time
}

// newRootCmd builds the igdiff command; now stamps the report
func newRootCmd(now func() time.Time) *cobra.Command {
	opts := &diffOptions{now: now}

	cmd := &cobra.Command{
		Use:   "igdiff <old-snapshot> <new-snapshot>",
		Short: "Compare two follower snapshots",
		Long: `igdiff reports which followers disappeared between two snapshots written
by igfollow and which ones are new. The report is printed to stdout; the
order of lines inside a snapshot does not matter.`,
		Example: `  # Compare two snapshots
  igdiff followers_20240101_090000.txt followers_20240201_090000.txt

  # Compare the two newest snapshots in a directory and keep a copy
  igdiff --latest --dir snapshots --output difference.txt`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.latest {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, opts, args)
		},
	}

	opts.Register(cmd)
	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "O", "", "also write the report to this file")
	flags.BoolVar(&opts.latest, "latest", false, "compare the two newest snapshots in --dir")
	flags.StringVar(&opts.dir, "dir", "", "directory searched by --latest (default: current directory)")

	cmd.SetVersionTemplate(`igdiff {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	cmd.CompletionOptions.DisableDefaultCmd = true

	return cmd
}

func (o *diffOptions) flagMap(cmd *cobra.Command, logLevel string) map[string]interface{} {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("output") {
		flags["output"] = o.output
	}
	if cmd.Flags().Changed("dir") {
		flags["dir"] = o.dir
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags
}

func runDiff(cmd *cobra.Command, opts *diffOptions, args []string) error {
	logLevel := opts.Apply(cmd)
	cfg, err := config.Load(opts.ConfigFile, opts.flagMap(cmd, logLevel))
	if err != nil {
		return err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.WithField("version", version)

	var oldPath, newPath string
	if opts.latest {
		latest, err := snapshot.Latest(cfg.Differ.SnapshotDir, cfg.Collector.FilePrefix, 2)
		if err != nil {
			return err
		}
		oldPath, newPath = latest[0].Path, latest[1].Path
		ui.PrintInfo("Comparing", fmt.Sprintf("%s -> %s", latest[0].Name(), latest[1].Name()))
	} else {
		oldPath, newPath = args[0], args[1]
	}

	rep, err := diff.Run(oldPath, newPath, opts.now())
	if err != nil {
		return err
	}
	log.WithFields(map[string]interface{}{
		"old":    oldPath,
		"new":    newPath,
		"lost":   len(rep.Lost),
		"gained": len(rep.Gained),
		"net":    rep.Net,
	}).Info("Snapshots compared")

	report := rep.String()
	if _, err := fmt.Fprint(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if cfg.Differ.OutputFile != "" {
		if err := os.WriteFile(cfg.Differ.OutputFile, []byte(report), 0644); err != nil {
			return errs.NewStorageError(cfg.Differ.OutputFile, "failed to write report", err)
		}
		ui.PrintSuccess(fmt.Sprintf("Report saved to %s", cfg.Differ.OutputFile))
	}
	return nil
}
