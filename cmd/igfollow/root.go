package main

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"igfollowers/internal/cli"
	"igfollowers/pkg/collector"
	"igfollowers/pkg/config"
	errs "igfollowers/pkg/errors"
	"igfollowers/pkg/instagram"
	"igfollowers/pkg/logger"
	"igfollowers/pkg/ratelimit"
	"igfollowers/pkg/request"
	"igfollowers/pkg/snapshot"
	"igfollowers/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// collectOptions holds the igfollow flags
type collectOptions struct {
	cli.OutputFlags

	outputDir string
	minDelay  time.Duration
	maxDelay  time.Duration
	pageSize  int
	baseURL   string
	notify    bool
}

func newRootCmd() *cobra.Command {
	opts := &collectOptions{}

	cmd := &cobra.Command{
		Use:   "igfollow <request-file> <target-count>",
		Short: "Save a snapshot of an Instagram account's followers",
		Long: `igfollow replays a follower-list request captured from the browser and
pages through the list until it has collected target-count unique usernames
or the list runs out. The usernames are saved, one per line, to a new file
named followers_YYYYMMDD_HHMMSS.txt.

Capture the request from the browser's developer tools while the follower
dialog of the account is open: copy the GET request to
/api/v1/friendships/<id>/followers/ with its headers into a text file.
Captured requests expire; when igfollow reports an auth or parsing error,
capture a fresh one.`,
		Example: `  # Collect up to 500 followers
  igfollow request.txt 500

  # Save into a directory with a shorter pause between pages
  igfollow request.txt 2000 -o snapshots --min-delay 2s --max-delay 6s`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd, opts, args)
		},
	}

	opts.Register(cmd)
	flags := cmd.Flags()
	flags.StringVarP(&opts.outputDir, "output-dir", "o", "", "directory for snapshot files (default: current directory)")
	flags.DurationVar(&opts.minDelay, "min-delay", 4*time.Second, "shortest pause between page requests")
	flags.DurationVar(&opts.maxDelay, "max-delay", 12*time.Second, "longest pause between page requests")
	flags.IntVar(&opts.pageSize, "page-size", instagram.DefaultPageSize, "followers requested per page")
	flags.StringVar(&opts.baseURL, "base-url", "", "override the scheme and host of the captured request")
	flags.BoolVar(&opts.notify, "notify", false, "send a desktop notification when the run ends")

	cmd.SetVersionTemplate(`igfollow {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	cmd.CompletionOptions.DisableDefaultCmd = true

	return cmd
}

// flagMap returns the flags the user actually set, keyed the way
// config.MergeCommandLineFlags expects
func (o *collectOptions) flagMap(cmd *cobra.Command, logLevel string) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := cmd.Flags().Changed

	if changed("output-dir") {
		flags["output-dir"] = o.outputDir
	}
	if changed("min-delay") {
		flags["min-delay"] = o.minDelay
	}
	if changed("max-delay") {
		flags["max-delay"] = o.maxDelay
	}
	if changed("page-size") {
		flags["page-size"] = o.pageSize
	}
	if changed("base-url") {
		flags["base-url"] = o.baseURL
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags
}

func templateOptions(cfg *config.Config) request.Options {
	return request.Options{
		PathPattern:     cfg.Template.PathPattern,
		Methods:         cfg.Template.Methods,
		RequiredHeaders: cfg.Template.RequiredHeaders,
		SkipHeaders:     cfg.Template.SkipHeaders,
		BaseURL:         cfg.Instagram.BaseURL,
	}
}

func runCollect(cmd *cobra.Command, opts *collectOptions, args []string) error {
	requestFile := args[0]
	target, err := strconv.Atoi(strings.TrimSpace(args[1]))
	if err != nil {
		return errs.NewInputError("", fmt.Sprintf("target count %q is not a whole number", args[1]), nil)
	}

	logLevel := opts.Apply(cmd)
	cfg, err := config.Load(opts.ConfigFile, opts.flagMap(cmd, logLevel))
	if err != nil {
		return err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.WithField("version", version)
	log.Info("igfollow starting")

	tmpl, err := request.LoadFile(requestFile, templateOptions(cfg))
	if err != nil {
		return err
	}
	log.WithField("template", tmpl.String()).Debug("Request template loaded")

	// create the output directory before spending minutes on collection
	store, err := snapshot.NewStore(cfg.Collector.OutputDir, cfg.Collector.FilePrefix)
	if err != nil {
		return err
	}

	ui.PrintInfo("Target account", tmpl.TargetID())
	ui.PrintInfo("Target count", strconv.Itoa(target))

	client := instagram.NewClient(cfg.HTTP.Timeout, cfg.Instagram.PageSize, cfg.Instagram.SearchSurface, log)
	limiter := ratelimit.NewJitter(cfg.Collector.MinDelay, cfg.Collector.MaxDelay)
	c := collector.New(client, limiter, log)
	progress := ui.NewProgressDisplay(tmpl.TargetID())
	c.SetProgress(progress)

	var notifier *ui.Notifier
	if opts.notify {
		notifier = ui.NewNotifier()
	}

	result, err := c.Collect(cmd.Context(), tmpl, target)
	if err != nil {
		if notifier != nil {
			if nerr := notifier.SendError("igfollow failed", err.Error()); nerr != nil {
				log.WithError(nerr).Warn("Notification not shown")
			}
		}
		return err
	}

	path, err := store.Write(result.Usernames)
	if err != nil {
		return err
	}
	log.WithFields(map[string]interface{}{
		"run_id": result.RunID,
		"path":   path,
		"total":  len(result.Usernames),
	}).Info("Snapshot saved")

	progress.Complete(path, result.Exhausted)
	if notifier != nil {
		err := notifier.SendNotification("Follower snapshot saved",
			fmt.Sprintf("%d followers in %s", len(result.Usernames), path))
		if err != nil {
			log.WithError(err).Warn("Notification not shown")
		}
	}

	// stdout carries only the snapshot path, for scripts
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
