package main

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"subsyncarr/internal/api"
	"subsyncarr/internal/engine"
	"subsyncarr/internal/logging"
	"subsyncarr/internal/notifications"
	"subsyncarr/internal/syncrun"
)

type syncOptions struct {
	engines         []string
	language        string
	ffsubsyncArgs   string
	autosubsyncArgs string
	alassArgs       string
	overwrite       bool
	remote          bool
	jsonOut         bool
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var opts syncOptions

	cmd := &cobra.Command{
		Use:   "sync [path...]",
		Short: "Synchronize subtitles under the given paths",
		Long: "Run the selected engines over every subtitle found under the given paths\n" +
			"(or the configured include paths). Runs locally unless --remote is set or a\n" +
			"daemon is running, in which case the request is sent to the daemon.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			paths := append([]string(nil), args...)
			if len(paths) == 0 {
				paths = append(paths, cfg.Scan.IncludePaths...)
			}
			for i, path := range paths {
				if abs, err := filepath.Abs(path); err == nil {
					paths[i] = abs
				}
			}
			engines := opts.engines
			if len(engines) == 0 {
				for _, kind := range engine.AllowedKinds(cfg) {
					engines = append(engines, string(kind))
				}
			}

			var overwrite *bool
			if cmd.Flags().Changed("overwrite") {
				overwrite = engine.Bool(opts.overwrite)
			}

			request := api.SyncRequest{Engine: engines, Path: paths}
			headers := api.SyncHeaders{
				AudioTrackLanguage: opts.language,
				FFsubsyncArgs:      opts.ffsubsyncArgs,
				AutosubsyncArgs:    opts.autosubsyncArgs,
				AlassArgs:          opts.alassArgs,
				Overwrite:          overwrite,
			}
			if opts.remote {
				return runRemoteSync(cmd, ctx, request, headers, opts.jsonOut)
			}

			// Local runs hold the daemon lock; a running daemon gets the request.
			hostLock := flock.New(cfg.DaemonLockPath())
			locked, err := hostLock.TryLock()
			if err != nil {
				return fmt.Errorf("check daemon lock %s: %w", cfg.DaemonLockPath(), err)
			}
			if !locked {
				fmt.Fprintf(cmd.ErrOrStderr(), "Daemon is running; sending sync to %s\n", api.BaseURL(cfg.Paths.APIBind))
				return runRemoteSync(cmd, ctx, request, headers, opts.jsonOut)
			}
			defer func() { _ = hostLock.Unlock() }()

			logger := ctx.consoleLogger(cmd.ErrOrStderr())
			orchOpts := []syncrun.Option{syncrun.WithNotifier(notifications.NewService(cfg))}
			store, err := ctx.openHistory()
			if err != nil {
				logger.Warn("run history unavailable", logging.Error(err))
			} else {
				defer store.Close()
				orchOpts = append(orchOpts, syncrun.WithRecorder(store))
			}
			orch, err := syncrun.New(cfg, logger, orchOpts...)
			if err != nil {
				return err
			}
			result, err := orch.Sync(cmd.Context(), syncrun.Request{
				Engines: engines,
				Paths:   paths,
				Env: engine.Env{
					AudioTrackLanguage: opts.language,
					ExtraArgs: map[engine.Kind]string{
						engine.FFsubsync:   opts.ffsubsyncArgs,
						engine.Autosubsync: opts.autosubsyncArgs,
						engine.Alass:       opts.alassArgs,
					},
					Overwrite: overwrite,
				},
				Trigger: "cli",
			})
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd, result)
			}
			renderSyncResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&opts.engines, "engine", "e", nil, "Engines to run (ffsubsync, autosubsync, alass); defaults to every enabled engine")
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Preferred audio track language")
	cmd.Flags().StringVar(&opts.ffsubsyncArgs, "ffsubsync-args", "", "Extra arguments for ffsubsync")
	cmd.Flags().StringVar(&opts.autosubsyncArgs, "autosubsync-args", "", "Extra arguments for autosubsync")
	cmd.Flags().StringVar(&opts.alassArgs, "alass-args", "", "Extra arguments for alass")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "Regenerate outputs that already exist")
	cmd.Flags().BoolVar(&opts.remote, "remote", false, "Send the request to the running daemon")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Emit the run result as JSON")
	return cmd
}

func runRemoteSync(cmd *cobra.Command, ctx *commandContext, req api.SyncRequest, headers api.SyncHeaders, jsonOut bool) error {
	client, err := ctx.apiClient()
	if err != nil {
		return err
	}
	resp, err := client.Sync(cmd.Context(), req, headers)
	if err != nil {
		return wrapAPIError(err, ctx.configValue().Paths.APIBind)
	}
	if jsonOut {
		return writeJSON(cmd, resp)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, resp.Message)
	renderReport(cmd, resp.RunID, resp.Files, resp.Report)
	return nil
}

func renderSyncResult(cmd *cobra.Command, result syncrun.Result) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	var rows [][]string
	for _, file := range result.Details {
		if file.Media == "" && len(file.Engines) == 0 {
			rows = append(rows, []string{filepath.Base(file.File), "", statusCell(statusWarn, "NO VIDEO", colorize), ""})
			continue
		}
		for _, kind := range result.Engines {
			outcome, ok := file.Engines[kind]
			if !ok {
				continue
			}
			label := statusCell(statusOK, "OK", colorize)
			switch {
			case outcome.Skipped:
				label = statusCell(statusInfo, "SKIPPED", colorize)
			case !outcome.Success:
				label = statusCell(statusError, "FAILED", colorize)
			}
			rows = append(rows, []string{filepath.Base(file.File), string(kind), label, outcome.Message})
		}
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Subtitle", "Engine", "Result", "Message"}, rows, nil))
	}
	renderReport(cmd, result.RunID, result.Files, result.Report)
}

func renderReport(cmd *cobra.Command, runID string, files int, report syncrun.Report) {
	out := cmd.OutOrStdout()
	succeeded, failed := report.Counts()
	fmt.Fprintf(out, "Run %s: %d files, %d succeeded, %d failed\n", runID, files, succeeded, failed)
	if len(report.Failure) == 0 {
		return
	}
	paths := make([]string, 0, len(report.Failure))
	for path := range report.Failure {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	for _, path := range paths {
		for _, failure := range report.Failure[path] {
			detail := failure.Message
			if stderr := strings.TrimSpace(failure.Stderr); stderr != "" {
				detail += ": " + lastLine(stderr)
			}
			fmt.Fprintf(out, "  %s [%s] %s\n", path, failure.Engine, detail)
		}
	}
}

func lastLine(s string) string {
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
