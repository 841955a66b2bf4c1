package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"subsyncarr/internal/daemon"
	"subsyncarr/internal/deps"
	"subsyncarr/internal/history"
	"subsyncarr/internal/logging"
	"subsyncarr/internal/notifications"
	"subsyncarr/internal/preflight"
	"subsyncarr/internal/syncrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var retention time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the subsyncarr HTTP daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonProcess(cmd.Context(), ctx, retention)
		},
	}
	cmd.Flags().DurationVar(&retention, "history-retention", 30*24*time.Hour, "Prune run history older than this at startup (0 keeps everything)")
	return cmd
}

func runDaemonProcess(cmdCtx context.Context, ctx *commandContext, retention time.Duration) error {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if missing := deps.MissingRequired(deps.CheckBinaries(deps.Requirements(cfg))); len(missing) > 0 {
		logging.WarnWithContext(logger, "required dependencies unavailable", "dependency_missing",
			logging.Strings("dependencies", missing),
			logging.String(logging.FieldErrorHint, "run `subsyncarr deps` for details"),
		)
	}

	for _, check := range preflight.Failed(preflight.RunAll(cfg)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
		)
	}

	store, err := history.Open(cfg)
	if err != nil {
		logger.Error("open run history", logging.Error(err))
		return err
	}
	if retention > 0 {
		if pruned, err := store.Prune(signalCtx, time.Now().Add(-retention)); err != nil {
			logger.Warn("history prune failed", logging.Error(err))
		} else if pruned > 0 {
			logger.Info("pruned run history", logging.Int("runs", int(pruned)))
		}
	}

	orch, err := syncrun.New(cfg, logger,
		syncrun.WithRecorder(store),
		syncrun.WithNotifier(notifications.NewService(cfg)),
	)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create orchestrator: %w", err)
	}

	d, err := daemon.New(cfg, orch, store, logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	logger.Info("subsyncarr daemon shutting down")
	return nil
}
