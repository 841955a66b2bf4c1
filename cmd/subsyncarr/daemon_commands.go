package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and run lock status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				return wrapAPIError(err, ctx.configValue().Paths.APIBind)
			}
			if jsonOut {
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Daemon:      running (pid %d)\n", status.PID)
			if status.Lock.Held {
				fmt.Fprintf(out, "Run lock:    %s for %s (timeout %s)\n",
					statusCell(statusWarn, "held", colorize), status.Lock.HeldFor,
					time.Duration(status.Lock.TimeoutSeconds*float64(time.Second)))
			} else {
				fmt.Fprintf(out, "Run lock:    %s\n", statusCell(statusOK, "free", colorize))
			}
			fmt.Fprintf(out, "Concurrency: %d\n", status.MaxConcurrent)
			fmt.Fprintf(out, "Engines:     %v\n", status.IncludeEngines)
			fmt.Fprintf(out, "History:     %s\n", orDash(status.HistoryDBPath))
			for _, dep := range status.Dependencies {
				kind, label := statusOK, "ok"
				if !dep.Available {
					kind, label = statusError, "missing"
					if dep.Optional {
						kind = statusWarn
					}
				}
				fmt.Fprintf(out, "  %-12s %s\n", dep.Name, statusCell(kind, label, colorize))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit status as JSON")
	return cmd
}

func newUnlockCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Force-release the daemon's run lock",
		Long: "Release the run lock of the running daemon. A run still in flight keeps\n" +
			"executing; only the lock is freed so a new run can start.",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			resp, err := client.Unlock(cmd.Context())
			if err != nil {
				return wrapAPIError(err, ctx.configValue().Paths.APIBind)
			}
			out := cmd.OutOrStdout()
			if resp.WasHeld {
				fmt.Fprintf(out, "%s (held for %s)\n", resp.Message, resp.HeldFor)
			} else {
				fmt.Fprintln(out, resp.Message)
			}
			return nil
		},
	}
}
