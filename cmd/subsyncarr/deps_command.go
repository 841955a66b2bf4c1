package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subsyncarr/internal/deps"
	"subsyncarr/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external binaries and configured paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			checks := preflight.RunAll(cfg)
			if jsonOut {
				return writeJSON(cmd, map[string]any{"binaries": statuses, "paths": checks})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				label := statusCell(statusOK, "available", colorize)
				if !status.Available {
					label = statusCell(statusError, "missing", colorize)
					if status.Optional {
						label = statusCell(statusWarn, "missing (optional)", colorize)
					}
				}
				rows = append(rows, []string{status.Name, status.Command, label, status.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Dependency", "Command", "Status", "Detail"}, rows, nil))

			pathRows := make([][]string, 0, len(checks))
			for _, check := range checks {
				label := statusCell(statusOK, "ok", colorize)
				if !check.Passed {
					label = statusCell(statusWarn, "problem", colorize)
				}
				pathRows = append(pathRows, []string{check.Name, label, check.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Path", "Status", "Detail"}, pathRows, nil))
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required dependencies: %v", missing)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit dependency status as JSON")
	return cmd
}
