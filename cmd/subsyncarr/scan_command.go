package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"subsyncarr/internal/scan"
	"subsyncarr/internal/syncrun"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "scan [path...]",
		Short: "List subtitle candidates and their matching videos",
		Long: "Scan the configured include paths (or the given paths) and show every subtitle\n" +
			"that would be synchronized together with the video it pairs with.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			orch, err := syncrun.New(cfg, ctx.consoleLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			result, err := orch.ScanDirectories(orch.ScanConfig(args))
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			if len(result.SubtitleFiles) == 0 {
				fmt.Fprintf(out, "No subtitle candidates found in %d directories\n", len(result.Directories))
				return nil
			}
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(result.SubtitleFiles))
			for _, subtitle := range result.SubtitleFiles {
				media, ok, err := scan.FindMatchingVideo(subtitle)
				matched := statusCell(statusOK, filepath.Base(media), colorize)
				switch {
				case err != nil:
					matched = statusCell(statusError, err.Error(), colorize)
				case !ok:
					matched = statusCell(statusWarn, "no match", colorize)
				}
				rows = append(rows, []string{filepath.Dir(subtitle), filepath.Base(subtitle), matched})
			}
			fmt.Fprintln(out, renderTable([]string{"Directory", "Subtitle", "Video"}, rows, nil))
			fmt.Fprintf(out, "%d subtitles, %d videos, %d directories\n",
				len(result.SubtitleFiles), len(result.MediaFiles), len(result.Directories))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the raw scan result as JSON")
	return cmd
}
