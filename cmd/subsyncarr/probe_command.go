package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"subsyncarr/internal/media/ffprobe"
)

type probeResult struct {
	Media           string                  `json:"media"`
	Language        string                  `json:"language,omitempty"`
	AudioStreams    int                     `json:"audio_streams"`
	SubtitleStreams int                     `json:"subtitle_streams"`
	Audio           ffprobe.AudioStream     `json:"audio"`
	Subtitle        *ffprobe.SubtitleStream `json:"subtitle,omitempty"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var lang string
	var jsonOut bool
	var rawOut bool

	cmd := &cobra.Command{
		Use:   "probe <media>",
		Short: "Show which audio and subtitle streams an engine would use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if lang == "" {
				lang = cfg.Sync.AudioTrackLanguage
			}
			probed, err := ffprobe.Inspect(cmd.Context(), cfg.Engines.FFprobeBinary, args[0], ffprobe.SelectAll)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if rawOut {
				_, err := out.Write(probed.RawJSON())
				return err
			}

			result := probeResult{
				Media:           args[0],
				Language:        lang,
				AudioStreams:    probed.AudioStreamCount(),
				SubtitleStreams: probed.SubtitleStreamCount(),
				Audio:           ffprobe.SelectAudioStream(probed, lang),
			}
			subtitle, err := ffprobe.SelectSubtitleStream(probed, lang)
			switch {
			case err == nil:
				result.Subtitle = &subtitle
			case !errors.Is(err, ffprobe.ErrNoSubtitleStreams):
				return err
			}

			if jsonOut {
				return writeJSON(cmd, result)
			}
			audio := result.Audio
			fmt.Fprintf(out, "Streams:  %d audio, %d subtitle\n", result.AudioStreams, result.SubtitleStreams)
			if audio.AbsoluteIndex < 0 {
				fmt.Fprintln(out, "Audio:    none")
			} else {
				fmt.Fprintf(out, "Audio:    stream %d (audio #%d) language=%s matched=%s\n",
					audio.AbsoluteIndex, audio.RelativeIndex, orDash(audio.Language), yesNo(audio.Matched))
			}
			if result.Subtitle == nil {
				fmt.Fprintln(out, "Subtitle: none")
			} else {
				fmt.Fprintf(out, "Subtitle: #%d codec=%s language=%s matched=%s\n",
					subtitle.Index, subtitle.Codec, orDash(subtitle.Language), yesNo(subtitle.Matched))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "language", "l", "", "Preferred language (defaults to sync.audio_track_language)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the selection as JSON")
	cmd.Flags().BoolVar(&rawOut, "raw", false, "Print ffprobe's stream listing unmodified")
	return cmd
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
