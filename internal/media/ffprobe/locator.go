package ffprobe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"subsyncarr/internal/language"
)

// AudioStream identifies an audio track. AbsoluteIndex is the position among
// all streams in the container, RelativeIndex the 0-based position among audio
// streams only. Both are -1 when the file carries no audio.
type AudioStream struct {
	AbsoluteIndex int    `json:"absolute_index"`
	RelativeIndex int    `json:"relative_index"`
	Language      string `json:"language,omitempty"`
	Matched       bool   `json:"matched"`
}

// SubtitleStream identifies an embedded subtitle track. Index is the 0-based
// position among subtitle streams.
type SubtitleStream struct {
	Codec    string `json:"codec"`
	Index    int    `json:"index"`
	Language string `json:"language,omitempty"`
	Matched  bool   `json:"matched"`
}

// ErrNoSubtitleStreams reports a container without subtitle streams.
var ErrNoSubtitleStreams = errors.New("no subtitle streams found")

// SelectAudioStream picks the first audio stream tagged with lang, falling back
// to the first audio stream when none matches.
func SelectAudioStream(result Result, lang string) AudioStream {
	first := AudioStream{AbsoluteIndex: -1, RelativeIndex: -1}
	relative := 0
	for _, stream := range result.Streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		candidate := AudioStream{AbsoluteIndex: stream.Index, RelativeIndex: relative, Language: stream.Language()}
		if relative == 0 {
			first = candidate
		}
		if language.Matches(candidate.Language, lang) {
			candidate.Matched = true
			return candidate
		}
		relative++
	}
	return first
}

// SelectSubtitleStream picks the first subtitle stream tagged with lang,
// falling back to the first subtitle stream. Unlike audio there is no sensible
// answer for a container without subtitles, so that case is an error.
func SelectSubtitleStream(result Result, lang string) (SubtitleStream, error) {
	var first *SubtitleStream
	relative := 0
	for _, stream := range result.Streams {
		if !strings.EqualFold(stream.CodecType, "subtitle") {
			continue
		}
		candidate := SubtitleStream{Codec: stream.CodecName, Index: relative, Language: stream.Language()}
		if first == nil {
			first = &candidate
		}
		if language.Matches(candidate.Language, lang) {
			candidate.Matched = true
			return candidate, nil
		}
		relative++
	}
	if first == nil {
		return SubtitleStream{}, ErrNoSubtitleStreams
	}
	return *first, nil
}

// Prober runs a stream inspection; tests swap in canned results.
type Prober func(ctx context.Context, path string, selector Selector) (Result, error)

// Locator resolves audio and subtitle streams of media files through ffprobe.
type Locator struct {
	probe Prober
}

// NewLocator returns a Locator that shells out to the given ffprobe binary.
func NewLocator(binary string) *Locator {
	return &Locator{probe: func(ctx context.Context, path string, selector Selector) (Result, error) {
		return Inspect(ctx, binary, path, selector)
	}}
}

// NewLocatorWithProber builds a Locator around a custom probe function.
func NewLocatorWithProber(probe Prober) *Locator {
	return &Locator{probe: probe}
}

// ResolveAudioStream returns the audio stream for lang in mediaPath.
func (l *Locator) ResolveAudioStream(ctx context.Context, mediaPath, lang string) (AudioStream, error) {
	result, err := l.probe(ctx, mediaPath, SelectAudio)
	if err != nil {
		return AudioStream{AbsoluteIndex: -1, RelativeIndex: -1}, fmt.Errorf("get audio stream index for %s: %w", mediaPath, err)
	}
	return SelectAudioStream(result, lang), nil
}

// ResolveSubtitleStream returns the embedded subtitle stream for lang in mediaPath.
func (l *Locator) ResolveSubtitleStream(ctx context.Context, mediaPath, lang string) (SubtitleStream, error) {
	result, err := l.probe(ctx, mediaPath, SelectSubtitle)
	if err != nil {
		return SubtitleStream{}, fmt.Errorf("get subtitle stream index for %s: %w", mediaPath, err)
	}
	stream, err := SelectSubtitleStream(result, lang)
	if err != nil {
		return SubtitleStream{}, fmt.Errorf("get subtitle stream index for %s: %w", mediaPath, err)
	}
	return stream, nil
}
