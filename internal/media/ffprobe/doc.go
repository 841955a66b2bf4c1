// Package ffprobe provides a typed wrapper around ffprobe JSON output and the
// stream locator built on it.
//
// Key types:
//   - Result: parsed ffprobe stream listing
//   - Stream: index, codec, and tags of a single stream
//   - Locator: resolves audio/subtitle streams by language
//
// Stream selection is strict: the first stream whose language tag matches
// wins; otherwise the first stream of the requested type is used. Audio
// selection reports -1 indexes for files without audio, while subtitle
// selection fails with ErrNoSubtitleStreams.
package ffprobe
