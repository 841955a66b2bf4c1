package ffprobe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleStreams = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "tags": {"language": "jpn"}},
    {"index": 2, "codec_name": "ac3", "codec_type": "audio", "tags": {"language": "eng"}},
    {"index": 3, "codec_name": "subrip", "codec_type": "subtitle", "tags": {"language": "fre"}},
    {"index": 4, "codec_name": "ass", "codec_type": "subtitle", "tags": {"language": "eng"}}
  ]
}`

func mustParse(t *testing.T, data string) Result {
	t.Helper()
	result, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return result
}

func TestResultHelpers(t *testing.T) {
	result := mustParse(t, sampleStreams)
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.SubtitleStreamCount() != 2 {
		t.Fatalf("expected 2 subtitle streams, got %d", result.SubtitleStreamCount())
	}
	if result.Streams[2].Language() != "eng" {
		t.Fatalf("unexpected language: %q", result.Streams[2].Language())
	}
	if len(result.RawJSON()) == 0 {
		t.Fatal("expected raw JSON to be retained")
	}
}

func TestSelectAudioStreamMatchesLanguage(t *testing.T) {
	stream := SelectAudioStream(mustParse(t, sampleStreams), "eng")
	if stream.AbsoluteIndex != 2 || stream.RelativeIndex != 1 || !stream.Matched {
		t.Fatalf("unexpected stream: %+v", stream)
	}
}

func TestSelectAudioStreamAcceptsTwoLetterCode(t *testing.T) {
	stream := SelectAudioStream(mustParse(t, sampleStreams), "en")
	if stream.AbsoluteIndex != 2 || stream.RelativeIndex != 1 {
		t.Fatalf("unexpected stream: %+v", stream)
	}
}

func TestSelectAudioStreamFallsBackToFirstAudio(t *testing.T) {
	stream := SelectAudioStream(mustParse(t, sampleStreams), "ger")
	if stream.AbsoluteIndex != 1 || stream.RelativeIndex != 0 || stream.Matched {
		t.Fatalf("expected fallback to first audio stream, got %+v", stream)
	}
}

func TestSelectAudioStreamWithoutAudio(t *testing.T) {
	stream := SelectAudioStream(mustParse(t, `{"streams":[{"index":0,"codec_type":"video"}]}`), "eng")
	if stream.AbsoluteIndex != -1 || stream.RelativeIndex != -1 {
		t.Fatalf("expected not-found indexes, got %+v", stream)
	}
}

func TestSelectSubtitleStream(t *testing.T) {
	result := mustParse(t, sampleStreams)

	stream, err := SelectSubtitleStream(result, "eng")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stream.Codec != "ass" || stream.Index != 1 || !stream.Matched {
		t.Fatalf("unexpected match: %+v", stream)
	}

	fallback, err := SelectSubtitleStream(result, "spa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallback.Codec != "subrip" || fallback.Index != 0 || fallback.Matched {
		t.Fatalf("unexpected fallback: %+v", fallback)
	}
}

func TestSelectSubtitleStreamRequiresStreams(t *testing.T) {
	_, err := SelectSubtitleStream(mustParse(t, `{"streams":[]}`), "eng")
	if !errors.Is(err, ErrNoSubtitleStreams) {
		t.Fatalf("expected ErrNoSubtitleStreams, got %v", err)
	}
}

func TestLocatorPassesSelectorAndWrapsErrors(t *testing.T) {
	var gotSelector Selector
	locator := NewLocatorWithProber(func(_ context.Context, path string, selector Selector) (Result, error) {
		gotSelector = selector
		if path == "/broken.mkv" {
			return Result{}, errors.New("moov atom not found")
		}
		return Parse([]byte(sampleStreams))
	})

	stream, err := locator.ResolveAudioStream(context.Background(), "/movie.mkv", "eng")
	if err != nil || stream.AbsoluteIndex != 2 {
		t.Fatalf("unexpected result: %+v %v", stream, err)
	}
	if gotSelector != SelectAudio {
		t.Fatalf("expected audio selector, got %q", gotSelector)
	}

	if _, err := locator.ResolveSubtitleStream(context.Background(), "/movie.mkv", "eng"); err != nil {
		t.Fatalf("unexpected subtitle error: %v", err)
	}
	if gotSelector != SelectSubtitle {
		t.Fatalf("expected subtitle selector, got %q", gotSelector)
	}

	if _, err := locator.ResolveAudioStream(context.Background(), "/broken.mkv", "eng"); err == nil {
		t.Fatal("expected probe error to propagate")
	}
}

func TestInspectRunsBinary(t *testing.T) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "ffprobe")
	script := "#!/bin/sh\ncat <<'JSON'\n" + sampleStreams + "\nJSON\n"
	if err := os.WriteFile(binary, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	result, err := Inspect(context.Background(), binary, "/movie.mkv", SelectAll)
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if len(result.Streams) != 5 {
		t.Fatalf("expected 5 streams, got %d", len(result.Streams))
	}
}

func TestInspectReportsFailure(t *testing.T) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(binary, []byte("#!/bin/sh\necho 'Invalid data' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	if _, err := Inspect(context.Background(), binary, "/movie.mkv", SelectAudio); err == nil {
		t.Fatal("expected error from failing ffprobe")
	}
	if _, err := Inspect(context.Background(), binary, "  ", SelectAudio); err == nil {
		t.Fatal("expected error for empty path")
	}
}
