package engine_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subsyncarr/internal/engine"
	"subsyncarr/internal/services"
)

func TestOutputPathInsertsMarker(t *testing.T) {
	dir := filepath.Join("media", "tv")
	assert.Equal(t, filepath.Join(dir, "show.ffsubsync.srt"), engine.FFsubsync.OutputPath(filepath.Join(dir, "show.srt")))
	assert.Equal(t, filepath.Join(dir, "Movie.en.alass.srt"), engine.Alass.OutputPath(filepath.Join(dir, "Movie.en.srt")))
}

func TestIsOutputName(t *testing.T) {
	assert.True(t, engine.IsOutputName("show.autosubsync.srt"))
	assert.True(t, engine.IsOutputName("show.en.alass.srt"))
	assert.False(t, engine.IsOutputName("show.srt"))
	assert.False(t, engine.IsOutputName("alass.srt"))
}

func TestParseKindsCanonicalOrder(t *testing.T) {
	kinds, err := engine.ParseKinds([]string{" ALASS", "ffsubsync", "alass"})
	require.NoError(t, err)
	assert.Equal(t, []engine.Kind{engine.FFsubsync, engine.Alass}, kinds)
}

func TestParseKindsRejectsUnknown(t *testing.T) {
	_, err := engine.ParseKinds([]string{"ffsubsync", "foo", "bar"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrValidation))
	assert.Contains(t, err.Error(), "Invalid engines: foo, bar")
}

func TestIntersect(t *testing.T) {
	got := engine.Intersect(
		[]engine.Kind{engine.Alass, engine.FFsubsync},
		[]engine.Kind{engine.Autosubsync, engine.Alass},
	)
	assert.Equal(t, []engine.Kind{engine.Alass}, got)
	assert.Empty(t, engine.Intersect([]engine.Kind{engine.FFsubsync}, []engine.Kind{engine.Alass}))
}

func TestEnvMerge(t *testing.T) {
	defaults := engine.Env{
		AudioTrackLanguage: "eng",
		ExtraArgs:          map[engine.Kind]string{engine.Alass: "--split-penalty 10"},
		Overwrite:          engine.Bool(false),
	}
	merged := engine.Env{
		ExtraArgs: map[engine.Kind]string{engine.FFsubsync: "--vad webrtc"},
		Overwrite: engine.Bool(true),
	}.Merge(defaults)

	assert.Equal(t, "eng", merged.AudioTrackLanguage)
	assert.Equal(t, "--vad webrtc", merged.ExtraArgs[engine.FFsubsync])
	assert.Equal(t, "--split-penalty 10", merged.ExtraArgs[engine.Alass])
	assert.True(t, merged.OverwriteEnabled())

	assert.False(t, engine.Env{}.Merge(defaults).OverwriteEnabled())
}
