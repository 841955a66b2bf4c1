package scan_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subsyncarr/internal/scan"
)

func TestSubtitleStem(t *testing.T) {
	cases := map[string]string{
		"show.srt":                  "show",
		"Show.S01E01.en.forced.srt": "Show.S01E01",
		"Movie (2010).eng.sdh.srt":  "Movie (2010)",
		"Movie.2010.srt":            "Movie.2010",
		"episode.ffsubsync.srt":     "episode",
		"Documentary.1080p.hi.srt":  "Documentary.1080p",
	}
	for name, want := range cases {
		assert.Equal(t, want, scan.SubtitleStem(name), name)
	}
}

func TestBestMatch(t *testing.T) {
	cases := []struct {
		name     string
		subtitle string
		media    []string
		want     string
	}{
		{"exact", "show.srt", []string{"show.mkv", "show-extras.mkv"}, "show.mkv"},
		{"exact after language strip", "show.en.srt", []string{"shows.mkv", "show.mp4"}, "show.mp4"},
		{"exact tie lexicographic", "show.srt", []string{"show.mp4", "show.mkv"}, "show.mkv"},
		{"longest prefix", "Movie (2010).srt", []string{"Movie (2010) 1080p.mkv", "Movie (2011).mkv"}, "Movie (2010) 1080p.mkv"},
		{"prefix tie lexicographic", "Show.S01E01.srt", []string{"Show.S01E01.720p.mkv", "Show.S01E01.1080p.mkv"}, "Show.S01E01.1080p.mkv"},
		{"prefers longer prefix", "Show.S01E02.srt", []string{"Show.S01E01.mkv", "Show.S01E02.WEB.mkv"}, "Show.S01E02.WEB.mkv"},
		{"rejects mid-word prefix", "show.srt", []string{"showtime.mkv"}, ""},
		{"no candidates", "orphan.srt", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := scan.BestMatch(tc.subtitle, tc.media)
			assert.Equal(t, tc.want != "", ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFindMatchingVideoSearchesOwnDirectoryOnly(t *testing.T) {
	root := t.TempDir()
	touch(t,
		filepath.Join(root, "show.srt"),
		filepath.Join(root, "nested", "show.mkv"),
		filepath.Join(root, "other", "film.srt"),
		filepath.Join(root, "other", "film.avi"),
	)

	_, ok, err := scan.FindMatchingVideo(filepath.Join(root, "show.srt"))
	require.NoError(t, err)
	assert.False(t, ok)

	media, ok, err := scan.FindMatchingVideo(filepath.Join(root, "other", "film.srt"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "other", "film.avi"), media)
}
