package scan_test

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subsyncarr/internal/scan"
	"subsyncarr/internal/services"
)

func touch(t *testing.T, paths ...string) {
	t.Helper()
	for _, path := range paths {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
}

func sorted(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}

func TestScanClassifiesFiles(t *testing.T) {
	root := t.TempDir()
	tv := filepath.Join(root, "tv", "Show")
	movies := filepath.Join(root, "movies")
	touch(t,
		filepath.Join(tv, "show.srt"),
		filepath.Join(tv, "show.mkv"),
		filepath.Join(tv, "show.ffsubsync.srt"),
		filepath.Join(tv, "show.alass.srt"),
		filepath.Join(tv, "notes.txt"),
		filepath.Join(movies, "Film.EN.SRT"),
		filepath.Join(movies, "Film.MP4"),
		filepath.Join(movies, "Film.autosubsync.srt"),
	)

	result, err := scan.Scan(scan.Config{IncludeRoots: []string{root}})
	require.NoError(t, err)

	assert.Equal(t, sorted([]string{filepath.Join(tv, "show.srt"), filepath.Join(movies, "Film.EN.SRT")}), sorted(result.SubtitleFiles))
	assert.Equal(t, sorted([]string{filepath.Join(tv, "show.mkv"), filepath.Join(movies, "Film.MP4")}), sorted(result.MediaFiles))
	assert.Equal(t, sorted([]string{tv, movies}), sorted(result.Directories))
	assert.Equal(t, []string{filepath.Join(tv, "show.srt")}, result.DirectoryMap[tv])
}

func TestScanExcludePrefixAlwaysWins(t *testing.T) {
	root := t.TempDir()
	keep := filepath.Join(root, "keep")
	skip := filepath.Join(root, "skip")
	touch(t,
		filepath.Join(keep, "a.srt"),
		filepath.Join(keep, "a.mkv"),
		filepath.Join(skip, "b.srt"),
		filepath.Join(skip, "nested", "c.srt"),
		filepath.Join(skip, "nested", "c.mkv"),
		filepath.Join(root, "skipped-too", "d.srt"),
	)

	// skip is also listed as an include root after the root containing it.
	result, err := scan.Scan(scan.Config{
		IncludeRoots: []string{root, skip},
		ExcludeRoots: []string{skip},
	})
	require.NoError(t, err)

	all := append(append(append([]string{}, result.SubtitleFiles...), result.MediaFiles...), result.Directories...)
	for dir, subs := range result.DirectoryMap {
		all = append(all, dir)
		all = append(all, subs...)
	}
	for _, path := range all {
		assert.False(t, strings.HasPrefix(path, skip), "excluded path leaked: %s", path)
	}
	assert.Equal(t, []string{filepath.Join(keep, "a.srt")}, result.SubtitleFiles)
	assert.Equal(t, []string{filepath.Join(keep, "a.mkv")}, result.MediaFiles)
}

func TestScanIncludeRootOrder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	touch(t, filepath.Join(first, "one.srt"), filepath.Join(second, "two.srt"))

	result, err := scan.Scan(scan.Config{IncludeRoots: []string{second, first}})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(second, "two.srt"), filepath.Join(first, "one.srt")}, result.SubtitleFiles)
}

func TestScanAcceptsFileRoot(t *testing.T) {
	root := t.TempDir()
	srt := filepath.Join(root, "single.srt")
	touch(t, srt, filepath.Join(root, "other.srt"))

	result, err := scan.Scan(scan.Config{IncludeRoots: []string{srt}})
	require.NoError(t, err)
	assert.Equal(t, []string{srt}, result.SubtitleFiles)
	assert.Equal(t, []string{root}, result.Directories)
}

func TestScanMissingRootFails(t *testing.T) {
	_, err := scan.Scan(scan.Config{IncludeRoots: []string{filepath.Join(t.TempDir(), "absent")}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrDiscovery))
}

func TestScanUnreadableDirectoryFails(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	touch(t, filepath.Join(root, "ok.srt"), filepath.Join(locked, "hidden.srt"))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	_, err := scan.Scan(scan.Config{IncludeRoots: []string{root}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrDiscovery))
}

func TestScanSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "real", "a.srt"))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "loop")))
	require.NoError(t, os.Symlink(filepath.Join(root, "real", "a.srt"), filepath.Join(root, "link.srt")))

	result, err := scan.Scan(scan.Config{IncludeRoots: []string{root}})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "real", "a.srt")}, result.SubtitleFiles)
}

func TestScanFollowsSymlinkedIncludeRoot(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "library")
	touch(t, filepath.Join(target, "Show", "show.srt"), filepath.Join(target, "Show", "show.mkv"))
	link := filepath.Join(base, "mounted")
	require.NoError(t, os.Symlink(target, link))

	result, err := scan.Scan(scan.Config{IncludeRoots: []string{link}})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(link, "Show", "show.srt")}, result.SubtitleFiles)
	assert.Equal(t, []string{filepath.Join(link, "Show", "show.mkv")}, result.MediaFiles)
	assert.Equal(t, []string{filepath.Join(link, "Show")}, result.Directories)
}

func TestScanSymlinkedRootHonoursExcludes(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "library")
	touch(t, filepath.Join(target, "keep", "a.srt"), filepath.Join(target, "skip", "b.srt"))
	link := filepath.Join(base, "mounted")
	require.NoError(t, os.Symlink(target, link))

	result, err := scan.Scan(scan.Config{
		IncludeRoots: []string{link},
		ExcludeRoots: []string{filepath.Join(link, "skip")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(link, "keep", "a.srt")}, result.SubtitleFiles)
}

func TestScanDanglingRootSymlinkFails(t *testing.T) {
	base := t.TempDir()
	link := filepath.Join(base, "gone")
	require.NoError(t, os.Symlink(filepath.Join(base, "absent"), link))

	_, err := scan.Scan(scan.Config{IncludeRoots: []string{link}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrDiscovery))
}
