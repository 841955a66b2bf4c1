package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"subsyncarr/internal/engine"
	"subsyncarr/internal/language"
	"subsyncarr/internal/services"
)

// Suffix tokens describing a subtitle variant rather than the title.
var subtitleFlags = map[string]bool{
	"forced": true,
	"sdh":    true,
	"cc":     true,
	"hi":     true,
	"full":   true,
}

// FindMatchingVideo returns the media file in subtitlePath's directory that
// best matches it. ok is false when nothing qualifies, which is a normal
// outcome. An error means the directory itself could not be listed.
func FindMatchingVideo(subtitlePath string) (mediaPath string, ok bool, err error) {
	dir := filepath.Dir(subtitlePath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false, services.Wrap(services.ErrDiscovery, "scan", "pair", fmt.Sprintf("Cannot read %s", dir), err)
	}

	var media []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && IsMediaFile(entry.Name()) {
			media = append(media, entry.Name())
		}
	}
	name, found := BestMatch(filepath.Base(subtitlePath), media)
	if !found {
		return "", false, nil
	}
	return filepath.Join(dir, name), true, nil
}

// BestMatch picks the media file name from candidates that pairs with the
// subtitle file name.
func BestMatch(subtitleName string, candidates []string) (string, bool) {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	stem := strings.ToLower(SubtitleStem(subtitleName))
	if stem == "" {
		return "", false
	}

	best, bestLen := "", 0
	for _, candidate := range sorted {
		base := strings.ToLower(strings.TrimSuffix(candidate, filepath.Ext(candidate)))
		if base == stem {
			return candidate, true
		}
		n := commonPrefix(stem, base)
		if n > bestLen && onBoundary(stem, n) && onBoundary(base, n) && strings.Trim(stem[:n], separators) != "" {
			best, bestLen = candidate, n
		}
	}
	return best, best != ""
}

// SubtitleStem strips the extension and any trailing engine, language, or
// flag tokens: "Show.S01E01.en.forced.srt" becomes "Show.S01E01".
func SubtitleStem(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	for {
		ext := filepath.Ext(stem)
		if ext == "" || ext == stem {
			return stem
		}
		token := strings.ToLower(ext[1:])
		if !engine.Kind(token).Valid() && !subtitleFlags[token] && !language.IsCode(token) {
			return stem
		}
		stem = strings.TrimSuffix(stem, ext)
	}
}

const separators = ". _-[]()"

func isSeparator(b byte) bool {
	return strings.IndexByte(separators, b) >= 0
}

func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// onBoundary reports whether cutting s after n bytes splits it between words.
func onBoundary(s string, n int) bool {
	if n == 0 {
		return false
	}
	if n == len(s) {
		return true
	}
	return isSeparator(s[n-1]) || isSeparator(s[n])
}
