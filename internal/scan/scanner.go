package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"subsyncarr/internal/engine"
	"subsyncarr/internal/services"
)

// Supported media file extensions (lowercase, with leading dot).
var mediaExtensions = map[string]bool{
	".mkv": true,
	".mp4": true,
	".avi": true,
	".mov": true,
	".wmv": true,
	".flv": true,
}

const subtitleExtension = ".srt"

// Config lists the roots to walk. Exclusion is a plain string prefix match on
// absolute paths and always wins over inclusion.
type Config struct {
	IncludeRoots []string
	ExcludeRoots []string
}

// Result is the outcome of one scan. DirectoryMap groups subtitle paths by the
// directory holding them; Directories lists those directories in discovery
// order.
type Result struct {
	Directories   []string            `json:"directories"`
	SubtitleFiles []string            `json:"subtitleFiles"`
	MediaFiles    []string            `json:"mediaFiles"`
	DirectoryMap  map[string][]string `json:"directoryMap"`
}

// IsMediaFile reports whether name has a supported video container extension.
func IsMediaFile(name string) bool {
	return mediaExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsSubtitleCandidate reports whether name is a source subtitle: an .srt file
// that is not itself an engine output.
func IsSubtitleCandidate(name string) bool {
	if !strings.EqualFold(filepath.Ext(name), subtitleExtension) {
		return false
	}
	return !engine.IsOutputName(name)
}

// Scan walks every include root in order. An include root may also be a
// single file, which is classified like any directory entry.
func Scan(cfg Config) (Result, error) {
	result := Result{
		Directories:   []string{},
		SubtitleFiles: []string{},
		MediaFiles:    []string{},
		DirectoryMap:  map[string][]string{},
	}
	excludes, err := absolutePaths(cfg.ExcludeRoots)
	if err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "scan", "resolve exclude roots", "Invalid exclude path", err)
	}

	for _, root := range cfg.IncludeRoots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return Result{}, services.Wrap(services.ErrValidation, "scan", "resolve include root", fmt.Sprintf("Invalid include path %q", root), err)
		}
		if err := walkRoot(abs, excludes, &result); err != nil {
			return Result{}, err
		}
	}
	return result, nil
}

// walkRoot resolves root once so a symlinked include root is read through its
// target; links below the root are still not followed. Reported paths stay
// under root as configured.
func walkRoot(root string, excludes []string, result *Result) error {
	if excluded(root, excludes) {
		return nil
	}
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return discoveryError(root, err)
	}
	err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if resolved != root {
			rel, relErr := filepath.Rel(resolved, path)
			if relErr != nil {
				return relErr
			}
			path = filepath.Join(root, rel)
		}
		if excluded(path, excludes) {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		name := d.Name()
		switch {
		case IsSubtitleCandidate(name):
			dir := filepath.Dir(path)
			if _, seen := result.DirectoryMap[dir]; !seen {
				result.Directories = append(result.Directories, dir)
			}
			result.DirectoryMap[dir] = append(result.DirectoryMap[dir], path)
			result.SubtitleFiles = append(result.SubtitleFiles, path)
		case IsMediaFile(name):
			result.MediaFiles = append(result.MediaFiles, path)
		}
		return nil
	})
	if err == nil {
		return nil
	}
	return discoveryError(root, err)
}

func discoveryError(root string, err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return services.Wrap(services.ErrDiscovery, "scan", "walk", fmt.Sprintf("Cannot read %s", pathErr.Path), err)
	}
	return services.Wrap(services.ErrDiscovery, "scan", "walk", fmt.Sprintf("Cannot scan %s", root), err)
}

func excluded(path string, excludes []string) bool {
	for _, prefix := range excludes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func absolutePaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		out = append(out, abs)
	}
	return out, nil
}
