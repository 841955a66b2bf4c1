package engine

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"subsyncarr/internal/services"
)

// Kind names one external alignment engine.
type Kind string

const (
	FFsubsync   Kind = "ffsubsync"
	Autosubsync Kind = "autosubsync"
	Alass       Kind = "alass"
)

// All lists every engine in canonical execution and reporting order.
var All = []Kind{FFsubsync, Autosubsync, Alass}

func (k Kind) String() string { return string(k) }

// Valid reports whether k is one of the known engines.
func (k Kind) Valid() bool {
	return slices.Contains(All, k)
}

// Marker is the filename fragment identifying output written by the engine.
func (k Kind) Marker() string {
	return "." + string(k) + "."
}

// OutputPath returns where the engine writes the re-timed copy of subtitlePath:
// the engine marker inserted before the .srt extension, in the same directory.
func (k Kind) OutputPath(subtitlePath string) string {
	dir := filepath.Dir(subtitlePath)
	base := filepath.Base(subtitlePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".srt"
	}
	return filepath.Join(dir, stem+"."+string(k)+ext)
}

// IsOutputName reports whether name carries any engine marker and therefore is
// a previously generated output rather than a source subtitle.
func IsOutputName(name string) bool {
	for _, kind := range All {
		if strings.Contains(name, kind.Marker()) {
			return true
		}
	}
	return false
}

// ParseKinds trims, lower-cases, and validates engine names. The result is
// deduplicated and ordered canonically. Any unknown name rejects the whole
// list with a validation error naming every offender.
func ParseKinds(names []string) ([]Kind, error) {
	requested := make(map[Kind]struct{}, len(names))
	var invalid []string
	for _, name := range names {
		kind := Kind(strings.ToLower(strings.TrimSpace(name)))
		if !kind.Valid() {
			invalid = append(invalid, strings.TrimSpace(name))
			continue
		}
		requested[kind] = struct{}{}
	}
	if len(invalid) > 0 {
		return nil, services.Wrap(services.ErrValidation, "engine", "parse", fmt.Sprintf("Invalid engines: %s", strings.Join(invalid, ", ")), nil)
	}
	out := make([]Kind, 0, len(requested))
	for _, kind := range All {
		if _, ok := requested[kind]; ok {
			out = append(out, kind)
		}
	}
	return out, nil
}

// Intersect keeps the kinds of requested that are also allowed, preserving
// canonical order.
func Intersect(requested, allowed []Kind) []Kind {
	out := make([]Kind, 0, len(requested))
	for _, kind := range All {
		if slices.Contains(requested, kind) && slices.Contains(allowed, kind) {
			out = append(out, kind)
		}
	}
	return out
}
