package engine

import "strings"

// Env bundles the per-run overrides of an engine invocation. Blank strings and
// a nil Overwrite mean "not set".
type Env struct {
	AudioTrackLanguage string
	ExtraArgs          map[Kind]string
	Overwrite          *bool
}

// Merge layers e over defaults: every value set in e wins over the matching
// value in defaults.
func (e Env) Merge(defaults Env) Env {
	merged := Env{
		AudioTrackLanguage: pick(e.AudioTrackLanguage, defaults.AudioTrackLanguage),
		ExtraArgs:          make(map[Kind]string, len(All)),
		Overwrite:          defaults.Overwrite,
	}
	if e.Overwrite != nil {
		merged.Overwrite = e.Overwrite
	}
	for _, kind := range All {
		if value := pick(e.ExtraArgs[kind], defaults.ExtraArgs[kind]); value != "" {
			merged.ExtraArgs[kind] = value
		}
	}
	return merged
}

// OverwriteEnabled reports whether existing outputs should be regenerated.
func (e Env) OverwriteEnabled() bool {
	return e.Overwrite != nil && *e.Overwrite
}

// Bool returns a pointer to v, for filling Env.Overwrite.
func Bool(v bool) *bool {
	return &v
}

func pick(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return strings.TrimSpace(fallback)
}
