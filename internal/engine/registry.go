package engine

import (
	"log/slog"

	"subsyncarr/internal/config"
)

// Registry holds one adapter per engine kind.
type Registry struct {
	adapters map[Kind]*Adapter
}

// NewRegistry builds adapters for every engine using the binaries named in cfg.
func NewRegistry(cfg *config.Config, streams StreamResolver, logger *slog.Logger, opts ...AdapterOption) (*Registry, error) {
	reg := &Registry{adapters: make(map[Kind]*Adapter, len(All))}
	opts = append([]AdapterOption{WithLogger(logger)}, opts...)
	for _, kind := range All {
		adapter, err := NewAdapter(kind, Binary(cfg, kind), streams, opts...)
		if err != nil {
			return nil, err
		}
		reg.adapters[kind] = adapter
	}
	return reg, nil
}

// Adapter returns the adapter for kind.
func (r *Registry) Adapter(kind Kind) (*Adapter, bool) {
	if r == nil {
		return nil, false
	}
	a, ok := r.adapters[kind]
	return a, ok
}

// Binary returns the configured executable for kind.
func Binary(cfg *config.Config, kind Kind) string {
	if cfg == nil {
		return string(kind)
	}
	switch kind {
	case FFsubsync:
		return cfg.Engines.FFsubsyncBinary
	case Autosubsync:
		return cfg.Engines.AutosubsyncBinary
	case Alass:
		return cfg.Engines.AlassBinary
	default:
		return string(kind)
	}
}

// DefaultEnv returns the process-wide Env described by cfg.
func DefaultEnv(cfg *config.Config) Env {
	if cfg == nil {
		return Env{ExtraArgs: map[Kind]string{}}
	}
	return Env{
		AudioTrackLanguage: cfg.Sync.AudioTrackLanguage,
		ExtraArgs: map[Kind]string{
			FFsubsync:   cfg.Engines.FFsubsyncArgs,
			Autosubsync: cfg.Engines.AutosubsyncArgs,
			Alass:       cfg.Engines.AlassArgs,
		},
		Overwrite: Bool(cfg.Sync.Overwrite),
	}
}

// AllowedKinds converts the validated sync.include_engines list.
func AllowedKinds(cfg *config.Config) []Kind {
	if cfg == nil {
		return append([]Kind(nil), All...)
	}
	kinds, err := ParseKinds(cfg.Sync.IncludeEngines)
	if err != nil || len(kinds) == 0 {
		return append([]Kind(nil), All...)
	}
	return kinds
}
