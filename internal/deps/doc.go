// Package deps checks that the external tools named in the configuration are
// installed: ffprobe for stream lookup plus the three alignment engines.
// Engines excluded by sync.include_engines are reported as optional.
package deps
