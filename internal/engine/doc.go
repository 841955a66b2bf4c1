// Package engine wraps the external subtitle alignment tools (ffsubsync,
// autosubsync, alass) behind one Adapter type.
//
// Every adapter follows the same policy: derive the output path by inserting
// the engine marker before ".srt", skip when that output already exists
// (unless overwrite is set), resolve an audio stream when a language is
// configured and the engine accepts a selector, append free-form extra
// arguments, and run the tool to completion. ffsubsync takes the audio
// stream's position among audio streams while alass takes its absolute
// container index; the two tools use different index spaces.
//
// Adapters never return errors. Spawn failures, non-zero exits, signals, and
// even panics become failed Outcomes carrying the exit code, captured output,
// and the exact command line for reproduction.
package engine
